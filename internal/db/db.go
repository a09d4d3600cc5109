package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-floor-backend/config"
	"restaurant-floor-backend/internal/model"
)

// Models lists every table the engine owns, in migration order.
func Models() []any {
	return []any{
		&model.Table{},
		&model.MenuItem{},
		&model.Modifier{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderItemModifier{},
		&model.Discount{},
		&model.DiscountApplication{},
		&model.Payment{},
		&model.DailyClose{},
		&model.AuditEntry{},
		&model.PushSubscription{},
	}
}

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Table ownership of orders is enforced by the engine, not by foreign keys.
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Info("running database migrations", zap.String("driver", cfg.Driver))
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := applyIndexes(db); err != nil {
		log.Warn("failed to apply some indexes, continuing without them", zap.Error(err))
	}

	log.Info("database initialization complete")
	return db, nil
}

// Migrate creates or updates every engine table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// applyIndexes adds the composite indexes behind the hot lifecycle queries.
func applyIndexes(db *gorm.DB) error {
	m := db.Migrator()
	indexes := []struct {
		model any
		name  string
		ddl   string
	}{
		{&model.Order{}, "idx_orders_table_status", "CREATE INDEX idx_orders_table_status ON orders (table_id, status)"},
		{&model.OrderItem{}, "idx_order_items_order_status", "CREATE INDEX idx_order_items_order_status ON order_items (order_id, status)"},
		{&model.OrderItem{}, "idx_order_items_destination_status", "CREATE INDEX idx_order_items_destination_status ON order_items (destination, status)"},
	}

	for _, idx := range indexes {
		if m.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Exec(idx.ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", idx.ddl, err)
		}
	}
	return nil
}
