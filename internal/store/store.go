package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	GetTable(ctx context.Context, id int64) (model.Table, error)
	OpenOrder(ctx context.Context, tableID int64, serverID string, now time.Time) (model.Order, bool, error)
	GetOrder(ctx context.Context, id int64) (model.Order, error)
	ListServerOrders(ctx context.Context, serverID string) ([]model.Order, error)
	SubmitItems(ctx context.Context, orderID int64, items []NewItem, now time.Time) (Submission, error)
	TransitionItem(ctx context.Context, itemID int64, change ItemChange, now time.Time) (ItemTransition, error)
	CompleteOrder(ctx context.Context, orderID int64, now time.Time) (model.Order, error)
	CancelOrder(ctx context.Context, orderID int64, now time.Time) (model.Order, bool, error)
	ListStationItems(ctx context.Context, destination model.Destination) ([]StationItem, error)

	GetDiscount(ctx context.Context, id int64) (model.Discount, error)
	ListDiscounts(ctx context.Context) ([]model.Discount, error)
	AddDiscountApplication(ctx context.Context, app *model.DiscountApplication) error
	RemoveDiscountApplication(ctx context.Context, orderID, applicationID int64) (model.DiscountApplication, error)

	SettleOrder(ctx context.Context, orderID int64, now time.Time, settle func(order model.Order) (model.Payment, error)) (Settlement, error)
	ListPayments(ctx context.Context, from, to time.Time) ([]model.Payment, error)

	CreateDailyClose(ctx context.Context, date string, from, to time.Time, build func(payments []model.Payment) model.DailyClose) (model.DailyClose, error)
	GetDailyClose(ctx context.Context, date string) (model.DailyClose, error)

	InsertAuditEntry(ctx context.Context, entry *model.AuditEntry) error
	ListAuditEntries(ctx context.Context, filter AuditFilter) ([]model.AuditEntry, int64, error)

	UpsertPushSubscription(ctx context.Context, sub model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	ListServerSubscriptions(ctx context.Context, serverID string) ([]model.PushSubscription, error)

	UpsertMenu(ctx context.Context, items []CatalogItem) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// notFound converts gorm.ErrRecordNotFound into apperr.ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format, args...)
	}
	return fmt.Errorf("failed to load %s: %w", fmt.Sprintf(format, args...), err)
}

// releaseTableIfIdle marks the table AVAILABLE when no active order references it.
func releaseTableIfIdle(tx *gorm.DB, tableID int64, now time.Time) (bool, error) {
	var active int64
	if err := tx.Model(&model.Order{}).
		Where("table_id = ? AND status IN ?", tableID, model.ActiveOrderStatuses).
		Count(&active).Error; err != nil {
		return false, fmt.Errorf("failed to count active orders for table %d: %w", tableID, err)
	}
	if active > 0 {
		return false, nil
	}
	if err := tx.Model(&model.Table{}).Where("id = ?", tableID).
		Updates(map[string]any{"status": model.TableAvailable, "updated_at": now}).Error; err != nil {
		return false, fmt.Errorf("failed to release table %d: %w", tableID, err)
	}
	return true, nil
}

// countPendingItems counts the items of an order that are neither SERVED nor CANCELLED.
func countPendingItems(tx *gorm.DB, orderID int64) (int64, error) {
	var pending int64
	err := tx.Model(&model.OrderItem{}).
		Where("order_id = ? AND status NOT IN ?", orderID, model.TerminalItemStatuses).
		Count(&pending).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending items of order %d: %w", orderID, err)
	}
	return pending, nil
}

func setOrderStatus(tx *gorm.DB, order *model.Order, status model.OrderStatus, now time.Time) error {
	if err := tx.Model(&model.Order{}).Where("id = ?", order.ID).
		Updates(map[string]any{"status": status, "updated_at": now}).Error; err != nil {
		return fmt.Errorf("failed to set order %d to %s: %w", order.ID, status, err)
	}
	order.Status = status
	order.UpdatedAt = now
	return nil
}
