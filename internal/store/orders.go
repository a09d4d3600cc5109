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

func (s *gormStore) GetTable(ctx context.Context, id int64) (model.Table, error) {
	var table model.Table
	if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return model.Table{}, notFound(err, "table %d", id)
	}
	return table, nil
}

// OpenOrder returns the table's oldest active order, or creates a new OPEN order
// and marks the table OCCUPIED. The boolean reports whether an order was created.
func (s *gormStore) OpenOrder(ctx context.Context, tableID int64, serverID string, now time.Time) (model.Order, bool, error) {
	var order model.Order
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table model.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			return notFound(err, "table %d", tableID)
		}

		err := tx.Where("table_id = ? AND status IN ?", tableID, model.ActiveOrderStatuses).
			Order("created_at ASC, id ASC").
			First(&order).Error
		if err == nil {
			order.Table = &table
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up active order for table %d: %w", tableID, err)
		}

		order = model.Order{
			TableID:   tableID,
			ServerID:  serverID,
			Status:    model.OrderOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order for table %d: %w", tableID, err)
		}

		if table.Status != model.TableOccupied {
			if err := tx.Model(&model.Table{}).Where("id = ?", tableID).
				Updates(map[string]any{"status": model.TableOccupied, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("failed to occupy table %d: %w", tableID, err)
			}
			table.Status = model.TableOccupied
		}
		order.Table = &table
		created = true
		return nil
	})
	if err != nil {
		return model.Order{}, false, err
	}
	return order, created, nil
}

func (s *gormStore) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	var order model.Order
	err := preloadOrder(s.db.WithContext(ctx)).First(&order, id).Error
	if err != nil {
		return model.Order{}, notFound(err, "order %d", id)
	}
	return order, nil
}

// ListServerOrders returns the server's active orders, oldest first.
func (s *gormStore) ListServerOrders(ctx context.Context, serverID string) ([]model.Order, error) {
	var orders []model.Order
	err := preloadOrder(s.db.WithContext(ctx)).
		Where("server_id = ? AND status IN ?", serverID, model.ActiveOrderStatuses).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of server %s: %w", serverID, err)
	}
	return orders, nil
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("Table").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Modifiers").
		Preload("Discounts", func(db *gorm.DB) *gorm.DB { return db.Order("discount_applications.id ASC") })
}

// CompleteOrder moves a SUBMITTED order with no pending items to COMPLETED.
func (s *gormStore) CompleteOrder(ctx context.Context, orderID int64, now time.Time) (model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Table").First(&order, orderID).Error; err != nil {
			return notFound(err, "order %d", orderID)
		}
		if order.Status != model.OrderSubmitted {
			return apperr.Conflict("order %d is %s, only SUBMITTED orders can be completed", orderID, order.Status)
		}
		pending, err := countPendingItems(tx, orderID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return apperr.Conflict("order %d still has %d items in progress", orderID, pending)
		}
		return setOrderStatus(tx, &order, model.OrderCompleted, now)
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// CancelOrder cancels an OPEN or SUBMITTED order and releases its table when it
// has no other active order. The boolean reports whether the table was released.
func (s *gormStore) CancelOrder(ctx context.Context, orderID int64, now time.Time) (model.Order, bool, error) {
	var order model.Order
	released := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Table").First(&order, orderID).Error; err != nil {
			return notFound(err, "order %d", orderID)
		}
		if !order.Status.Cancellable() {
			return apperr.Conflict("order %d is %s and cannot be cancelled", orderID, order.Status)
		}
		if err := setOrderStatus(tx, &order, model.OrderCancelled, now); err != nil {
			return err
		}
		var err error
		released, err = releaseTableIfIdle(tx, order.TableID, now)
		if err != nil {
			return err
		}
		if released && order.Table != nil {
			order.Table.Status = model.TableAvailable
		}
		return nil
	})
	if err != nil {
		return model.Order{}, false, err
	}
	return order, released, nil
}
