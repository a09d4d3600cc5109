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

// SettleOrder records the payment built by settle from the order's stored state, closes
// the order and releases its table. settle runs inside the transaction.
func (s *gormStore) SettleOrder(ctx context.Context, orderID int64, now time.Time, settle func(order model.Order) (model.Payment, error)) (Settlement, error) {
	var result Settlement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := preloadOrder(tx).First(&order, orderID).Error; err != nil {
			return notFound(err, "order %d", orderID)
		}
		if order.Status.IsTerminal() {
			return apperr.Conflict("order %d is already %s", orderID, order.Status)
		}

		var paid int64
		if err := tx.Model(&model.Payment{}).Where("order_id = ?", orderID).Count(&paid).Error; err != nil {
			return fmt.Errorf("failed to check payments of order %d: %w", orderID, err)
		}
		if paid > 0 {
			return apperr.Conflict("order %d is already paid", orderID)
		}

		payment, err := settle(order)
		if err != nil {
			return err
		}
		payment.OrderID = orderID
		payment.CreatedAt = now
		if err := tx.Create(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("order %d is already paid", orderID)
			}
			return fmt.Errorf("failed to record payment for order %d: %w", orderID, err)
		}

		if err := setOrderStatus(tx, &order, model.OrderClosed, now); err != nil {
			return err
		}
		released, err := releaseTableIfIdle(tx, order.TableID, now)
		if err != nil {
			return err
		}
		if released && order.Table != nil {
			order.Table.Status = model.TableAvailable
		}

		result = Settlement{Payment: payment, Order: order, TableReleased: released}
		return nil
	})
	if err != nil {
		return Settlement{}, err
	}
	return result, nil
}

// ListPayments returns the payments created in [from, to).
func (s *gormStore) ListPayments(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	return listPayments(s.db.WithContext(ctx), from, to)
}

func listPayments(db *gorm.DB, from, to time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := db.Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
