package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/model"
)

func (s *gormStore) GetDiscount(ctx context.Context, id int64) (model.Discount, error) {
	var d model.Discount
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return model.Discount{}, notFound(err, "discount %d", id)
	}
	return d, nil
}

// ListDiscounts returns the active named discounts ordered by name.
func (s *gormStore) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	var discounts []model.Discount
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&discounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	return discounts, nil
}

// AddDiscountApplication attaches a discount to an order that is not yet CLOSED or CANCELLED.
func (s *gormStore) AddDiscountApplication(ctx context.Context, app *model.DiscountApplication) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, app.OrderID).Error; err != nil {
			return notFound(err, "order %d", app.OrderID)
		}
		if order.Status.IsTerminal() {
			return apperr.Conflict("order %d is %s and cannot be discounted", order.ID, order.Status)
		}
		if err := tx.Create(app).Error; err != nil {
			return fmt.Errorf("failed to apply discount to order %d: %w", order.ID, err)
		}
		return nil
	})
}

// RemoveDiscountApplication deletes one application from an order that is not yet settled.
func (s *gormStore) RemoveDiscountApplication(ctx context.Context, orderID, applicationID int64) (model.DiscountApplication, error) {
	var app model.DiscountApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFound(err, "order %d", orderID)
		}
		if order.Status.IsTerminal() {
			return apperr.Conflict("order %d is %s and its discounts are final", order.ID, order.Status)
		}
		if err := tx.Where("id = ? AND order_id = ?", applicationID, orderID).First(&app).Error; err != nil {
			return notFound(err, "discount application %d on order %d", applicationID, orderID)
		}
		if err := tx.Delete(&model.DiscountApplication{}, app.ID).Error; err != nil {
			return fmt.Errorf("failed to remove discount application %d: %w", app.ID, err)
		}
		return nil
	})
	if err != nil {
		return model.DiscountApplication{}, err
	}
	return app, nil
}
