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

// CreateDailyClose persists the close for date, built from the payments created in
// [from, to). A date can be closed once.
func (s *gormStore) CreateDailyClose(ctx context.Context, date string, from, to time.Time, build func(payments []model.Payment) model.DailyClose) (model.DailyClose, error) {
	var dc model.DailyClose

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.DailyClose{}).Where("business_date = ?", date).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check daily close for %s: %w", date, err)
		}
		if existing > 0 {
			return apperr.Conflict("day %s already closed", date)
		}

		payments, err := listPayments(tx, from, to)
		if err != nil {
			return err
		}

		dc = build(payments)
		dc.BusinessDate = date
		if err := tx.Create(&dc).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("day %s already closed", date)
			}
			return fmt.Errorf("failed to record daily close for %s: %w", date, err)
		}
		return nil
	})
	if err != nil {
		return model.DailyClose{}, err
	}
	return dc, nil
}

func (s *gormStore) GetDailyClose(ctx context.Context, date string) (model.DailyClose, error) {
	var dc model.DailyClose
	if err := s.db.WithContext(ctx).Where("business_date = ?", date).First(&dc).Error; err != nil {
		return model.DailyClose{}, notFound(err, "daily close for %s", date)
	}
	return dc, nil
}
