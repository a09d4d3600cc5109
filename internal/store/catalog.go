package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-floor-backend/internal/model"
)

// UpsertMenu mirrors a catalog snapshot into the menu tables in one transaction.
// Items missing from the snapshot are left untouched.
func (s *gormStore) UpsertMenu(ctx context.Context, items []CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()

	menu := make([]model.MenuItem, 0, len(items))
	var modifiers []model.Modifier
	for _, it := range items {
		menu = append(menu, model.MenuItem{
			ID:          it.ID,
			Name:        it.Name,
			Category:    it.Category,
			Price:       it.Price.Round(2),
			Destination: it.Destination,
			Available:   it.Available,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		for _, m := range it.Modifiers {
			modifiers = append(modifiers, model.Modifier{
				ID:              m.ID,
				MenuItemID:      it.ID,
				Name:            m.Name,
				PriceAdjustment: m.PriceAdjustment.Round(2),
				Available:       m.Available,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "category", "price", "destination", "available", "updated_at"}),
		}).Create(&menu).Error; err != nil {
			return fmt.Errorf("batch upsert menu items failed: %w", err)
		}
		if len(modifiers) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"menu_item_id", "name", "price_adjustment", "available", "updated_at"}),
		}).Create(&modifiers).Error; err != nil {
			return fmt.Errorf("batch upsert modifiers failed: %w", err)
		}
		return nil
	})
}
