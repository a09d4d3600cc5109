package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/model"
)

// stationStatuses are the item states still relevant to a station display.
var stationStatuses = []model.ItemStatus{model.ItemSent, model.ItemPreparing, model.ItemReady}

// SubmitItems appends the whole batch to an order in a single transaction and moves
// the order to SUBMITTED, including from COMPLETED.
func (s *gormStore) SubmitItems(ctx context.Context, orderID int64, lines []NewItem, now time.Time) (Submission, error) {
	var result Submission

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Preload("Table").First(&order, orderID).Error; err != nil {
			return notFound(err, "order %d", orderID)
		}
		if order.Status.IsTerminal() {
			return apperr.Conflict("order %d is %s and cannot take new items", orderID, order.Status)
		}

		menu, modifiers, err := loadCatalog(tx, lines)
		if err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(lines))
		for i, line := range lines {
			item, ok := menu[line.MenuItemID]
			if !ok {
				return apperr.NotFound("menu item %d", line.MenuItemID)
			}
			if !item.Available {
				return apperr.Conflict("menu item %q is not available", item.Name)
			}

			price := item.Price
			snapshots := make([]model.OrderItemModifier, 0, len(line.ModifierIDs))
			for _, modID := range line.ModifierIDs {
				mod, ok := modifiers[modID]
				if !ok || mod.MenuItemID != item.ID {
					return apperr.NotFound("modifier %d for menu item %d", modID, item.ID)
				}
				if !mod.Available {
					return apperr.Conflict("modifier %q is not available", mod.Name)
				}
				price = price.Add(mod.PriceAdjustment)
				snapshots = append(snapshots, model.OrderItemModifier{
					ModifierID:      mod.ID,
					Name:            mod.Name,
					PriceAdjustment: mod.PriceAdjustment,
				})
			}
			if price.IsNegative() {
				return apperr.Validation("item %d resolves to a negative price %s", i+1, price.StringFixed(2))
			}

			sentAt := now
			items = append(items, model.OrderItem{
				OrderID:     orderID,
				MenuItemID:  item.ID,
				Name:        item.Name,
				SeatNumber:  line.SeatNumber,
				Quantity:    line.Quantity,
				UnitPrice:   price.Round(2),
				Note:        line.Note,
				Status:      model.ItemSent,
				Destination: item.Destination,
				SentAt:      &sentAt,
				Version:     1,
				CreatedAt:   now,
				UpdatedAt:   now,
				Modifiers:   snapshots,
			})
		}

		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create items for order %d: %w", orderID, err)
		}
		if err := setOrderStatus(tx, &order, model.OrderSubmitted, now); err != nil {
			return err
		}

		result = Submission{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return Submission{}, err
	}
	return result, nil
}

// loadCatalog fetches every menu item and modifier referenced by the batch.
func loadCatalog(tx *gorm.DB, lines []NewItem) (map[int64]model.MenuItem, map[int64]model.Modifier, error) {
	itemIDs := make([]int64, 0, len(lines))
	var modIDs []int64
	for _, line := range lines {
		itemIDs = append(itemIDs, line.MenuItemID)
		modIDs = append(modIDs, line.ModifierIDs...)
	}

	var items []model.MenuItem
	if err := tx.Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	menu := make(map[int64]model.MenuItem, len(items))
	for _, item := range items {
		menu[item.ID] = item
	}

	modifiers := make(map[int64]model.Modifier, len(modIDs))
	if len(modIDs) > 0 {
		var mods []model.Modifier
		if err := tx.Where("id IN ?", modIDs).Find(&mods).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to load modifiers: %w", err)
		}
		for _, mod := range mods {
			modifiers[mod.ID] = mod
		}
	}
	return menu, modifiers, nil
}

// TransitionItem applies a status change to one item. SERVED and CANCELLED items are
// final. After a SERVED transition the order is completed once nothing is pending.
func (s *gormStore) TransitionItem(ctx context.Context, itemID int64, change ItemChange, now time.Time) (ItemTransition, error) {
	var result ItemTransition

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.OrderItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return notFound(err, "item %d", itemID)
		}
		if change.ExpectedVersion != nil && *change.ExpectedVersion != item.Version {
			return apperr.Conflict("item %d was modified (version %d, expected %d)", itemID, item.Version, *change.ExpectedVersion)
		}
		if item.Status.IsTerminal() {
			return apperr.Conflict("item %d is already %s", itemID, item.Status)
		}

		var order model.Order
		if err := tx.Preload("Table").First(&order, item.OrderID).Error; err != nil {
			return notFound(err, "order %d", item.OrderID)
		}
		if order.Status.IsTerminal() {
			return apperr.Conflict("order %d is %s", order.ID, order.Status)
		}

		updates := map[string]any{
			"status":     change.Status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		}
		switch change.Status {
		case model.ItemReady:
			updates["ready_at"] = now
		case model.ItemServed:
			updates["served_at"] = now
		case model.ItemCancelled:
			updates["void_reason"] = change.VoidReason
			updates["void_note"] = change.VoidNote
		}

		q := tx.Model(&model.OrderItem{}).Where("id = ?", itemID)
		if change.ExpectedVersion != nil {
			q = q.Where("version = ?", *change.ExpectedVersion)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update item %d: %w", itemID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("item %d was modified concurrently", itemID)
		}

		previous := item.Status
		if err := tx.Preload("Modifiers").First(&item, itemID).Error; err != nil {
			return fmt.Errorf("failed to reload item %d: %w", itemID, err)
		}

		completed := false
		if change.Status == model.ItemServed && order.Status == model.OrderSubmitted {
			pending, err := countPendingItems(tx, order.ID)
			if err != nil {
				return err
			}
			if pending == 0 {
				if err := setOrderStatus(tx, &order, model.OrderCompleted, now); err != nil {
					return err
				}
				completed = true
			}
		}

		result = ItemTransition{Item: item, Order: order, Previous: previous, OrderCompleted: completed}
		return nil
	})
	if err != nil {
		return ItemTransition{}, err
	}
	return result, nil
}

// ListStationItems returns the in-flight items of active orders routed to a destination,
// oldest first.
func (s *gormStore) ListStationItems(ctx context.Context, destination model.Destination) ([]StationItem, error) {
	db := s.db.WithContext(ctx)

	var items []model.OrderItem
	err := db.Preload("Modifiers").
		Where("destination = ? AND status IN ?", destination, stationStatuses).
		Where("order_id IN (?)", db.Model(&model.Order{}).Select("id").Where("status IN ?", model.ActiveOrderStatuses)).
		Order("sent_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s items: %w", destination, err)
	}
	if len(items) == 0 {
		return []StationItem{}, nil
	}

	orderIDs := make([]int64, 0, len(items))
	seen := make(map[int64]bool)
	for _, item := range items {
		if !seen[item.OrderID] {
			seen[item.OrderID] = true
			orderIDs = append(orderIDs, item.OrderID)
		}
	}

	var orders []model.Order
	if err := db.Preload("Table").Where("id IN ?", orderIDs).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders for %s items: %w", destination, err)
	}
	byID := make(map[int64]model.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}

	out := make([]StationItem, 0, len(items))
	for _, item := range items {
		o := byID[item.OrderID]
		si := StationItem{OrderItem: item, ServerID: o.ServerID}
		if o.Table != nil {
			si.TableNumber = o.Table.Number
		}
		out = append(out, si)
	}
	return out, nil
}
