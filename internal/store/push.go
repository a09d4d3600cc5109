package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"restaurant-floor-backend/internal/model"
)

// UpsertPushSubscription registers a device, moving the endpoint to the given server if it already exists.
func (s *gormStore) UpsertPushSubscription(ctx context.Context, sub model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "server_id"}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) ListServerSubscriptions(ctx context.Context, serverID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("server_id = ?", serverID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions of server %s: %w", serverID, err)
	}
	return subs, nil
}
