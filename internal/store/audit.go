package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"restaurant-floor-backend/internal/model"
)

const maxAuditPageSize = 100

func (s *gormStore) InsertAuditEntry(ctx context.Context, entry *model.AuditEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to insert audit entry %s: %w", entry.Action, err)
	}
	return nil
}

// ListAuditEntries returns one page of matching entries, newest first, and the total match count.
func (s *gormStore) ListAuditEntries(ctx context.Context, filter AuditFilter) ([]model.AuditEntry, int64, error) {
	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.AuditEntry{})
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if !filter.From.IsZero() {
			q = q.Where("created_at >= ?", filter.From.UTC())
		}
		if !filter.To.IsZero() {
			q = q.Where("created_at < ?", filter.To.UTC())
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxAuditPageSize {
		size = maxAuditPageSize
	}

	var entries []model.AuditEntry
	if err := filtered().Order("created_at DESC, id DESC").Offset((page - 1) * size).Limit(size).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, total, nil
}
