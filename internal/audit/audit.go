// Package audit records privileged actions (voids, cancellations, discounts,
// settlements and day closes) in an insert-only trail.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/store"
)

const (
	writeTimeout    = 5 * time.Second
	maxPageSize     = 100
	defaultPageSize = 50
)

// Entry is a privileged action to be recorded.
type Entry struct {
	Action  model.AuditAction
	UserID  string
	OrderID *int64
	ItemID  *int64
	Details map[string]any
}

// Page is one page of audit entries, newest first.
type Page struct {
	Entries  []model.AuditEntry `json:"entries"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// Recorder writes audit entries on a best-effort basis.
type Recorder struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
	wg    sync.WaitGroup
}

// NewRecorder creates a Recorder backed by the given store.
func NewRecorder(s store.Store, log *zap.Logger) *Recorder {
	return &Recorder{store: s, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Record queues one entry for insertion and returns without waiting for the store.
// Errors are logged and dropped. The write is detached from ctx so a cancelled
// request still leaves its trail.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if !e.Action.Valid() {
		r.log.Error("refusing to record unknown audit action", zap.String("action", string(e.Action)))
		return
	}

	details := datatypes.JSON("{}")
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			r.log.Warn("failed to encode audit details", zap.String("action", string(e.Action)), zap.Error(err))
		} else {
			details = datatypes.JSON(raw)
		}
	}

	entry := &model.AuditEntry{
		Action:    e.Action,
		UserID:    e.UserID,
		OrderID:   e.OrderID,
		ItemID:    e.ItemID,
		Details:   details,
		CreatedAt: r.now(),
	}

	detached := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		writeCtx, cancel := context.WithTimeout(detached, writeTimeout)
		defer cancel()
		if err := r.store.InsertAuditEntry(writeCtx, entry); err != nil {
			r.log.Warn("failed to record audit entry",
				zap.String("action", string(entry.Action)),
				zap.String("user_id", entry.UserID),
				zap.Error(err))
			return
		}
		r.log.Debug("audit entry recorded", zap.String("action", string(entry.Action)), zap.Int64("audit_id", entry.ID))
	}()
}

// Wait blocks until every queued entry has been written or dropped.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// List returns one page of entries matching filter. Page sizes above 100 are capped.
func (r *Recorder) List(ctx context.Context, filter store.AuditFilter) (Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	entries, total, err := r.store.ListAuditEntries(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	return Page{Entries: entries, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Ptr is a small helper for the optional order and item references.
func Ptr(id int64) *int64 {
	return &id
}
