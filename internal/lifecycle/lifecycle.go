// Package lifecycle drives orders and their items from opening to settlement.
package lifecycle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/audit"
	"restaurant-floor-backend/internal/billing"
	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/store"
)

const (
	maxQuantity   = 99
	maxNoteLength = 255
)

// Events receives lifecycle changes for fan-out. Implementations must not block.
type Events interface {
	NewItems(order model.Order, items []model.OrderItem)
	ItemReady(order model.Order, item model.OrderItem)
	StatusChanged(order model.Order, item model.OrderItem)
}

// Service is the order state machine.
type Service struct {
	store   store.Store
	audit   *audit.Recorder
	events  Events
	taxRate decimal.Decimal
	log     *zap.Logger
	now     func() time.Time
}

// NewService creates the order state machine.
func NewService(s store.Store, rec *audit.Recorder, events Events, taxRate decimal.Decimal, log *zap.Logger) *Service {
	return &Service{
		store:   s,
		audit:   rec,
		events:  events,
		taxRate: taxRate,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// OpenOrder returns the table's active order or opens a new one. Repeated calls for
// the same table return the same order; the boolean reports whether it was created.
func (s *Service) OpenOrder(ctx context.Context, tableID int64, serverID string) (model.Order, bool, error) {
	if tableID <= 0 {
		return model.Order{}, false, apperr.Validation("invalid table id %d", tableID)
	}
	if serverID == "" {
		return model.Order{}, false, apperr.Validation("server id is required")
	}

	order, created, err := s.store.OpenOrder(ctx, tableID, serverID, s.now())
	if err != nil {
		return model.Order{}, false, err
	}
	if created {
		s.log.Info("order opened",
			zap.Int64("order_id", order.ID),
			zap.Int64("table_id", tableID),
			zap.String("server_id", serverID))
	}
	return order, created, nil
}

// SubmitItems appends a batch of items and announces them to the stations. Either
// every item is created or none is.
func (s *Service) SubmitItems(ctx context.Context, orderID int64, items []store.NewItem) (store.Submission, error) {
	if len(items) == 0 {
		return store.Submission{}, apperr.Validation("at least one item is required")
	}
	for i, item := range items {
		if item.MenuItemID <= 0 {
			return store.Submission{}, apperr.Validation("item %d: menu item id is required", i+1)
		}
		if item.Quantity < 1 || item.Quantity > maxQuantity {
			return store.Submission{}, apperr.Validation("item %d: quantity must be between 1 and %d", i+1, maxQuantity)
		}
		if item.SeatNumber != nil && *item.SeatNumber < 1 {
			return store.Submission{}, apperr.Validation("item %d: seat number must be positive", i+1)
		}
		if len(item.Note) > maxNoteLength {
			return store.Submission{}, apperr.Validation("item %d: note exceeds %d characters", i+1, maxNoteLength)
		}
	}

	sub, err := s.store.SubmitItems(ctx, orderID, items, s.now())
	if err != nil {
		return store.Submission{}, err
	}

	s.log.Info("items submitted", zap.Int64("order_id", orderID), zap.Int("count", len(sub.Items)))
	s.events.NewItems(sub.Order, sub.Items)
	return sub, nil
}

// TransitionItem moves one item forward. Voids need a reason and are audited.
// READY notifies the owning server.
func (s *Service) TransitionItem(ctx context.Context, itemID int64, change store.ItemChange, actorID string) (store.ItemTransition, error) {
	switch change.Status {
	case model.ItemPreparing, model.ItemReady, model.ItemServed:
	case model.ItemCancelled:
		if !change.VoidReason.Valid() {
			return store.ItemTransition{}, apperr.Conflict("a valid void reason is required to cancel item %d", itemID)
		}
		if len(change.VoidNote) > maxNoteLength {
			return store.ItemTransition{}, apperr.Validation("void note exceeds %d characters", maxNoteLength)
		}
	default:
		return store.ItemTransition{}, apperr.Validation("unsupported item status %q", change.Status)
	}

	res, err := s.store.TransitionItem(ctx, itemID, change, s.now())
	if err != nil {
		return store.ItemTransition{}, err
	}

	s.log.Info("item status changed",
		zap.Int64("item_id", itemID),
		zap.Int64("order_id", res.Order.ID),
		zap.String("from", string(res.Previous)),
		zap.String("to", string(res.Item.Status)),
		zap.Bool("order_completed", res.OrderCompleted))

	if res.Item.Status == model.ItemCancelled {
		s.audit.Record(ctx, audit.Entry{
			Action:  model.AuditItemVoided,
			UserID:  actorID,
			OrderID: audit.Ptr(res.Order.ID),
			ItemID:  audit.Ptr(itemID),
			Details: map[string]any{
				"item":           res.Item.Name,
				"quantity":       res.Item.Quantity,
				"reason":         change.VoidReason,
				"note":           change.VoidNote,
				"previousStatus": res.Previous,
			},
		})
	}

	if res.Item.Status == model.ItemReady {
		s.events.ItemReady(res.Order, res.Item)
	} else {
		s.events.StatusChanged(res.Order, res.Item)
	}
	return res, nil
}

// SetOrderStatus handles explicit order status requests. Only COMPLETED (for a
// SUBMITTED order with nothing left to serve) and CANCELLED can be requested.
func (s *Service) SetOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus, actorID string) (model.Order, error) {
	switch status {
	case model.OrderCancelled:
		return s.CancelOrder(ctx, orderID, actorID)
	case model.OrderCompleted:
		order, err := s.store.CompleteOrder(ctx, orderID, s.now())
		if err != nil {
			return model.Order{}, err
		}
		s.log.Info("order completed manually", zap.Int64("order_id", orderID))
		s.audit.Record(ctx, audit.Entry{
			Action:  model.AuditOrderCompleted,
			UserID:  actorID,
			OrderID: audit.Ptr(orderID),
		})
		return order, nil
	default:
		return model.Order{}, apperr.Validation("order status %q cannot be set directly", status)
	}
}

// CancelOrder cancels an OPEN or SUBMITTED order and frees its table when nothing else holds it.
func (s *Service) CancelOrder(ctx context.Context, orderID int64, actorID string) (model.Order, error) {
	order, released, err := s.store.CancelOrder(ctx, orderID, s.now())
	if err != nil {
		return model.Order{}, err
	}

	s.log.Info("order cancelled", zap.Int64("order_id", orderID), zap.Bool("table_released", released))
	s.audit.Record(ctx, audit.Entry{
		Action:  model.AuditOrderCancelled,
		UserID:  actorID,
		OrderID: audit.Ptr(orderID),
		Details: map[string]any{
			"tableId":       order.TableID,
			"tableReleased": released,
		},
	})
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (model.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// ListStationItems is the reconciliation read polled by station displays.
func (s *Service) ListStationItems(ctx context.Context, destination model.Destination) ([]store.StationItem, error) {
	if !destination.Valid() {
		return nil, apperr.Validation("unknown destination %q", destination)
	}
	return s.store.ListStationItems(ctx, destination)
}

// ListServerOrders is the reconciliation read polled by a server's device.
func (s *Service) ListServerOrders(ctx context.Context, serverID string) ([]model.Order, error) {
	if serverID == "" {
		return nil, apperr.Validation("server id is required")
	}
	return s.store.ListServerOrders(ctx, serverID)
}

// PreviewBill computes the current bill of an order without settling it.
func (s *Service) PreviewBill(ctx context.Context, orderID int64, tip billing.Tip) (billing.Bill, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return billing.Bill{}, err
	}
	return billing.ForOrder(order, s.taxRate, tip), nil
}
