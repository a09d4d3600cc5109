package lifecycle

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/audit"
	"restaurant-floor-backend/internal/model"
)

const compLabel = "Comp"

var hundred = decimal.NewFromInt(100)

// DiscountRequest applies either a named discount (DiscountID) or an ad-hoc comp
// (Type and Value, justified by Note).
type DiscountRequest struct {
	DiscountID *int64
	Type       model.DiscountType
	Value      decimal.Decimal
	Note       string
}

func (s *Service) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	return s.store.ListDiscounts(ctx)
}

// ApplyDiscount attaches a discount to an order that has not been settled or cancelled.
func (s *Service) ApplyDiscount(ctx context.Context, orderID int64, req DiscountRequest, actorID string) (model.DiscountApplication, error) {
	if len(req.Note) > maxNoteLength {
		return model.DiscountApplication{}, apperr.Validation("note exceeds %d characters", maxNoteLength)
	}

	app := model.DiscountApplication{
		OrderID:   orderID,
		Note:      req.Note,
		AppliedBy: actorID,
		CreatedAt: s.now(),
	}

	if req.DiscountID != nil {
		def, err := s.store.GetDiscount(ctx, *req.DiscountID)
		if err != nil {
			return model.DiscountApplication{}, err
		}
		if !def.Active {
			return model.DiscountApplication{}, apperr.Conflict("discount %q is not active", def.Name)
		}
		app.DiscountID = &def.ID
		app.Label = def.Name
		app.Type = def.Type
		app.Value = def.Value
	} else {
		if err := validateComp(req); err != nil {
			return model.DiscountApplication{}, err
		}
		app.Label = compLabel
		app.Type = req.Type
		app.Value = req.Value.Round(2)
	}

	if err := s.store.AddDiscountApplication(ctx, &app); err != nil {
		return model.DiscountApplication{}, err
	}

	s.log.Info("discount applied",
		zap.Int64("order_id", orderID),
		zap.String("label", app.Label),
		zap.String("type", string(app.Type)),
		zap.String("value", app.Value.String()))
	s.audit.Record(ctx, audit.Entry{
		Action:  model.AuditDiscountApplied,
		UserID:  actorID,
		OrderID: audit.Ptr(orderID),
		Details: map[string]any{
			"applicationId": app.ID,
			"discountId":    app.DiscountID,
			"label":         app.Label,
			"type":          app.Type,
			"value":         app.Value.StringFixed(2),
			"note":          app.Note,
		},
	})
	return app, nil
}

func validateComp(req DiscountRequest) error {
	if !req.Type.Valid() {
		return apperr.Validation("discount type must be PERCENTAGE or FIXED")
	}
	if !req.Value.IsPositive() {
		return apperr.Validation("discount value must be positive")
	}
	if req.Type == model.DiscountPercentage && req.Value.GreaterThan(hundred) {
		return apperr.Validation("percentage discount cannot exceed 100")
	}
	if req.Note == "" {
		return apperr.Validation("a note is required for a comp")
	}
	return nil
}

// RemoveDiscount detaches a discount application from an unsettled order.
func (s *Service) RemoveDiscount(ctx context.Context, orderID, applicationID int64, actorID string) error {
	app, err := s.store.RemoveDiscountApplication(ctx, orderID, applicationID)
	if err != nil {
		return err
	}

	s.log.Info("discount removed", zap.Int64("order_id", orderID), zap.Int64("application_id", applicationID))
	s.audit.Record(ctx, audit.Entry{
		Action:  model.AuditDiscountRemoved,
		UserID:  actorID,
		OrderID: audit.Ptr(orderID),
		Details: map[string]any{
			"applicationId": app.ID,
			"label":         app.Label,
			"type":          app.Type,
			"value":         app.Value.StringFixed(2),
		},
	})
	return nil
}
