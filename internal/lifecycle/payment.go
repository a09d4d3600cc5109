package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/audit"
	"restaurant-floor-backend/internal/billing"
	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/store"
)

// SettlePayment bills the order from its stored items and discounts, records the
// payment, closes the order and releases the table.
func (s *Service) SettlePayment(ctx context.Context, orderID int64, method model.PaymentMethod, tip billing.Tip, actorID string) (store.Settlement, error) {
	if !method.Valid() {
		return store.Settlement{}, apperr.Validation("payment method must be CASH or CARD")
	}
	if tip.Value().IsNegative() {
		return store.Settlement{}, apperr.Validation("tip cannot be negative")
	}

	res, err := s.store.SettleOrder(ctx, orderID, s.now(), func(order model.Order) (model.Payment, error) {
		bill := billing.ForOrder(order, s.taxRate, tip)
		return model.Payment{
			Method:    method,
			Subtotal:  bill.Subtotal,
			Discount:  bill.Discount,
			Tax:       bill.Tax,
			Tip:       bill.Tip,
			Total:     bill.Total,
			TaxRate:   bill.TaxRate,
			CreatedBy: actorID,
		}, nil
	})
	if err != nil {
		return store.Settlement{}, err
	}

	p := res.Payment
	s.log.Info("payment settled",
		zap.Int64("order_id", orderID),
		zap.Int64("payment_id", p.ID),
		zap.String("method", string(p.Method)),
		zap.String("total", p.Total.StringFixed(2)),
		zap.Bool("table_released", res.TableReleased))
	s.audit.Record(ctx, audit.Entry{
		Action:  model.AuditPaymentSettled,
		UserID:  actorID,
		OrderID: audit.Ptr(orderID),
		Details: map[string]any{
			"paymentId": p.ID,
			"method":    p.Method,
			"subtotal":  p.Subtotal.StringFixed(2),
			"discount":  p.Discount.StringFixed(2),
			"tax":       p.Tax.StringFixed(2),
			"tip":       p.Tip.StringFixed(2),
			"total":     p.Total.StringFixed(2),
		},
	})
	return res, nil
}
