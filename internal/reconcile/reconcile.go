// Package reconcile produces the end-of-day cash and card reconciliation.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/audit"
	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/parse"
	"restaurant-floor-backend/internal/store"
)

const maxNotesLength = 1024

// Totals aggregates the payments of one business day.
type Totals struct {
	ExpectedCash  decimal.Decimal `json:"expectedCash"`
	CardTotal     decimal.Decimal `json:"cardTotal"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	TotalTips     decimal.Decimal `json:"totalTips"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	OrderCount    int             `json:"orderCount"`
}

// Preview is the running reconciliation of a day that may not be closed yet.
type Preview struct {
	Date string `json:"date"`
	Totals
	Closed bool `json:"closed"`
}

// CloseRequest is the cash count submitted by a manager.
type CloseRequest struct {
	Date       string
	ActualCash decimal.Decimal
	Notes      string
}

// Aggregate sums payments. Cash and card columns include the tip; every amount is
// rounded to cents.
func Aggregate(payments []model.Payment) Totals {
	t := Totals{
		ExpectedCash:  decimal.Zero,
		CardTotal:     decimal.Zero,
		TotalRevenue:  decimal.Zero,
		TotalTax:      decimal.Zero,
		TotalTips:     decimal.Zero,
		TotalDiscount: decimal.Zero,
		Subtotal:      decimal.Zero,
	}
	for _, p := range payments {
		collected := p.Total.Add(p.Tip)
		if p.Method == model.PaymentCash {
			t.ExpectedCash = t.ExpectedCash.Add(collected)
		} else {
			t.CardTotal = t.CardTotal.Add(collected)
		}
		t.TotalRevenue = t.TotalRevenue.Add(p.Total)
		t.TotalTax = t.TotalTax.Add(p.Tax)
		t.TotalTips = t.TotalTips.Add(p.Tip)
		t.TotalDiscount = t.TotalDiscount.Add(p.Discount)
		t.Subtotal = t.Subtotal.Add(p.Subtotal)
		t.OrderCount++
	}

	t.ExpectedCash = t.ExpectedCash.Round(2)
	t.CardTotal = t.CardTotal.Round(2)
	t.TotalRevenue = t.TotalRevenue.Round(2)
	t.TotalTax = t.TotalTax.Round(2)
	t.TotalTips = t.TotalTips.Round(2)
	t.TotalDiscount = t.TotalDiscount.Round(2)
	t.Subtotal = t.Subtotal.Round(2)
	return t
}

// Service closes business days.
type Service struct {
	store store.Store
	audit *audit.Recorder
	loc   *time.Location
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates a reconciler for days in loc.
func NewService(s store.Store, rec *audit.Recorder, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: s, audit: rec, loc: loc, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) day(raw string) (parse.BusinessDay, error) {
	day, err := parse.ParseBusinessDate(raw, s.loc)
	if err != nil {
		return parse.BusinessDay{}, apperr.Validation("%v", err)
	}
	return day, nil
}

// CloseDay records the reconciliation of a business date. A date can be closed once.
func (s *Service) CloseDay(ctx context.Context, req CloseRequest, actorID string) (model.DailyClose, error) {
	day, err := s.day(req.Date)
	if err != nil {
		return model.DailyClose{}, err
	}
	if req.ActualCash.IsNegative() {
		return model.DailyClose{}, apperr.Validation("actual cash cannot be negative")
	}
	if len(req.Notes) > maxNotesLength {
		return model.DailyClose{}, apperr.Validation("notes exceed %d characters", maxNotesLength)
	}
	actual := req.ActualCash.Round(2)

	dc, err := s.store.CreateDailyClose(ctx, day.Date, day.Start, day.End, func(payments []model.Payment) model.DailyClose {
		t := Aggregate(payments)
		return model.DailyClose{
			ExpectedCash:  t.ExpectedCash,
			ActualCash:    actual,
			Variance:      actual.Sub(t.ExpectedCash),
			CardTotal:     t.CardTotal,
			TotalRevenue:  t.TotalRevenue,
			TotalTax:      t.TotalTax,
			TotalTips:     t.TotalTips,
			TotalDiscount: t.TotalDiscount,
			Subtotal:      t.Subtotal,
			OrderCount:    t.OrderCount,
			ClosedBy:      actorID,
			Notes:         req.Notes,
			CreatedAt:     s.now(),
		}
	})
	if err != nil {
		return model.DailyClose{}, err
	}

	s.log.Info("day closed",
		zap.String("date", dc.BusinessDate),
		zap.String("expected_cash", dc.ExpectedCash.StringFixed(2)),
		zap.String("variance", dc.Variance.StringFixed(2)),
		zap.Int("orders", dc.OrderCount))
	s.audit.Record(ctx, audit.Entry{
		Action: model.AuditDayClosed,
		UserID: actorID,
		Details: map[string]any{
			"date":         dc.BusinessDate,
			"expectedCash": dc.ExpectedCash.StringFixed(2),
			"actualCash":   dc.ActualCash.StringFixed(2),
			"variance":     dc.Variance.StringFixed(2),
			"orderCount":   dc.OrderCount,
		},
	})
	return dc, nil
}

// GetDailyClose returns the stored reconciliation of a date.
func (s *Service) GetDailyClose(ctx context.Context, date string) (model.DailyClose, error) {
	day, err := s.day(date)
	if err != nil {
		return model.DailyClose{}, err
	}
	return s.store.GetDailyClose(ctx, day.Date)
}

// PreviewDay aggregates a date's payments without closing it.
func (s *Service) PreviewDay(ctx context.Context, date string) (Preview, error) {
	day, err := s.day(date)
	if err != nil {
		return Preview{}, err
	}

	payments, err := s.store.ListPayments(ctx, day.Start, day.End)
	if err != nil {
		return Preview{}, err
	}

	closed := true
	if _, err := s.store.GetDailyClose(ctx, day.Date); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return Preview{}, err
		}
		closed = false
	}
	return Preview{Date: day.Date, Totals: Aggregate(payments), Closed: closed}, nil
}
