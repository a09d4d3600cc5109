// Package billing computes bills from order lines, discount applications, a tax rate and a tip.
//
// Every amount is a decimal rounded to cents; the total is the exact sum of its rounded parts,
// so total == discountedSubtotal + tax + tip holds to the cent for any number of discounts.
package billing

import (
	"github.com/shopspring/decimal"

	"restaurant-floor-backend/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Line is one billable order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Cancelled bool
}

// Adjustment is one discount application as seen by the calculator.
type Adjustment struct {
	Type  model.DiscountType
	Value decimal.Decimal
}

type tipKind int

const (
	tipNone tipKind = iota
	tipPercent
	tipAmount
)

// Tip is either a percentage of the discounted subtotal or a fixed amount. The zero value is no tip.
type Tip struct {
	kind  tipKind
	value decimal.Decimal
}

// TipPercent returns a tip of p percent of the discounted subtotal.
func TipPercent(p decimal.Decimal) Tip {
	return Tip{kind: tipPercent, value: p}
}

// TipAmount returns a fixed tip.
func TipAmount(a decimal.Decimal) Tip {
	return Tip{kind: tipAmount, value: a}
}

// IsPercent reports whether the tip is expressed as a percentage.
func (t Tip) IsPercent() bool { return t.kind == tipPercent }

// Value is the percentage or the amount, depending on the tip kind.
func (t Tip) Value() decimal.Decimal { return t.value }

// Bill is the computed breakdown.
type Bill struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	RawDiscount        decimal.Decimal `json:"rawDiscount"`
	Discount           decimal.Decimal `json:"discount"`
	DiscountedSubtotal decimal.Decimal `json:"discountedSubtotal"`
	TaxRate            decimal.Decimal `json:"taxRate"`
	Tax                decimal.Decimal `json:"tax"`
	Tip                decimal.Decimal `json:"tip"`
	Total              decimal.Decimal `json:"total"`
}

// Compute derives the bill. Discounts are additive and capped at the subtotal; tax applies to
// the discounted subtotal; the tip is added after tax and is not taxed.
func Compute(lines []Line, discounts []Adjustment, taxRate decimal.Decimal, tip Tip) Bill {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Cancelled {
			continue
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = round(subtotal)

	raw := decimal.Zero
	for _, d := range discounts {
		switch d.Type {
		case model.DiscountPercentage:
			raw = raw.Add(round(subtotal.Mul(d.Value).Div(hundred)))
		case model.DiscountFixed:
			raw = raw.Add(round(d.Value))
		}
	}
	if raw.IsNegative() {
		raw = decimal.Zero
	}

	discount := decimal.Min(raw, subtotal)
	discounted := subtotal.Sub(discount)
	tax := round(discounted.Mul(taxRate))

	tipValue := decimal.Zero
	switch tip.kind {
	case tipPercent:
		tipValue = round(discounted.Mul(tip.value).Div(hundred))
	case tipAmount:
		tipValue = round(tip.value)
	}

	return Bill{
		Subtotal:           subtotal,
		RawDiscount:        raw,
		Discount:           discount,
		DiscountedSubtotal: discounted,
		TaxRate:            taxRate,
		Tax:                tax,
		Tip:                tipValue,
		Total:              discounted.Add(tax).Add(tipValue),
	}
}

// ForOrder computes the bill of a loaded order with its items and discount applications.
func ForOrder(order model.Order, taxRate decimal.Decimal, tip Tip) Bill {
	return Compute(LinesFromItems(order.Items), AdjustmentsFrom(order.Discounts), taxRate, tip)
}

// LinesFromItems converts order items into billable lines.
func LinesFromItems(items []model.OrderItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Cancelled: it.Status == model.ItemCancelled,
		})
	}
	return lines
}

// AdjustmentsFrom converts discount applications into calculator adjustments.
func AdjustmentsFrom(apps []model.DiscountApplication) []Adjustment {
	adjustments := make([]Adjustment, 0, len(apps))
	for _, a := range apps {
		adjustments = append(adjustments, Adjustment{Type: a.Type, Value: a.Value})
	}
	return adjustments
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
