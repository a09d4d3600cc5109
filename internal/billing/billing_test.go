package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"restaurant-floor-backend/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "%s: expected %s, got %s", field, expected, actual)
}

func TestCompute(t *testing.T) {
	taxRate := d("0.16")

	testCases := []struct {
		name       string
		lines      []Line
		discounts  []Adjustment
		tip        Tip
		subtotal   string
		discount   string
		discounted string
		tax        string
		tipAmt     string
		total      string
	}{
		{
			name:       "Stacked percentage and fixed discount with preset tip",
			lines:      []Line{{UnitPrice: d("250.00"), Quantity: 2}},
			discounts:  []Adjustment{{Type: model.DiscountPercentage, Value: d("10")}, {Type: model.DiscountFixed, Value: d("50.00")}},
			tip:        TipPercent(d("10")),
			subtotal:   "500.00",
			discount:   "100.00",
			discounted: "400.00",
			tax:        "64.00",
			tipAmt:     "40.00",
			total:      "504.00",
		},
		{
			name:       "Cancelled lines are not billed",
			lines:      []Line{{UnitPrice: d("100"), Quantity: 1}, {UnitPrice: d("80"), Quantity: 2, Cancelled: true}},
			subtotal:   "100",
			discount:   "0",
			discounted: "100",
			tax:        "16",
			tipAmt:     "0",
			total:      "116",
		},
		{
			name:       "Discount is capped at subtotal",
			lines:      []Line{{UnitPrice: d("30"), Quantity: 1}},
			discounts:  []Adjustment{{Type: model.DiscountFixed, Value: d("25")}, {Type: model.DiscountPercentage, Value: d("50")}},
			tip:        TipAmount(d("5")),
			subtotal:   "30",
			discount:   "30",
			discounted: "0",
			tax:        "0",
			tipAmt:     "5",
			total:      "5",
		},
		{
			name:       "Tax rounds half away from zero",
			lines:      []Line{{UnitPrice: d("10.03"), Quantity: 1}},
			subtotal:   "10.03",
			discount:   "0",
			discounted: "10.03",
			tax:        "1.60",
			tipAmt:     "0",
			total:      "11.63",
		},
		{
			name:       "Percentage tip is taken from the discounted subtotal",
			lines:      []Line{{UnitPrice: d("19.99"), Quantity: 3}},
			discounts:  []Adjustment{{Type: model.DiscountPercentage, Value: d("15")}},
			tip:        TipPercent(d("15")),
			subtotal:   "59.97",
			discount:   "9.00",
			discounted: "50.97",
			tax:        "8.16",
			tipAmt:     "7.65",
			total:      "66.78",
		},
		{
			name:       "Empty order",
			subtotal:   "0",
			discount:   "0",
			discounted: "0",
			tax:        "0",
			tipAmt:     "0",
			total:      "0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bill := Compute(tc.lines, tc.discounts, taxRate, tc.tip)
			assertMoney(t, tc.subtotal, bill.Subtotal, "subtotal")
			assertMoney(t, tc.discount, bill.Discount, "discount")
			assertMoney(t, tc.discounted, bill.DiscountedSubtotal, "discountedSubtotal")
			assertMoney(t, tc.tax, bill.Tax, "tax")
			assertMoney(t, tc.tipAmt, bill.Tip, "tip")
			assertMoney(t, tc.total, bill.Total, "total")
		})
	}
}

func TestCompute_Invariants(t *testing.T) {
	lines := []Line{
		{UnitPrice: d("12.35"), Quantity: 3},
		{UnitPrice: d("7.10"), Quantity: 1},
		{UnitPrice: d("3.33"), Quantity: 7},
	}
	var discounts []Adjustment
	for i := 0; i < 12; i++ {
		if i%2 == 0 {
			discounts = append(discounts, Adjustment{Type: model.DiscountPercentage, Value: d("3.5")})
		} else {
			discounts = append(discounts, Adjustment{Type: model.DiscountFixed, Value: d("1.99")})
		}

		bill := Compute(lines, discounts, d("0.16"), TipPercent(d("18")))
		assert.True(t, bill.Discount.LessThanOrEqual(bill.Subtotal), "discount exceeds subtotal with %d discounts", i+1)
		assert.True(t, bill.Total.Equal(bill.DiscountedSubtotal.Add(bill.Tax).Add(bill.Tip)), "total mismatch with %d discounts", i+1)
		assert.False(t, bill.Total.IsNegative())
		for _, v := range []decimal.Decimal{bill.Subtotal, bill.Discount, bill.Tax, bill.Tip, bill.Total} {
			assert.GreaterOrEqual(t, v.Exponent(), int32(-2), "amounts must be at cent precision")
		}
	}
}

func TestForOrder(t *testing.T) {
	discountID := int64(3)
	order := model.Order{
		Items: []model.OrderItem{
			{UnitPrice: d("120"), Quantity: 1, Status: model.ItemServed},
			{UnitPrice: d("45.50"), Quantity: 2, Status: model.ItemReady},
			{UnitPrice: d("999"), Quantity: 1, Status: model.ItemCancelled},
		},
		Discounts: []model.DiscountApplication{
			{DiscountID: &discountID, Type: model.DiscountFixed, Value: d("11")},
		},
	}

	bill := ForOrder(order, d("0.16"), Tip{})
	assertMoney(t, "211.00", bill.Subtotal, "subtotal")
	assertMoney(t, "200.00", bill.DiscountedSubtotal, "discountedSubtotal")
	assertMoney(t, "32.00", bill.Tax, "tax")
	assertMoney(t, "232.00", bill.Total, "total")
}
