package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"restaurant-floor-backend/internal/billing"
)

var (
	percentRe = regexp.MustCompile(`^(\d+(?:\.\d{1,2})?)\s*%$`)
	amountRe  = regexp.MustCompile(`^(\d+(?:\.\d{1,2})?)$`)
)

var maxTipPercent = decimal.NewFromInt(100)

// ParseTip reads a tip expression: "15%" is a percentage of the discounted subtotal,
// "40.00" a fixed amount. An empty string means no tip.
func ParseTip(raw string) (billing.Tip, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return billing.Tip{}, nil
	}

	if m := percentRe.FindStringSubmatch(s); m != nil {
		p, err := decimal.NewFromString(m[1])
		if err != nil {
			return billing.Tip{}, fmt.Errorf("invalid tip percentage %q: %w", raw, err)
		}
		if p.GreaterThan(maxTipPercent) {
			return billing.Tip{}, fmt.Errorf("tip percentage %s exceeds 100", p)
		}
		return billing.TipPercent(p), nil
	}

	if m := amountRe.FindStringSubmatch(s); m != nil {
		a, err := decimal.NewFromString(m[1])
		if err != nil {
			return billing.Tip{}, fmt.Errorf("invalid tip amount %q: %w", raw, err)
		}
		return billing.TipAmount(a), nil
	}

	return billing.Tip{}, fmt.Errorf("unable to parse tip: %q", raw)
}
