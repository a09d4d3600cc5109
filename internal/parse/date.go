package parse

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a business date.
const DateLayout = "2006-01-02"

// BusinessDay is one calendar date in the venue's timezone.
type BusinessDay struct {
	Date  string    // YYYY-MM-DD
	Start time.Time // 00:00:00 local
	End   time.Time // 00:00:00 local of the following day, exclusive
}

// ParseBusinessDate parses a YYYY-MM-DD date and returns its window in loc.
func ParseBusinessDate(raw string, loc *time.Location) (BusinessDay, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.TrimSpace(raw)
	start, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return BusinessDay{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err)
	}
	return BusinessDay{
		Date:  start.Format(DateLayout),
		Start: start,
		End:   start.AddDate(0, 0, 1),
	}, nil
}
