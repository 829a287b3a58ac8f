package shared

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive [From, To] window. A zero bound means unbounded
// on that side.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange builds a DateRange from "2006-01-02" query parameters. The
// upper bound is pushed to the end of its day so filters behave inclusively.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid from date %q", ErrValidation, from)
		}
		r.From = t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid to date %q", ErrValidation, to)
		}
		r.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return DateRange{}, fmt.Errorf("%w: date range end before start", ErrValidation)
	}
	return r, nil
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}
