package dateinterval

import (
	"errors"
	"time"
)

var (
	ErrReversed     = errors.New("dateinterval: end date is before start date")
	ErrZeroDuration = errors.New("dateinterval: start and end fall on the same day")
)

// Interval is a closed whole-day range [Start, End]. Both bounds are
// normalized to UTC midnight; a rental returned on the same day another one
// starts still occupies that day, so back-to-back intervals overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Interval, error) {
	iv := Interval{Start: Day(start), End: Day(end)}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() {
		return ErrReversed
	}
	if iv.End.Before(iv.Start) {
		return ErrReversed
	}
	if iv.End.Equal(iv.Start) {
		return ErrZeroDuration
	}
	return nil
}

// Days returns the billable whole-day count, never less than one.
func (iv Interval) Days() int {
	days := int(iv.End.Sub(iv.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Overlaps reports whether two closed intervals share at least one day.
func (iv Interval) Overlaps(other Interval) bool {
	return !iv.Start.After(other.End) && !iv.End.Before(other.Start)
}

func (iv Interval) ContainsDay(t time.Time) bool {
	d := Day(t)
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Day truncates a timestamp to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
