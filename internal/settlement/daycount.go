package settlement

import (
	"math"
	"time"
)

// dateOnly normalizes a timestamp to local midnight so day differences ignore
// time-of-day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b. Positive when b
// is after a. DaysBetween(a, b) == -DaysBetween(b, a).
func DaysBetween(a, b time.Time) int {
	from := dateOnly(a)
	to := dateOnly(b)
	// Rounding absorbs DST transitions, which make some days 23 or 25 hours.
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// DaysUntil returns the calendar days from now to date (positive = future).
// The boolean is false when the date is missing; callers must treat that as
// "unknown" and never feed the zero into a monetary computation.
func DaysUntil(now, date time.Time) (int, bool) {
	if date.IsZero() {
		return 0, false
	}
	return DaysBetween(now, date), true
}

// DaysSince returns the calendar days from date to now (positive = date is in
// the past). Same unknown-date contract as DaysUntil.
func DaysSince(now, date time.Time) (int, bool) {
	if date.IsZero() {
		return 0, false
	}
	return DaysBetween(date, now), true
}
