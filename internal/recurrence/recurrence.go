package recurrence

import (
	"fmt"
	"time"
)

// Frequency enumerates how often a recurring category spawns work.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// Valid reports whether the frequency is one of the known values.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// Rule holds the recurrence parameters collected on a category.
// DueDay is a weekday 1..7 (1=Monday) for weekly rules and a day of month
// 1..31 for monthly and yearly rules. DueMonth 1..12 applies to yearly only.
type Rule struct {
	Frequency Frequency
	DueDay    int
	DueMonth  int
}

// RangeError reports a rule parameter outside its allowed range.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, e.Min, e.Max, e.Value)
}

// Validate checks the rule parameters against the ranges each frequency
// requires. It must pass before a recurring category is persisted;
// NextDueDate assumes validated input.
func (r Rule) Validate() error {
	if !r.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}

	switch r.Frequency {
	case Weekly:
		if r.DueDay < 1 || r.DueDay > 7 {
			return &RangeError{Field: "due_day", Value: r.DueDay, Min: 1, Max: 7}
		}
	case Monthly:
		if r.DueDay < 1 || r.DueDay > 31 {
			return &RangeError{Field: "due_day", Value: r.DueDay, Min: 1, Max: 31}
		}
	case Yearly:
		if r.DueDay < 1 || r.DueDay > 31 {
			return &RangeError{Field: "due_day", Value: r.DueDay, Min: 1, Max: 31}
		}
		if r.DueMonth < 1 || r.DueMonth > 12 {
			return &RangeError{Field: "due_month", Value: r.DueMonth, Min: 1, Max: 12}
		}
	}
	// Daily and quarterly take no day/month parameters.
	return nil
}

// NextDueDate returns the first due date strictly after from. It never
// returns from itself: a weekly rule whose weekday matches from advances a
// full seven days. Day-of-month targets are clamped to the target month's
// length (Jan 31 monthly -> Feb 29 in a leap year, Feb 28 otherwise).
// Quarterly rules carry no day parameter and resolve to the first day of
// the next calendar quarter.
func (r Rule) NextDueDate(from time.Time) time.Time {
	from = truncateToDay(from)

	switch r.Frequency {
	case Daily:
		return from.AddDate(0, 0, 1)

	case Weekly:
		current := isoWeekday(from.Weekday())
		delta := (r.DueDay - current + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return from.AddDate(0, 0, delta)

	case Monthly:
		year, month, _ := from.Date()
		return clampedDate(year, month+1, r.DueDay, from.Location())

	case Quarterly:
		year, month, _ := from.Date()
		firstOfQuarter := time.Month(((int(month)-1)/3)*3 + 1)
		return time.Date(year, firstOfQuarter, 1, 0, 0, 0, 0, from.Location()).AddDate(0, 3, 0)

	case Yearly:
		year := from.Year()
		next := clampedDate(year, time.Month(r.DueMonth), r.DueDay, from.Location())
		if !next.After(from) {
			next = clampedDate(year+1, time.Month(r.DueMonth), r.DueDay, from.Location())
		}
		return next
	}

	return from
}

// clampedDate builds year/month/day clamping day to the month's last day.
// month may be out of 1..12; time.Date normalizes it first.
func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, 0, 0, 0, 0, loc)
}

// isoWeekday maps time.Weekday (Sunday=0) to ISO numbering (Monday=1..Sunday=7).
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
