// Package calendar implements the trip date-range picker model: a forward
// sequence of month grids and the two-click range selection protocol.
// Everything here is pure state — rendering belongs to the client.
package calendar

import (
	"errors"
	"time"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// ErrPastDay is returned by Selection.Select for days strictly before today.
// Such days are rendered disabled and must reject input.
var ErrPastDay = errors.New("day is in the past")

// Month is one month's grid. Days is a flat cell list: leading zero-value
// entries pad the grid to the month's first weekday (Sunday-first), followed
// by one entry per day of the month. A cell is blank when IsZero reports true.
type Month struct {
	Year  int
	Month time.Month
	Days  []time.Time
}

// Months returns count month grids starting at today's month.
// The picker shows 12 by convention, but the count is the caller's choice.
func Months(today time.Time, count int) []Month {
	months := make([]Month, 0, count)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	for i := 0; i < count; i++ {
		var days []time.Time

		// Sunday-first offset: time.Weekday already has Sunday == 0.
		for j := 0; j < int(first.Weekday()); j++ {
			days = append(days, time.Time{})
		}

		next := first.AddDate(0, 1, 0)
		for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}

		months = append(months, Month{Year: first.Year(), Month: first.Month(), Days: days})
		first = next
	}

	return months
}

// Selection holds the picker's start/end day pair and enforces the
// three-state click protocol:
//
//   - nothing selected: the clicked day becomes start, end is cleared;
//   - start only: clicking before start swaps (clicked becomes start, the
//     old start becomes end); clicking start again makes a single-day range;
//     anything else becomes end;
//   - both set: the clicked day becomes the new start, end is cleared.
type Selection struct {
	today time.Time
	start *time.Time
	end   *time.Time
}

// NewSelection builds an empty selection anchored to today.
// Days strictly before today are rejected by Select.
func NewSelection(today time.Time) *Selection {
	return &Selection{today: domain.DateOnly(today)}
}

// Select applies one click to the selection. Returns ErrPastDay (leaving the
// selection untouched) when day is strictly before today.
func (s *Selection) Select(day time.Time) error {
	d := domain.DateOnly(day)
	if d.Before(s.today) {
		return ErrPastDay
	}

	switch {
	case s.start == nil:
		s.start = &d
		s.end = nil
	case s.end == nil:
		switch {
		case d.Before(*s.start):
			s.end = s.start
			s.start = &d
		default:
			// Clicking the start day again yields a single-day range.
			s.end = &d
		}
	default:
		s.start = &d
		s.end = nil
	}

	return nil
}

// Reset clears both endpoints.
func (s *Selection) Reset() {
	s.start = nil
	s.end = nil
}

// Range returns the selected (start, end) pair. ok is false until both
// endpoints are set.
func (s *Selection) Range() (start, end time.Time, ok bool) {
	if s.start == nil || s.end == nil {
		return time.Time{}, time.Time{}, false
	}
	return *s.start, *s.end, true
}

// Start returns the selected start day, if any.
func (s *Selection) Start() (time.Time, bool) {
	if s.start == nil {
		return time.Time{}, false
	}
	return *s.start, true
}

// InRange reports whether day should be marked as a range member: equal to
// either endpoint or strictly between them. With only a start selected, only
// the start itself is a member.
func (s *Selection) InRange(day time.Time) bool {
	if s.start == nil {
		return false
	}
	d := domain.DateOnly(day)
	if d.Equal(*s.start) {
		return true
	}
	if s.end == nil {
		return false
	}
	return d.Equal(*s.end) || (d.After(*s.start) && d.Before(*s.end))
}

// Disabled reports whether day must be rendered non-clickable.
func (s *Selection) Disabled(day time.Time) bool {
	return domain.DateOnly(day).Before(s.today)
}
