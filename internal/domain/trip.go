package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the storage and wire format for calendar dates.
// Dates carry no time component anywhere in the journal.
const DateLayout = "2006-01-02"

// Trip is a user-recorded journey: a date span plus optional location and
// photos. Dates are stored as text in DateLayout form; rows written by the
// service layer are always well-formed, but legacy rows may not be, which is
// why Span returns an error instead of panicking.
type Trip struct {
	ID             uuid.UUID
	UserEmail      string
	Title          string
	Description    string
	StartDate      string  // DateLayout
	EndDate        *string // nil means single-day trip (end == start)
	Latitude       *float64
	Longitude      *float64
	LocationName   string // optional human-readable label, e.g. "Kraków, Polska"
	WeatherSummary string // optional cached one-liner, refreshed best-effort
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Span parses the trip's date range. A missing end date falls back to the
// start date, making every trip a closed [start, end] interval.
func (t Trip) Span() (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, t.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end = start
	if t.EndDate != nil && *t.EndDate != "" {
		end, err = time.Parse(DateLayout, *t.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// HasCoordinates reports whether both latitude and longitude are set.
func (t Trip) HasCoordinates() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// Category classifies a trip relative to "today".
type Category string

const (
	CategoryUpcoming Category = "upcoming"
	CategoryCurrent  Category = "current"
	CategoryPast     Category = "past"
)

// ParseCategory validates a category string from the HTTP layer.
// The empty string is valid and means "no category filter".
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case "", CategoryUpcoming, CategoryCurrent, CategoryPast:
		return Category(s), true
	}
	return "", false
}

// Categorize classifies a trip as upcoming, current or past relative to
// today. Trips with unparseable dates are deterministically treated as past
// so that one malformed row can never abort a listing pass.
func Categorize(t Trip, today time.Time) Category {
	start, end, err := t.Span()
	if err != nil {
		return CategoryPast
	}
	d := DateOnly(today)
	switch {
	case start.After(d):
		return CategoryUpcoming
	case end.Before(d):
		return CategoryPast
	default:
		return CategoryCurrent
	}
}

// DateOnly truncates a time to its calendar date, rebuilt at midnight UTC.
// Stored dates parse to UTC midnights, so normalizing here keeps date
// comparisons zone-independent no matter where the wall clock came from.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
