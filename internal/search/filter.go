// Package search implements the trip search/filter contract: a
// case-insensitive substring match over title and description, with
// mode-dependent handling of the blank query.
package search

import (
	"strings"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// Mode selects what a blank query means.
type Mode int

const (
	// ModeNormal is the default listing: a blank query applies no filter.
	ModeNormal Mode = iota
	// ModeSearch is the full-screen search state: a blank query shows zero
	// results until the user types something.
	ModeSearch
)

// ParseMode maps the wire value to a Mode. Anything but "search" is normal.
func ParseMode(s string) Mode {
	if s == "search" {
		return ModeSearch
	}
	return ModeNormal
}

// Filter returns the subset of trips whose title or description contains
// query as a case-insensitive substring, preserving input order. The result
// is never nil, so callers can range over it directly.
func Filter(trips []domain.Trip, query string, mode Mode) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))

	q := strings.TrimSpace(query)
	if q == "" {
		if mode == ModeSearch {
			return out
		}
		return append(out, trips...)
	}

	q = strings.ToLower(q)
	for _, t := range trips {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}
