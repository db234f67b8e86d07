package handler

import (
	"net/http"
	"time"

	"github.com/mkowalczyk/triplog/internal/calendar"
	"github.com/mkowalczyk/triplog/internal/domain"
)

// defaultCalendarMonths is how many month grids a picker request returns
// when no ?months= parameter is given.
const defaultCalendarMonths = 12

const maxCalendarMonths = 24

type monthResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	// Days holds one cell per grid position: a yyyy-mm-dd date, or null for
	// the leading blanks that align day 1 under its weekday (Sunday first).
	Days []*string `json:"days"`
	// Disabled parallels Days; days strictly before today reject selection.
	Disabled []bool `json:"disabled"`
}

// GetCalendar handles GET /calendar?months=&from=.
// It returns Sunday-first month grids starting at the current month, for
// date-range pickers. ?from= overrides "today" for testing and pre-filled
// edits.
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	count := defaultCalendarMonths
	if n := intParam(q.Get("months")); n != nil && *n > 0 {
		count = *n
		if count > maxCalendarMonths {
			count = maxCalendarMonths
		}
	}

	today := time.Now()
	if from := q.Get("from"); from != "" {
		parsed, err := time.Parse(domain.DateLayout, from)
		if err != nil {
			writeBadRequest(w, "from must be a yyyy-mm-dd date")
			return
		}
		today = parsed
	}

	months := calendar.Months(today, count)
	data := make([]monthResponse, len(months))
	for i, m := range months {
		data[i] = monthToResponse(m, today)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func monthToResponse(m calendar.Month, today time.Time) monthResponse {
	resp := monthResponse{
		Year:     m.Year,
		Month:    int(m.Month),
		Days:     make([]*string, len(m.Days)),
		Disabled: make([]bool, len(m.Days)),
	}
	for i, d := range m.Days {
		if d.IsZero() {
			resp.Disabled[i] = true
			continue
		}
		date := d.Format(domain.DateLayout)
		resp.Days[i] = &date
		resp.Disabled[i] = domain.DateOnly(d).Before(domain.DateOnly(today))
	}
	return resp
}
