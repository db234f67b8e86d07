package weather

import (
	"time"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// AlignDaily maps 3-hour forecast samples onto the closed day interval
// [start, end]: samples are grouped by their local calendar date in loc, and
// each day gets the sample whose local hour is nearest 12:00. When two
// samples are equidistant from noon the first in feed order wins — feed
// order is not contractual upstream, which is acceptable nondeterminism.
//
// The result always has exactly one record per day of [start, end], in
// order. Days with no sample (outside the ~5-day horizon, or an empty feed)
// are emitted with Available=false and zero values, never omitted. Passing
// the samples from a failed fetch as nil therefore still yields a full list.
func AlignDaily(samples []domain.ForecastSample, start, end time.Time, loc *time.Location) []domain.DayWeather {
	startDay := dateIn(start, loc)
	endDay := dateIn(end, loc)
	if startDay.After(endDay) {
		return nil
	}

	best := make(map[time.Time]domain.ForecastSample)
	for _, s := range samples {
		local := s.Time.In(loc)
		day := dateIn(local, loc)

		current, ok := best[day]
		if !ok || noonDistance(local.Hour()) < noonDistance(current.Time.In(loc).Hour()) {
			best[day] = s
		}
	}

	var days []domain.DayWeather
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		dw := domain.DayWeather{Date: d}
		if s, ok := best[d]; ok {
			dw.Available = true
			dw.Temperature = s.Temperature
			dw.Description = s.Description
			dw.Icon = s.Icon
		}
		days = append(days, dw)
	}
	return days
}

func noonDistance(hour int) int {
	if hour > 12 {
		return hour - 12
	}
	return 12 - hour
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
