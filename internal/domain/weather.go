package domain

import "time"

// ForecastSample is one timestamped reading from the upstream
// 5-day / 3-hour forecast feed. Samples are ephemeral — consumed to build
// the per-day aligned view and never persisted.
type ForecastSample struct {
	Time        time.Time
	Temperature float64
	ConditionID int
	Description string
	Icon        string
}

// DayWeather is one calendar day's aligned weather summary. When no sample
// within the forecast horizon covers the day, Available is false and the
// remaining fields are zero values — the day is still emitted, never omitted.
type DayWeather struct {
	Date        time.Time // calendar date, midnight in the aligner's location
	Available   bool
	Temperature float64
	Description string
	Icon        string
}
