package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/weather"
)

// ForecastProvider fetches the raw 3-hourly forecast feed.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64) ([]domain.ForecastSample, error)
}

// WeatherService turns the upstream forecast feed into per-day summaries
// aligned to a trip's date range.
type WeatherService struct {
	forecasts ForecastProvider
	loc       *time.Location
}

// NewWeatherService constructs a WeatherService. Days are grouped in loc;
// pass time.Local unless the deployment serves a single fixed region.
func NewWeatherService(forecasts ForecastProvider, loc *time.Location) *WeatherService {
	if loc == nil {
		loc = time.Local
	}
	return &WeatherService{forecasts: forecasts, loc: loc}
}

// Preview returns one DayWeather per day of [start, end]. Days beyond the
// upstream forecast horizon come back with Available set to false. An
// upstream outage degrades the whole range to unavailable instead of
// failing the request; planning a trip does not require a forecast.
func (s *WeatherService) Preview(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.DayWeather, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrValidation)
	}

	samples, err := s.forecasts.Forecast(ctx, lat, lon)
	if err != nil {
		samples = nil
	}
	return weather.AlignDaily(samples, start, end, s.loc), nil
}
