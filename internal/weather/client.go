// Package weather talks to the OpenWeatherMap REST API and aligns its
// 5-day / 3-hour forecast feed onto calendar days.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// Client is a thin OpenWeatherMap API client.
// The zero value is not usable — construct it with NewClient.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a Client for the given API root and key.
// The HTTP client uses a fixed 30 second timeout; there are no retries —
// callers degrade gracefully instead (see AlignDaily).
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// forecastResponse mirrors the /forecast payload: ~5 days of 3-hour samples.
type forecastResponse struct {
	List []forecastItem `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

type forecastItem struct {
	Dt   int64 `json:"dt"` // unix seconds
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []conditionInfo `json:"weather"`
}

type conditionInfo struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// currentResponse mirrors the /weather payload for current conditions.
type currentResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
	Weather []conditionInfo `json:"weather"`
	Name    string          `json:"name"`
}

// Current holds current conditions for a location, used for the cached
// one-line weather summary on a trip.
type Current struct {
	Temperature float64
	Description string
	Icon        string
}

// Forecast fetches the 5-day / 3-hour forecast for the given coordinates.
// Temperatures are metric. Samples are returned in feed order.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]domain.ForecastSample, error) {
	var resp forecastResponse
	if err := c.get(ctx, "/forecast", lat, lon, &resp); err != nil {
		return nil, fmt.Errorf("weather.Client.Forecast: %w", err)
	}

	samples := make([]domain.ForecastSample, 0, len(resp.List))
	for _, item := range resp.List {
		s := domain.ForecastSample{
			Time:        time.Unix(item.Dt, 0),
			Temperature: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			s.ConditionID = item.Weather[0].ID
			s.Description = item.Weather[0].Description
			s.Icon = item.Weather[0].Icon
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// CurrentWeather fetches current conditions for the given coordinates.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (Current, error) {
	var resp currentResponse
	if err := c.get(ctx, "/weather", lat, lon, &resp); err != nil {
		return Current{}, fmt.Errorf("weather.Client.CurrentWeather: %w", err)
	}

	cur := Current{Temperature: resp.Main.Temp}
	if len(resp.Weather) > 0 {
		cur.Description = resp.Weather[0].Description
		cur.Icon = resp.Weather[0].Icon
	}
	return cur, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lon float64, out any) error {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
