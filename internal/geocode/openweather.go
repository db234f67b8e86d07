package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// OWMClient queries the OpenWeatherMap direct geocoding API. It resolves a
// free-text destination to a single best match and shares the weather API key.
type OWMClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewOWMClient returns an OWMClient for the given API root and key.
func NewOWMClient(baseURL, apiKey string) *OWMClient {
	return &OWMClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type owmPlace struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// Resolve returns the best match for a free-text destination.
// Returns domain.ErrNotFound when the API has no result at all.
func (c *OWMClient) Resolve(ctx context.Context, query string) (Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/direct?"+params.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("geocode.OWMClient.Resolve: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("geocode.OWMClient.Resolve: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("geocode.OWMClient.Resolve: unexpected status %s", resp.Status)
	}

	var results []owmPlace
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Place{}, fmt.Errorf("geocode.OWMClient.Resolve: decode response: %w", err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("geocode.OWMClient.Resolve: %w", domain.ErrNotFound)
	}

	r := results[0]
	return Place{
		Name:      r.Name,
		State:     r.State,
		Country:   r.Country,
		Latitude:  r.Lat,
		Longitude: r.Lon,
	}, nil
}
