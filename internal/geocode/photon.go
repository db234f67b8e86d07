package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PhotonClient queries the Photon location-search API (photon.komoot.io).
// Photon needs no API key.
type PhotonClient struct {
	baseURL string
	http    *http.Client
}

// NewPhotonClient returns a PhotonClient for the given API root.
func NewPhotonClient(baseURL string) *PhotonClient {
	return &PhotonClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// photonResponse mirrors Photon's GeoJSON feature collection.
type photonResponse struct {
	Features []struct {
		Properties struct {
			Name        string `json:"name"`
			City        string `json:"city"`
			State       string `json:"state"`
			Country     string `json:"country"`
			CountryCode string `json:"countrycode"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"features"`
}

// Search returns up to limit suggestions for a free-text query.
func (c *PhotonClient) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("lang", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode.PhotonClient.Search: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode.PhotonClient.Search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode.PhotonClient.Search: unexpected status %s", resp.Status)
	}

	var body photonResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode.PhotonClient.Search: decode response: %w", err)
	}

	places := make([]Place, 0, len(body.Features))
	for _, f := range body.Features {
		p := Place{
			Name:        f.Properties.Name,
			City:        f.Properties.City,
			State:       f.Properties.State,
			Country:     f.Properties.Country,
			CountryCode: f.Properties.CountryCode,
		}
		// GeoJSON order is [lon, lat].
		if len(f.Geometry.Coordinates) >= 2 {
			p.Longitude = f.Geometry.Coordinates[0]
			p.Latitude = f.Geometry.Coordinates[1]
		}
		places = append(places, p)
	}
	return places, nil
}
