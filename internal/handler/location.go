package handler

import (
	"net/http"
	"strings"

	"github.com/mkowalczyk/triplog/internal/geocode"
)

// maxLocationSuggestions bounds a single suggestion query.
const maxLocationSuggestions = 10

type placeResponse struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country,omitempty"`
}

// SearchLocations handles GET /locations?q=&limit=.
// It returns place suggestions for a free-text destination query.
func (s *Server) SearchLocations(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, map[string]any{"data": []placeResponse{}})
		return
	}

	limit := maxLocationSuggestions
	if n := intParam(r.URL.Query().Get("limit")); n != nil && *n > 0 && *n < limit {
		limit = *n
	}

	places, err := s.places.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]placeResponse, len(places))
	for i, p := range places {
		data[i] = placeToResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

// ResolveLocation handles GET /locations/resolve?q= and returns the single
// best coordinate match for a destination.
func (s *Server) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeBadRequest(w, "q is required")
		return
	}

	place, err := s.resolver.Resolve(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, placeToResponse(place))
}

func placeToResponse(p geocode.Place) placeResponse {
	return placeResponse{
		DisplayName: p.DisplayName(),
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Country:     p.Country,
	}
}
