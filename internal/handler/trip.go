package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/middleware"
	"github.com/mkowalczyk/triplog/internal/search"
	"github.com/mkowalczyk/triplog/internal/service"
)

type tripRequest struct {
	Title        string              `json:"title"`
	Description  *string             `json:"description"`
	StartDate    openapi_types.Date  `json:"start_date"`
	EndDate      *openapi_types.Date `json:"end_date"`
	Latitude     *float64            `json:"latitude"`
	Longitude    *float64            `json:"longitude"`
	LocationName *string             `json:"location_name"`
}

type tripResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	StartDate      string    `json:"start_date"`
	EndDate        *string   `json:"end_date,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	LocationName   *string   `json:"location_name,omitempty"`
	WeatherSummary *string   `json:"weather_summary,omitempty"`
	Category       string    `json:"category,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type tripListResponse struct {
	Data       []tripResponse `json:"data"`
	Pagination pagination     `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	created, err := s.trips.Create(r.Context(), requestToTrip(req, middleware.UserEmail(r.Context())))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created, ""))
}

// ListTrips handles GET /trips.
// Query parameters: ?page= and ?limit= (defaults 1 and 20, max 100),
// ?q= free-text filter, ?mode=search for strict search-screen semantics,
// ?category= one of upcoming, current, past.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category, ok := domain.ParseCategory(q.Get("category"))
	if !ok {
		writeBadRequest(w, "category must be one of upcoming, current, past")
		return
	}

	opts := service.ListOptions{
		Query:    q.Get("q"),
		Mode:     search.ParseMode(q.Get("mode")),
		Category: category,
		Page:     domain.NewPaginationParams(intParam(q.Get("page")), intParam(q.Get("limit"))),
	}

	page, err := s.trips.List(r.Context(), middleware.UserEmail(r.Context()), opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]tripResponse, len(page.Trips))
	for i, t := range page.Trips {
		data[i] = tripToResponse(t.Trip, t.Category)
	}
	writeJSON(w, http.StatusOK, tripListResponse{
		Data: data,
		Pagination: pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: int(page.Total),
		},
	})
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(r)
	if !ok {
		writeBadRequest(w, "trip id must be a valid UUID")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), middleware.UserEmail(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip.Trip, trip.Category))
}

// UpdateTrip handles PUT /trips/{tripID}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(r)
	if !ok {
		writeBadRequest(w, "trip id must be a valid UUID")
		return
	}
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	trip := requestToTrip(req, middleware.UserEmail(r.Context()))
	trip.ID = id

	updated, err := s.trips.Update(r.Context(), trip)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated, ""))
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(r)
	if !ok {
		writeBadRequest(w, "trip id must be a valid UUID")
		return
	}

	if err := s.trips.Delete(r.Context(), middleware.UserEmail(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// intParam parses a positive decimal query parameter, nil when absent or bad.
func intParam(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// requestToTrip converts a request body into a domain.Trip owned by userEmail.
func requestToTrip(req tripRequest, userEmail string) domain.Trip {
	t := domain.Trip{
		UserEmail: userEmail,
		Title:     req.Title,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if !req.StartDate.IsZero() {
		t.StartDate = req.StartDate.Format(domain.DateLayout)
	}
	if req.EndDate != nil {
		end := req.EndDate.Format(domain.DateLayout)
		t.EndDate = &end
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.LocationName != nil {
		t.LocationName = *req.LocationName
	}
	return t
}

// tripToResponse converts a domain.Trip into its API shape. An empty
// category is omitted from the JSON.
func tripToResponse(t domain.Trip, category domain.Category) tripResponse {
	resp := tripResponse{
		ID:        t.ID.String(),
		Title:     t.Title,
		StartDate: t.StartDate,
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
		Category:  string(category),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Description != "" {
		resp.Description = &t.Description
	}
	if t.EndDate != nil {
		resp.EndDate = t.EndDate
	}
	if t.LocationName != "" {
		resp.LocationName = &t.LocationName
	}
	if t.WeatherSummary != "" {
		resp.WeatherSummary = &t.WeatherSummary
	}
	return resp
}
