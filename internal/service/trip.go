package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/geocode"
	"github.com/mkowalczyk/triplog/internal/repo"
	"github.com/mkowalczyk/triplog/internal/search"
	"github.com/mkowalczyk/triplog/internal/weather"
)

// FileStore is the slice of the image store the trip service needs.
type FileStore interface {
	Save(data []byte) (string, error)
	Read(name string) ([]byte, error)
	Remove(name string) error
}

// CurrentWeatherProvider fetches present-day conditions for the cached
// one-line weather summary on a trip.
type CurrentWeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (weather.Current, error)
}

// Publisher receives change notifications for live-updating trip lists.
// Satisfied by *notify.Hub.
type Publisher interface {
	Publish(topic string)
}

// Geocoder resolves a free-text location name to a single place.
// Satisfied by *geocode.OWMClient.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (geocode.Place, error)
}

// TripsTopic names the change-notification topic for one user's trip set.
func TripsTopic(userEmail string) string {
	return "trips:" + userEmail
}

// AnnotatedTrip is a trip together with its category relative to today.
type AnnotatedTrip struct {
	domain.Trip
	Category domain.Category
}

// TripPage is one page of a user's trips.
// Total is the full match count before the optional category filter; the
// category is derived from today's date, so filtering by it happens in
// memory on the fetched page.
type TripPage struct {
	Trips []AnnotatedTrip
	Total int64
	Page  int
	Limit int
}

// ListOptions narrows a trip listing.
type ListOptions struct {
	Query    string
	Mode     search.Mode
	Category domain.Category
	Page     domain.PaginationParams
}

// TripService implements business logic for trips and their photos.
type TripService struct {
	trips    repo.TripRepo
	images   repo.TripImageRepo
	files    FileStore
	current  CurrentWeatherProvider
	geocoder Geocoder
	pub      Publisher
	now      func() time.Time
}

// NewTripService constructs a TripService. current may be nil to disable
// weather summaries, geocoder may be nil to disable coordinate backfill, and
// pub may be nil to disable change notifications.
func NewTripService(trips repo.TripRepo, images repo.TripImageRepo, files FileStore, current CurrentWeatherProvider, geocoder Geocoder, pub Publisher) *TripService {
	return &TripService{
		trips:    trips,
		images:   images,
		files:    files,
		current:  current,
		geocoder: geocoder,
		pub:      pub,
		now:      time.Now,
	}
}

// Create validates and persists a new trip, then fetches a weather summary
// for it in a best-effort way.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	trip = s.backfillCoordinates(ctx, trip)
	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	created = s.refreshWeatherSummary(ctx, created)
	s.notify(created.UserEmail)
	return created, nil
}

// GetByID returns a single trip owned by userEmail.
func (s *TripService) GetByID(ctx context.Context, userEmail string, id uuid.UUID) (AnnotatedTrip, error) {
	trip, err := s.trips.GetByID(ctx, userEmail, id)
	if err != nil {
		return AnnotatedTrip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return s.annotate(trip), nil
}

// List returns a page of the user's trips, newest start date first, each
// classified as upcoming, current or past. A search-mode listing with a
// blank query matches nothing; a normal listing with a blank query matches
// everything.
func (s *TripService) List(ctx context.Context, userEmail string, opts ListOptions) (TripPage, error) {
	page := TripPage{Trips: []AnnotatedTrip{}, Page: opts.Page.Page, Limit: opts.Page.Limit}

	query := strings.TrimSpace(opts.Query)
	if opts.Mode == search.ModeSearch && query == "" {
		return page, nil
	}

	var (
		trips []domain.Trip
		total int64
		err   error
	)
	if query == "" {
		trips, total, err = s.trips.ListByUser(ctx, userEmail, opts.Page)
	} else {
		trips, total, err = s.trips.SearchByUser(ctx, userEmail, query, opts.Page)
	}
	if err != nil {
		return TripPage{}, fmt.Errorf("service.TripService.List: %w", err)
	}

	page.Total = total
	for _, t := range trips {
		at := s.annotate(t)
		if opts.Category != "" && at.Category != opts.Category {
			continue
		}
		page.Trips = append(page.Trips, at)
	}
	return page, nil
}

// Update validates and persists changes to an existing trip, refreshing its
// weather summary when it has coordinates.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	trip = s.backfillCoordinates(ctx, trip)
	updated, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	updated = s.refreshWeatherSummary(ctx, updated)
	s.notify(updated.UserEmail)
	return updated, nil
}

// Delete removes a trip, its image rows and, best effort, their files.
func (s *TripService) Delete(ctx context.Context, userEmail string, id uuid.UUID) error {
	imgs, err := s.images.ListByTripID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	// The row delete cascades to trip_images; files go afterwards so a
	// failed delete never leaves rows pointing at missing files.
	if err := s.trips.Delete(ctx, userEmail, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if s.files != nil {
		for _, img := range imgs {
			_ = s.files.Remove(img.Path)
		}
	}
	s.notify(userEmail)
	return nil
}

// AttachImages stores the uploaded files and links them to the trip, after
// the last existing image in display order.
func (s *TripService) AttachImages(ctx context.Context, userEmail string, tripID uuid.UUID, files [][]byte) ([]domain.TripImage, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images supplied", domain.ErrValidation)
	}
	if _, err := s.trips.GetByID(ctx, userEmail, tripID); err != nil {
		return nil, fmt.Errorf("service.TripService.AttachImages: %w", err)
	}
	next, err := s.images.MaxOrderIndex(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.AttachImages: %w", err)
	}
	next++

	batch := make([]domain.TripImage, 0, len(files))
	for i, data := range files {
		path, err := s.files.Save(data)
		if err != nil {
			return nil, fmt.Errorf("service.TripService.AttachImages: %w", err)
		}
		batch = append(batch, domain.TripImage{
			TripID:     tripID,
			Path:       path,
			OrderIndex: next + i,
		})
	}
	created, err := s.images.CreateBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.AttachImages: %w", err)
	}
	s.notify(userEmail)
	return created, nil
}

// ListImages returns the trip's photos in display order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListImages(ctx context.Context, userEmail string, tripID uuid.UUID) ([]domain.TripImage, error) {
	if _, err := s.trips.GetByID(ctx, userEmail, tripID); err != nil {
		return nil, fmt.Errorf("service.TripService.ListImages: %w", err)
	}
	imgs, err := s.images.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListImages: %w", err)
	}
	if imgs == nil {
		return []domain.TripImage{}, nil
	}
	return imgs, nil
}

// ImageData returns the bytes of one photo, ownership-checked.
func (s *TripService) ImageData(ctx context.Context, userEmail string, tripID, imageID uuid.UUID) ([]byte, error) {
	if _, err := s.trips.GetByID(ctx, userEmail, tripID); err != nil {
		return nil, fmt.Errorf("service.TripService.ImageData: %w", err)
	}
	img, err := s.images.GetByID(ctx, tripID, imageID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ImageData: %w", err)
	}
	data, err := s.files.Read(img.Path)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ImageData: %w", err)
	}
	return data, nil
}

// DeleteImage removes one photo row and, best effort, its file.
func (s *TripService) DeleteImage(ctx context.Context, userEmail string, tripID, imageID uuid.UUID) error {
	if _, err := s.trips.GetByID(ctx, userEmail, tripID); err != nil {
		return fmt.Errorf("service.TripService.DeleteImage: %w", err)
	}
	img, err := s.images.GetByID(ctx, tripID, imageID)
	if err != nil {
		return fmt.Errorf("service.TripService.DeleteImage: %w", err)
	}
	if err := s.images.Delete(ctx, tripID, imageID); err != nil {
		return fmt.Errorf("service.TripService.DeleteImage: %w", err)
	}
	if s.files != nil {
		_ = s.files.Remove(img.Path)
	}
	s.notify(userEmail)
	return nil
}

func (s *TripService) annotate(t domain.Trip) AnnotatedTrip {
	return AnnotatedTrip{Trip: t, Category: domain.Categorize(t, s.now())}
}

// backfillCoordinates resolves a trip saved with a location name but no
// coordinates. A failed lookup leaves the trip as submitted: the name alone
// is still a valid trip.
func (s *TripService) backfillCoordinates(ctx context.Context, trip domain.Trip) domain.Trip {
	if s.geocoder == nil || trip.HasCoordinates() || strings.TrimSpace(trip.LocationName) == "" {
		return trip
	}
	place, err := s.geocoder.Resolve(ctx, trip.LocationName)
	if err != nil {
		return trip
	}
	trip.Latitude = &place.Latitude
	trip.Longitude = &place.Longitude
	return trip
}

// refreshWeatherSummary caches a one-line current-conditions summary on the
// trip. Failures are swallowed: weather is decoration, not data.
func (s *TripService) refreshWeatherSummary(ctx context.Context, trip domain.Trip) domain.Trip {
	if s.current == nil || !trip.HasCoordinates() {
		return trip
	}
	cur, err := s.current.CurrentWeather(ctx, *trip.Latitude, *trip.Longitude)
	if err != nil {
		return trip
	}
	summary := fmt.Sprintf("%.0f°C, %s", cur.Temperature, cur.Description)
	if err := s.trips.SetWeatherSummary(ctx, trip.UserEmail, trip.ID, summary); err != nil {
		return trip
	}
	trip.WeatherSummary = summary
	return trip
}

func (s *TripService) notify(userEmail string) {
	if s.pub != nil {
		s.pub.Publish(TripsTopic(userEmail))
	}
}

// validateTrip enforces business rules common to both Create and Update.
//   - Title must be non-empty (whitespace-only titles are rejected).
//   - StartDate must be a well-formed yyyy-mm-dd date.
//   - EndDate, if set, must be well-formed and not before StartDate.
//   - Latitude and Longitude must be set together and lie in range.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	start, err := time.Parse(domain.DateLayout, trip.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start_date must be a yyyy-mm-dd date", domain.ErrValidation)
	}
	if trip.EndDate != nil && *trip.EndDate != "" {
		end, err := time.Parse(domain.DateLayout, *trip.EndDate)
		if err != nil {
			return fmt.Errorf("%w: end_date must be a yyyy-mm-dd date", domain.ErrValidation)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
		}
	}
	if (trip.Latitude == nil) != (trip.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be set together", domain.ErrValidation)
	}
	if trip.Latitude != nil {
		if *trip.Latitude < -90 || *trip.Latitude > 90 {
			return fmt.Errorf("%w: latitude out of range", domain.ErrValidation)
		}
		if *trip.Longitude < -180 || *trip.Longitude > 180 {
			return fmt.Errorf("%w: longitude out of range", domain.ErrValidation)
		}
	}
	return nil
}
