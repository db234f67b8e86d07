// Package handler implements the HTTP handlers for the trip journal API.
// Methods are split into domain-specific files (auth.go, trip.go, etc.) but
// all share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/geocode"
	"github.com/mkowalczyk/triplog/internal/middleware"
	"github.com/mkowalczyk/triplog/internal/notify"
	"github.com/mkowalczyk/triplog/internal/service"
	"github.com/mkowalczyk/triplog/internal/session"
)

// The handler depends on interfaces defined here, in the consumer package.
// This follows the Go convention "accept interfaces, return concrete types"
// and lets handler tests inject mocks without touching the service layer.

// AuthServicer defines the account operations the handler depends on.
type AuthServicer interface {
	Register(ctx context.Context, in service.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	Profile(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, email, firstName, lastName string) (domain.User, error)
	ChangePassword(ctx context.Context, email, current, next, confirm string) error
	SetProfileImage(ctx context.Context, email, path string) error
}

// TripServicer defines the trip and photo operations the handler depends on.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, userEmail string, id uuid.UUID) (service.AnnotatedTrip, error)
	List(ctx context.Context, userEmail string, opts service.ListOptions) (service.TripPage, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, userEmail string, id uuid.UUID) error
	AttachImages(ctx context.Context, userEmail string, tripID uuid.UUID, files [][]byte) ([]domain.TripImage, error)
	ListImages(ctx context.Context, userEmail string, tripID uuid.UUID) ([]domain.TripImage, error)
	ImageData(ctx context.Context, userEmail string, tripID, imageID uuid.UUID) ([]byte, error)
	DeleteImage(ctx context.Context, userEmail string, tripID, imageID uuid.UUID) error
}

// WeatherServicer returns per-day forecasts aligned to a date range.
type WeatherServicer interface {
	Preview(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.DayWeather, error)
}

// ExportServicer assembles the flat export of a user's journal.
type ExportServicer interface {
	Export(ctx context.Context, userEmail string) ([]domain.ExportRow, error)
}

// LocationSearcher suggests places for a free-text query.
type LocationSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]geocode.Place, error)
}

// LocationResolver returns the single best match for a destination.
type LocationResolver interface {
	Resolve(ctx context.Context, query string) (geocode.Place, error)
}

// Subscriber delivers change notifications for live-updating clients.
// Satisfied by *notify.Hub.
type Subscriber interface {
	Subscribe(topic string) (<-chan notify.Event, func())
}

// FileSaver stores uploaded profile images.
type FileSaver interface {
	Save(data []byte) (string, error)
	Read(name string) ([]byte, error)
}

// Server holds the dependencies shared by all endpoint handlers.
type Server struct {
	auth     AuthServicer
	trips    TripServicer
	weather  WeatherServicer
	export   ExportServicer
	places   LocationSearcher
	resolver LocationResolver
	events   Subscriber
	files    FileSaver
	sessions *session.Store
}

// NewServer constructs the Server with all its dependencies.
func NewServer(
	auth AuthServicer,
	trips TripServicer,
	weather WeatherServicer,
	export ExportServicer,
	places LocationSearcher,
	resolver LocationResolver,
	events Subscriber,
	files FileSaver,
	sessions *session.Store,
) *Server {
	return &Server{
		auth:     auth,
		trips:    trips,
		weather:  weather,
		export:   export,
		places:   places,
		resolver: resolver,
		events:   events,
		files:    files,
		sessions: sessions,
	}
}

// Routes mounts every endpoint on a fresh router. Everything except
// registration, login and the health check requires a valid session token.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Post("/auth/register", s.Register)
	r.Post("/auth/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.sessions))

		r.Post("/auth/logout", s.Logout)

		r.Get("/profile", s.GetProfile)
		r.Put("/profile", s.UpdateProfile)
		r.Put("/profile/password", s.ChangePassword)
		r.Post("/profile/image", s.UploadProfileImage)
		r.Get("/profile/image", s.GetProfileImage)

		r.Get("/trips", s.ListTrips)
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/{tripID}", s.GetTrip)
		r.Put("/trips/{tripID}", s.UpdateTrip)
		r.Delete("/trips/{tripID}", s.DeleteTrip)

		r.Get("/trips/{tripID}/images", s.ListTripImages)
		r.Post("/trips/{tripID}/images", s.UploadTripImages)
		r.Get("/trips/{tripID}/images/{imageID}", s.GetTripImage)
		r.Delete("/trips/{tripID}/images/{imageID}", s.DeleteTripImage)

		r.Get("/weather", s.WeatherPreview)
		r.Get("/locations", s.SearchLocations)
		r.Get("/locations/resolve", s.ResolveLocation)
		r.Get("/calendar", s.GetCalendar)
		r.Get("/export.csv", s.ExportCSV)
		r.Get("/events", s.StreamEvents)
	})

	return r
}

// tripIDParam parses the {tripID} path parameter.
func tripIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	return id, err == nil
}

// imageIDParam parses the {imageID} path parameter.
func imageIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "imageID"))
	return id, err == nil
}
