package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/geocode"
	"github.com/mkowalczyk/triplog/internal/handler"
	"github.com/mkowalczyk/triplog/internal/notify"
	"github.com/mkowalczyk/triplog/internal/service"
	"github.com/mkowalczyk/triplog/internal/session"
)

// Hand-written function-field doubles for the handler's service interfaces.

type mockAuthService struct {
	register        func(ctx context.Context, in service.RegisterInput) (domain.User, error)
	login           func(ctx context.Context, email, password string) (domain.User, error)
	profile         func(ctx context.Context, email string) (domain.User, error)
	updateProfile   func(ctx context.Context, email, firstName, lastName string) (domain.User, error)
	changePassword  func(ctx context.Context, email, current, next, confirm string) error
	setProfileImage func(ctx context.Context, email, path string) error
}

func (m *mockAuthService) Register(ctx context.Context, in service.RegisterInput) (domain.User, error) {
	return m.register(ctx, in)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthService) Profile(ctx context.Context, email string) (domain.User, error) {
	return m.profile(ctx, email)
}
func (m *mockAuthService) UpdateProfile(ctx context.Context, email, firstName, lastName string) (domain.User, error) {
	return m.updateProfile(ctx, email, firstName, lastName)
}
func (m *mockAuthService) ChangePassword(ctx context.Context, email, current, next, confirm string) error {
	return m.changePassword(ctx, email, current, next, confirm)
}
func (m *mockAuthService) SetProfileImage(ctx context.Context, email, path string) error {
	return m.setProfileImage(ctx, email, path)
}

type mockTripService struct {
	create       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID      func(ctx context.Context, userEmail string, id uuid.UUID) (service.AnnotatedTrip, error)
	list         func(ctx context.Context, userEmail string, opts service.ListOptions) (service.TripPage, error)
	update       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete       func(ctx context.Context, userEmail string, id uuid.UUID) error
	attachImages func(ctx context.Context, userEmail string, tripID uuid.UUID, files [][]byte) ([]domain.TripImage, error)
	listImages   func(ctx context.Context, userEmail string, tripID uuid.UUID) ([]domain.TripImage, error)
	imageData    func(ctx context.Context, userEmail string, tripID, imageID uuid.UUID) ([]byte, error)
	deleteImage  func(ctx context.Context, userEmail string, tripID, imageID uuid.UUID) error
}

func (m *mockTripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripService) GetByID(ctx context.Context, userEmail string, id uuid.UUID) (service.AnnotatedTrip, error) {
	return m.getByID(ctx, userEmail, id)
}
func (m *mockTripService) List(ctx context.Context, userEmail string, opts service.ListOptions) (service.TripPage, error) {
	return m.list(ctx, userEmail, opts)
}
func (m *mockTripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripService) Delete(ctx context.Context, userEmail string, id uuid.UUID) error {
	return m.delete(ctx, userEmail, id)
}
func (m *mockTripService) AttachImages(ctx context.Context, userEmail string, tripID uuid.UUID, files [][]byte) ([]domain.TripImage, error) {
	return m.attachImages(ctx, userEmail, tripID, files)
}
func (m *mockTripService) ListImages(ctx context.Context, userEmail string, tripID uuid.UUID) ([]domain.TripImage, error) {
	return m.listImages(ctx, userEmail, tripID)
}
func (m *mockTripService) ImageData(ctx context.Context, userEmail string, tripID, imageID uuid.UUID) ([]byte, error) {
	return m.imageData(ctx, userEmail, tripID, imageID)
}
func (m *mockTripService) DeleteImage(ctx context.Context, userEmail string, tripID, imageID uuid.UUID) error {
	return m.deleteImage(ctx, userEmail, tripID, imageID)
}

type mockWeatherService struct {
	preview func(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.DayWeather, error)
}

func (m *mockWeatherService) Preview(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.DayWeather, error) {
	return m.preview(ctx, lat, lon, start, end)
}

type mockExportService struct {
	export func(ctx context.Context, userEmail string) ([]domain.ExportRow, error)
}

func (m *mockExportService) Export(ctx context.Context, userEmail string) ([]domain.ExportRow, error) {
	return m.export(ctx, userEmail)
}

type mockPlaces struct {
	search  func(ctx context.Context, query string, limit int) ([]geocode.Place, error)
	resolve func(ctx context.Context, query string) (geocode.Place, error)
}

func (m *mockPlaces) Search(ctx context.Context, query string, limit int) ([]geocode.Place, error) {
	return m.search(ctx, query, limit)
}
func (m *mockPlaces) Resolve(ctx context.Context, query string) (geocode.Place, error) {
	return m.resolve(ctx, query)
}

type mockFiles struct {
	save func(data []byte) (string, error)
	read func(name string) ([]byte, error)
}

func (m *mockFiles) Save(data []byte) (string, error) { return m.save(data) }
func (m *mockFiles) Read(name string) ([]byte, error) { return m.read(name) }

// deps bundles every server dependency with working zero defaults.
type deps struct {
	auth    *mockAuthService
	trips   *mockTripService
	weather *mockWeatherService
	export  *mockExportService
	places  *mockPlaces
	files   *mockFiles
	hub     *notify.Hub
}

// newTestServer builds a routed server around the mocks and returns it with
// a session store and a valid token for anna@example.com.
func newTestServer(t *testing.T, d deps) (http.Handler, *session.Store, string) {
	t.Helper()

	if d.auth == nil {
		d.auth = &mockAuthService{}
	}
	if d.trips == nil {
		d.trips = &mockTripService{}
	}
	if d.weather == nil {
		d.weather = &mockWeatherService{}
	}
	if d.export == nil {
		d.export = &mockExportService{}
	}
	if d.places == nil {
		d.places = &mockPlaces{}
	}
	if d.files == nil {
		d.files = &mockFiles{}
	}
	if d.hub == nil {
		d.hub = notify.NewHub(time.Millisecond)
		t.Cleanup(d.hub.Close)
	}

	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	token := sessions.Login("anna@example.com")

	srv := handler.NewServer(d.auth, d.trips, d.weather, d.export, d.places, d.places, d.hub, d.files, sessions)
	return srv.Routes(), sessions, token
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
