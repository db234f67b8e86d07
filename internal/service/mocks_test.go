package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/geocode"
	"github.com/mkowalczyk/triplog/internal/repo"
	"github.com/mkowalczyk/triplog/internal/service"
	"github.com/mkowalczyk/triplog/internal/weather"
)

// Hand-written test doubles: each method is a function field, set only the
// ones your test needs.

type mockTripRepo struct {
	create            func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID           func(ctx context.Context, userEmail string, id uuid.UUID) (domain.Trip, error)
	listByUser        func(ctx context.Context, userEmail string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	searchByUser      func(ctx context.Context, userEmail, query string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update            func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	setWeatherSummary func(ctx context.Context, userEmail string, id uuid.UUID, summary string) error
	delete            func(ctx context.Context, userEmail string, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, userEmail string, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, userEmail, id)
}
func (m *mockTripRepo) ListByUser(ctx context.Context, userEmail string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByUser(ctx, userEmail, p)
}
func (m *mockTripRepo) SearchByUser(ctx context.Context, userEmail, query string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.searchByUser(ctx, userEmail, query, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) SetWeatherSummary(ctx context.Context, userEmail string, id uuid.UUID, summary string) error {
	return m.setWeatherSummary(ctx, userEmail, id, summary)
}
func (m *mockTripRepo) Delete(ctx context.Context, userEmail string, id uuid.UUID) error {
	return m.delete(ctx, userEmail, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockUserRepo struct {
	create             func(ctx context.Context, user domain.User) (domain.User, error)
	getByEmail         func(ctx context.Context, email string) (domain.User, error)
	updateProfile      func(ctx context.Context, email, firstName, lastName string) error
	updatePassword     func(ctx context.Context, email, passwordHash string) error
	updateProfileImage func(ctx context.Context, email, path string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	return m.create(ctx, user)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, email, firstName, lastName string) error {
	return m.updateProfile(ctx, email, firstName, lastName)
}
func (m *mockUserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return m.updatePassword(ctx, email, passwordHash)
}
func (m *mockUserRepo) UpdateProfileImage(ctx context.Context, email, path string) error {
	return m.updateProfileImage(ctx, email, path)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

type mockImageRepo struct {
	createBatch    func(ctx context.Context, images []domain.TripImage) ([]domain.TripImage, error)
	getByID        func(ctx context.Context, tripID, imageID uuid.UUID) (domain.TripImage, error)
	listByTripID   func(ctx context.Context, tripID uuid.UUID) ([]domain.TripImage, error)
	listByTripIDs  func(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.TripImage, error)
	maxOrderIndex  func(ctx context.Context, tripID uuid.UUID) (int, error)
	delete         func(ctx context.Context, tripID, imageID uuid.UUID) error
	deleteByTripID func(ctx context.Context, tripID uuid.UUID) (int64, error)
}

func (m *mockImageRepo) CreateBatch(ctx context.Context, images []domain.TripImage) ([]domain.TripImage, error) {
	return m.createBatch(ctx, images)
}
func (m *mockImageRepo) GetByID(ctx context.Context, tripID, imageID uuid.UUID) (domain.TripImage, error) {
	return m.getByID(ctx, tripID, imageID)
}
func (m *mockImageRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.TripImage, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockImageRepo) ListByTripIDs(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.TripImage, error) {
	return m.listByTripIDs(ctx, tripIDs)
}
func (m *mockImageRepo) MaxOrderIndex(ctx context.Context, tripID uuid.UUID) (int, error) {
	return m.maxOrderIndex(ctx, tripID)
}
func (m *mockImageRepo) Delete(ctx context.Context, tripID, imageID uuid.UUID) error {
	return m.delete(ctx, tripID, imageID)
}
func (m *mockImageRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) (int64, error) {
	return m.deleteByTripID(ctx, tripID)
}

var _ repo.TripImageRepo = (*mockImageRepo)(nil)

type mockFileStore struct {
	save   func(data []byte) (string, error)
	read   func(name string) ([]byte, error)
	remove func(name string) error
}

func (m *mockFileStore) Save(data []byte) (string, error) { return m.save(data) }
func (m *mockFileStore) Read(name string) ([]byte, error) { return m.read(name) }
func (m *mockFileStore) Remove(name string) error         { return m.remove(name) }

var _ service.FileStore = (*mockFileStore)(nil)

type mockCurrentWeather struct {
	current func(ctx context.Context, lat, lon float64) (weather.Current, error)
}

func (m *mockCurrentWeather) CurrentWeather(ctx context.Context, lat, lon float64) (weather.Current, error) {
	return m.current(ctx, lat, lon)
}

type mockForecasts struct {
	forecast func(ctx context.Context, lat, lon float64) ([]domain.ForecastSample, error)
}

func (m *mockForecasts) Forecast(ctx context.Context, lat, lon float64) ([]domain.ForecastSample, error) {
	return m.forecast(ctx, lat, lon)
}

type mockGeocoder struct {
	resolve func(ctx context.Context, query string) (geocode.Place, error)
}

func (m *mockGeocoder) Resolve(ctx context.Context, query string) (geocode.Place, error) {
	return m.resolve(ctx, query)
}

var _ service.Geocoder = (*mockGeocoder)(nil)

// recordingPublisher collects published topics.
type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(topic string) { p.topics = append(p.topics, topic) }
