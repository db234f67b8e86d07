// Package repo contains all database access logic for the trip journal API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// All reads and writes are scoped by the owner's email — a trip that exists
// under another user is indistinguishable from one that does not exist.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID, scoped to userEmail.
	// Returns domain.ErrNotFound if no trip with that ID exists for that user.
	GetByID(ctx context.Context, userEmail string, id uuid.UUID) (domain.Trip, error)

	// ListByUser returns one page of the user's trips ordered by start_date
	// descending, plus the total row count for pagination.
	ListByUser(ctx context.Context, userEmail string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// SearchByUser returns one page of the user's trips whose title or
	// description contains query as a case-insensitive substring, ordered by
	// start_date descending, plus the total match count.
	SearchByUser(ctx context.Context, userEmail, query string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable fields of an existing trip and returns
	// the updated record. Returns domain.ErrNotFound if no trip with that ID
	// exists for that user.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// SetWeatherSummary stores the cached weather one-liner for a trip.
	SetWeatherSummary(ctx context.Context, userEmail string, id uuid.UUID, summary string) error

	// Delete removes a trip by ID, scoped to userEmail.
	// Image rows go with it via the ON DELETE CASCADE foreign key.
	Delete(ctx context.Context, userEmail string, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, user_email, title, description, start_date, end_date,
		latitude, longitude, location_name, weather_summary, created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (user_email, title, description, start_date, end_date,
		                   latitude, longitude, location_name, weather_summary)
		VALUES (@user_email, @title, @description, @start_date, @end_date,
		        @latitude, @longitude, @location_name, @weather_summary)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"user_email":      trip.UserEmail,
		"title":           trip.Title,
		"description":     trip.Description,
		"start_date":      trip.StartDate,
		"end_date":        trip.EndDate, // nil becomes NULL
		"latitude":        trip.Latitude,
		"longitude":       trip.Longitude,
		"location_name":   nullIfEmpty(trip.LocationName),
		"weather_summary": nullIfEmpty(trip.WeatherSummary),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, userEmail string, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = @id AND user_email = @user_email`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_email": userEmail})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListByUser(ctx context.Context, userEmail string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const q = `
		SELECT ` + tripColumns + `, count(*) OVER () AS total
		FROM trips
		WHERE user_email = @user_email
		ORDER BY start_date DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"user_email": userEmail,
		"limit":      p.Limit,
		"offset":     p.Offset(),
	}
	trips, total, err := r.queryTrips(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByUser: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) SearchByUser(ctx context.Context, userEmail, query string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	// ILIKE gives the case-insensitive substring contract; the pattern
	// wildcards are added here so the caller passes plain text.
	const q = `
		SELECT ` + tripColumns + `, count(*) OVER () AS total
		FROM trips
		WHERE user_email = @user_email
		  AND (title ILIKE @pattern OR description ILIKE @pattern)
		ORDER BY start_date DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"user_email": userEmail,
		"pattern":    "%" + escapeLike(query) + "%",
		"limit":      p.Limit,
		"offset":     p.Offset(),
	}
	trips, total, err := r.queryTrips(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.SearchByUser: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET title           = @title,
		    description     = @description,
		    start_date      = @start_date,
		    end_date        = @end_date,
		    latitude        = @latitude,
		    longitude       = @longitude,
		    location_name   = @location_name,
		    weather_summary = @weather_summary,
		    updated_at      = now()
		WHERE id = @id AND user_email = @user_email
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":              trip.ID,
		"user_email":      trip.UserEmail,
		"title":           trip.Title,
		"description":     trip.Description,
		"start_date":      trip.StartDate,
		"end_date":        trip.EndDate,
		"latitude":        trip.Latitude,
		"longitude":       trip.Longitude,
		"location_name":   nullIfEmpty(trip.LocationName),
		"weather_summary": nullIfEmpty(trip.WeatherSummary),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) SetWeatherSummary(ctx context.Context, userEmail string, id uuid.UUID, summary string) error {
	const q = `
		UPDATE trips
		SET weather_summary = @summary, updated_at = now()
		WHERE id = @id AND user_email = @user_email`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id": id, "user_email": userEmail, "summary": nullIfEmpty(summary),
	})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.SetWeatherSummary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.SetWeatherSummary: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripRepo) Delete(ctx context.Context, userEmail string, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND user_email = @user_email`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_email": userEmail})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// queryTrips runs a paged trip query whose final column is the window total.
func (r *pgTripRepo) queryTrips(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, int64, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		trips []domain.Trip
		total int64
	)
	for rows.Next() {
		t, n, err := scanTripWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
		total = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}

	return trips, total, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID and nullable column conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	return scanTripInto(s)
}

func scanTripWithTotal(s scanner) (domain.Trip, int64, error) {
	var total int64
	t, err := scanTripInto(s, &total)
	return t, total, err
}

func scanTripInto(s scanner, extra ...any) (domain.Trip, error) {
	var (
		t              domain.Trip
		id             pgtype.UUID
		endDate        pgtype.Text
		locationName   pgtype.Text
		weatherSummary pgtype.Text
	)

	dest := []any{&id, &t.UserEmail, &t.Title, &t.Description, &t.StartDate,
		&endDate, &t.Latitude, &t.Longitude, &locationName, &weatherSummary,
		&t.CreatedAt, &t.UpdatedAt}
	dest = append(dest, extra...)

	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	if endDate.Valid {
		ed := endDate.String
		t.EndDate = &ed
	}
	t.LocationName = locationName.String
	t.WeatherSummary = weatherSummary.String

	return t, nil
}

// nullIfEmpty maps "" to NULL for optional text columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
