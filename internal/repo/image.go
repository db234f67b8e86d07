package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// TripImageRepo defines the persistence operations for trip images.
// All single-row operations are scoped by tripID to enforce ownership.
// File deletion is the service layer's job — this repo only touches rows.
type TripImageRepo interface {
	// CreateBatch inserts images in order and returns the persisted records.
	CreateBatch(ctx context.Context, images []domain.TripImage) ([]domain.TripImage, error)

	// GetByID retrieves a single image by its UUID, scoped to the given tripID.
	// Returns domain.ErrNotFound if no image with that ID exists under that trip.
	GetByID(ctx context.Context, tripID, imageID uuid.UUID) (domain.TripImage, error)

	// ListByTripID returns all images for a trip ordered by order_index ascending.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.TripImage, error)

	// ListByTripIDs returns the images of several trips in one query, keyed
	// by trip ID, each slice ordered by order_index ascending. Trips with no
	// images have no entry.
	ListByTripIDs(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.TripImage, error)

	// MaxOrderIndex returns the highest order_index under a trip, or -1 when
	// the trip has no images.
	MaxOrderIndex(ctx context.Context, tripID uuid.UUID) (int, error)

	// Delete removes an image row by ID, scoped to the given tripID.
	// Returns domain.ErrNotFound if no image with that ID exists under that trip.
	Delete(ctx context.Context, tripID, imageID uuid.UUID) error

	// DeleteByTripID removes all image rows under a trip and returns how many
	// were deleted. Zero deletions is not an error.
	DeleteByTripID(ctx context.Context, tripID uuid.UUID) (int64, error)
}

// pgTripImageRepo is the Postgres implementation of TripImageRepo.
type pgTripImageRepo struct {
	db db
}

// NewTripImageRepo constructs a TripImageRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripImageRepo(db db) TripImageRepo {
	return &pgTripImageRepo{db: db}
}

const imageColumns = `id, trip_id, path, order_index, created_at`

func (r *pgTripImageRepo) CreateBatch(ctx context.Context, images []domain.TripImage) ([]domain.TripImage, error) {
	const q = `
		INSERT INTO trip_images (trip_id, path, order_index)
		VALUES (@trip_id, @path, @order_index)
		RETURNING ` + imageColumns

	out := make([]domain.TripImage, 0, len(images))
	for _, img := range images {
		args := pgx.NamedArgs{
			"trip_id":     img.TripID,
			"path":        img.Path,
			"order_index": img.OrderIndex,
		}
		row := r.db.QueryRow(ctx, q, args)
		created, err := scanImage(row)
		if err != nil {
			return nil, fmt.Errorf("repo.TripImageRepo.CreateBatch: %w", err)
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *pgTripImageRepo) GetByID(ctx context.Context, tripID, imageID uuid.UUID) (domain.TripImage, error) {
	const q = `
		SELECT ` + imageColumns + `
		FROM trip_images
		WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": imageID, "trip_id": tripID})
	result, err := scanImage(row)
	if err != nil {
		return domain.TripImage{}, fmt.Errorf("repo.TripImageRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripImageRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.TripImage, error) {
	const q = `
		SELECT ` + imageColumns + `
		FROM trip_images
		WHERE trip_id = @trip_id
		ORDER BY order_index ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripImageRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var images []domain.TripImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripImageRepo.ListByTripID: scan: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripImageRepo.ListByTripID: rows: %w", err)
	}

	return images, nil
}

func (r *pgTripImageRepo) ListByTripIDs(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.TripImage, error) {
	if len(tripIDs) == 0 {
		return map[uuid.UUID][]domain.TripImage{}, nil
	}

	const q = `
		SELECT ` + imageColumns + `
		FROM trip_images
		WHERE trip_id = ANY(@trip_ids)
		ORDER BY trip_id, order_index ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_ids": tripIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.TripImageRepo.ListByTripIDs: %w", err)
	}
	defer rows.Close()

	images := make(map[uuid.UUID][]domain.TripImage)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripImageRepo.ListByTripIDs: scan: %w", err)
		}
		images[img.TripID] = append(images[img.TripID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripImageRepo.ListByTripIDs: rows: %w", err)
	}

	return images, nil
}

func (r *pgTripImageRepo) MaxOrderIndex(ctx context.Context, tripID uuid.UUID) (int, error) {
	const q = `
		SELECT coalesce(max(order_index), -1)
		FROM trip_images
		WHERE trip_id = @trip_id`

	var max int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("repo.TripImageRepo.MaxOrderIndex: %w", err)
	}
	return max, nil
}

func (r *pgTripImageRepo) Delete(ctx context.Context, tripID, imageID uuid.UUID) error {
	const q = `DELETE FROM trip_images WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": imageID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.TripImageRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripImageRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripImageRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) (int64, error) {
	const q = `DELETE FROM trip_images WHERE trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("repo.TripImageRepo.DeleteByTripID: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanImage maps a single database row into a domain.TripImage.
func scanImage(s scanner) (domain.TripImage, error) {
	var (
		img    domain.TripImage
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &img.Path, &img.OrderIndex, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripImage{}, domain.ErrNotFound
		}
		return domain.TripImage{}, err
	}

	img.ID = uuid.UUID(id.Bytes)
	img.TripID = uuid.UUID(tripID.Bytes)

	return img, nil
}
