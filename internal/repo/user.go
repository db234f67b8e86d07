package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint failure.
const uniqueViolation = "23505"

// UserRepo defines the persistence operations for Users.
// Users are keyed by email and never deleted by the application, so the
// interface has targeted updates instead of a full-row overwrite.
type UserRepo interface {
	// Create inserts a new user. Returns domain.ErrConflict if the email is
	// already registered.
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// GetByEmail retrieves a user by email.
	// Returns domain.ErrNotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateProfile sets the optional first/last name fields.
	UpdateProfile(ctx context.Context, email, firstName, lastName string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, email, passwordHash string) error

	// UpdateProfileImage replaces the profile image path. An empty path
	// clears it.
	UpdateProfileImage(ctx context.Context, email, path string) error
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `email, name, password_hash, first_name, last_name,
		profile_image_path, created_at, updated_at`

func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (email, name, password_hash, first_name, last_name, profile_image_path)
		VALUES (@email, @name, @password_hash, @first_name, @last_name, @profile_image_path)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"email":              user.Email,
		"name":               user.Name,
		"password_hash":      user.PasswordHash,
		"first_name":         nullIfEmpty(user.FirstName),
		"last_name":          nullIfEmpty(user.LastName),
		"profile_image_path": nullIfEmpty(user.ProfileImagePath),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", domain.ErrConflict)
		}
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = @email`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email})
	result, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) UpdateProfile(ctx context.Context, email, firstName, lastName string) error {
	const q = `
		UPDATE users
		SET first_name = @first_name, last_name = @last_name, updated_at = now()
		WHERE email = @email`

	return r.exec(ctx, "UpdateProfile", q, pgx.NamedArgs{
		"email":      email,
		"first_name": nullIfEmpty(firstName),
		"last_name":  nullIfEmpty(lastName),
	})
}

func (r *pgUserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = @password_hash, updated_at = now()
		WHERE email = @email`

	return r.exec(ctx, "UpdatePassword", q, pgx.NamedArgs{
		"email":         email,
		"password_hash": passwordHash,
	})
}

func (r *pgUserRepo) UpdateProfileImage(ctx context.Context, email, path string) error {
	const q = `
		UPDATE users
		SET profile_image_path = @path, updated_at = now()
		WHERE email = @email`

	return r.exec(ctx, "UpdateProfileImage", q, pgx.NamedArgs{
		"email": email,
		"path":  nullIfEmpty(path),
	})
}

// exec runs a write that must touch exactly one row, mapping zero rows to
// domain.ErrNotFound.
func (r *pgUserRepo) exec(ctx context.Context, op, q string, args pgx.NamedArgs) error {
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.UserRepo.%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.UserRepo.%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

// scanUser maps a single database row into a domain.User, coalescing the
// nullable columns to empty strings.
func scanUser(s scanner) (domain.User, error) {
	var (
		u         domain.User
		firstName pgtype.Text
		lastName  pgtype.Text
		imagePath pgtype.Text
	)

	err := s.Scan(&u.Email, &u.Name, &u.PasswordHash, &firstName, &lastName,
		&imagePath, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.ProfileImagePath = imagePath.String

	return u, nil
}
