// Package service contains the business logic for the trip journal API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/repo"
)

// emailPattern is deliberately loose: one @, something on both sides, a dot
// in the domain. Real validation happens when the user fails to log in.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 6

// AuthService implements registration, login and profile management.
type AuthService struct {
	users repo.UserRepo
}

// NewAuthService constructs an AuthService backed by the provided UserRepo.
func NewAuthService(users repo.UserRepo) *AuthService {
	return &AuthService{users: users}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register validates the input, hashes the password and creates the account.
// Returns domain.ErrValidation for bad input and domain.ErrConflict when the
// email is already taken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if err := validateRegistration(in); err != nil {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return user, nil
}

// Login checks the credentials and returns the account. Unknown emails and
// wrong passwords are indistinguishable: both return domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	return user, nil
}

// Profile returns the account for email.
func (s *AuthService) Profile(ctx context.Context, email string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Profile: %w", err)
	}
	return user, nil
}

// UpdateProfile sets the optional first and last name and returns the
// updated account.
func (s *AuthService) UpdateProfile(ctx context.Context, email, firstName, lastName string) (domain.User, error) {
	err := s.users.UpdateProfile(ctx, email, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", err)
	}
	return s.Profile(ctx, email)
}

// ChangePassword verifies the current password before storing a new hash.
// Returns domain.ErrUnauthorized when the current password is wrong and
// domain.ErrValidation when the new one is too weak or mistyped.
func (s *AuthService) ChangePassword(ctx context.Context, email, current, next, confirm string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return fmt.Errorf("%w: current password is wrong", domain.ErrUnauthorized)
	}
	if err := validatePassword(next, confirm); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, email, string(hash)); err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	return nil
}

// SetProfileImage records the stored file name of the user's avatar.
func (s *AuthService) SetProfileImage(ctx context.Context, email, path string) error {
	if err := s.users.UpdateProfileImage(ctx, email, path); err != nil {
		return fmt.Errorf("service.AuthService.SetProfileImage: %w", err)
	}
	return nil
}

func validateRegistration(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !emailPattern.MatchString(strings.TrimSpace(in.Email)) {
		return fmt.Errorf("%w: email address is not valid", domain.ErrValidation)
	}
	return validatePassword(in.Password, in.ConfirmPassword)
}

func validatePassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}
	return nil
}
