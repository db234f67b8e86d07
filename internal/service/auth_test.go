package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/service"
)

func validRegistration() service.RegisterInput {
	return service.RegisterInput{
		Name:            "Anna Kowalska",
		Email:           "anna@example.com",
		Password:        "tajnehaslo",
		ConfirmPassword: "tajnehaslo",
	}
}

// echoUserRepo echoes created users back, for tests that only exercise
// validation and hashing.
func echoUserRepo() *mockUserRepo {
	return &mockUserRepo{
		create: func(_ context.Context, u domain.User) (domain.User, error) { return u, nil },
	}
}

func TestAuthService_Register_Valid(t *testing.T) {
	svc := service.NewAuthService(echoUserRepo())

	got, err := svc.Register(context.Background(), validRegistration())

	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", got.Email)
	assert.Equal(t, "Anna Kowalska", got.Name)
	// The stored hash must verify against the original password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("tajnehaslo")))
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	svc := service.NewAuthService(echoUserRepo())

	in := validRegistration()
	in.Email = "  Anna@Example.COM "

	got, err := svc.Register(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", got.Email)
}

func TestAuthService_Register_Invalid(t *testing.T) {
	svc := service.NewAuthService(echoUserRepo())

	tests := []struct {
		name   string
		mutate func(*service.RegisterInput)
	}{
		{"missing name", func(in *service.RegisterInput) { in.Name = "   " }},
		{"bad email", func(in *service.RegisterInput) { in.Email = "not-an-email" }},
		{"email without domain dot", func(in *service.RegisterInput) { in.Email = "anna@localhost" }},
		{"short password", func(in *service.RegisterInput) { in.Password = "abc"; in.ConfirmPassword = "abc" }},
		{"password mismatch", func(in *service.RegisterInput) { in.ConfirmPassword = "different" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	r := &mockUserRepo{
		create: func(_ context.Context, _ domain.User) (domain.User, error) {
			return domain.User{}, domain.ErrConflict
		},
	}
	svc := service.NewAuthService(r)

	_, err := svc.Register(context.Background(), validRegistration())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func userWithPassword(t *testing.T, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return domain.User{
		Email:        "anna@example.com",
		Name:         "Anna Kowalska",
		PasswordHash: string(hash),
	}
}

func TestAuthService_Login_Valid(t *testing.T) {
	user := userWithPassword(t, "tajnehaslo")
	r := &mockUserRepo{
		getByEmail: func(_ context.Context, email string) (domain.User, error) {
			assert.Equal(t, "anna@example.com", email)
			return user, nil
		},
	}
	svc := service.NewAuthService(r)

	got, err := svc.Login(context.Background(), "Anna@example.com ", "tajnehaslo")

	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	user := userWithPassword(t, "tajnehaslo")
	r := &mockUserRepo{
		getByEmail: func(_ context.Context, _ string) (domain.User, error) { return user, nil },
	}
	svc := service.NewAuthService(r)

	_, err := svc.Login(context.Background(), "anna@example.com", "zlehaslo")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	r := &mockUserRepo{
		getByEmail: func(_ context.Context, _ string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
	}
	svc := service.NewAuthService(r)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")

	// Unknown account and wrong password must look the same to the caller.
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	var gotFirst, gotLast string
	r := &mockUserRepo{
		updateProfile: func(_ context.Context, _, firstName, lastName string) error {
			gotFirst, gotLast = firstName, lastName
			return nil
		},
		getByEmail: func(_ context.Context, _ string) (domain.User, error) {
			return domain.User{Email: "anna@example.com", FirstName: "Anna", LastName: "Kowalska"}, nil
		},
	}
	svc := service.NewAuthService(r)

	got, err := svc.UpdateProfile(context.Background(), "anna@example.com", " Anna ", " Kowalska ")

	require.NoError(t, err)
	assert.Equal(t, "Anna", gotFirst)
	assert.Equal(t, "Kowalska", gotLast)
	assert.Equal(t, "Anna", got.FirstName)
}

func TestAuthService_ChangePassword_Valid(t *testing.T) {
	user := userWithPassword(t, "starehaslo")
	var storedHash string
	r := &mockUserRepo{
		getByEmail: func(_ context.Context, _ string) (domain.User, error) { return user, nil },
		updatePassword: func(_ context.Context, _, hash string) error {
			storedHash = hash
			return nil
		},
	}
	svc := service.NewAuthService(r)

	err := svc.ChangePassword(context.Background(), "anna@example.com", "starehaslo", "nowehaslo", "nowehaslo")

	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("nowehaslo")))
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	user := userWithPassword(t, "starehaslo")
	r := &mockUserRepo{
		getByEmail: func(_ context.Context, _ string) (domain.User, error) { return user, nil },
	}
	svc := service.NewAuthService(r)

	err := svc.ChangePassword(context.Background(), "anna@example.com", "zlehaslo", "nowehaslo", "nowehaslo")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ChangePassword_WeakNew(t *testing.T) {
	user := userWithPassword(t, "starehaslo")
	r := &mockUserRepo{
		getByEmail: func(_ context.Context, _ string) (domain.User, error) { return user, nil },
	}
	svc := service.NewAuthService(r)

	err := svc.ChangePassword(context.Background(), "anna@example.com", "starehaslo", "abc", "abc")

	assert.ErrorIs(t, err, domain.ErrValidation)
}
