package repo_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/repo"
	"github.com/mkowalczyk/triplog/testutil"
)

// newTestTx opens a transaction against the test database that is rolled
// back when the test finishes, giving free per-test isolation. All repos in
// a test share the same transaction so foreign keys line up.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// userFixture returns a domain.User with sensible defaults for use in tests.
func userFixture() domain.User {
	return domain.User{
		Email:        "anna@example.com",
		Name:         "Anna",
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefixturefixturefix",
	}
}

// tripFixture returns a domain.Trip owned by the fixture user.
// Callers can override individual fields after calling this function.
func tripFixture() domain.Trip {
	end := "2024-06-20"
	return domain.Trip{
		UserEmail:   "anna@example.com",
		Title:       "Paris weekend",
		Description: "Museums and cafés",
		StartDate:   "2024-06-15",
		EndDate:     &end,
	}
}

// mustCreateUser inserts the fixture user so trip rows have a parent.
func mustCreateUser(t *testing.T, tx pgx.Tx) domain.User {
	t.Helper()
	u, err := repo.NewUserRepo(tx).Create(context.Background(), userFixture())
	require.NoError(t, err)
	return u
}
