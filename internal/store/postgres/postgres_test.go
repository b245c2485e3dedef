package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/models"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), store.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "employees_email_key"}, store.ErrDuplicateEmail},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.in), tt.want)
		})
	}

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS employees")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS admins")
	assert.Contains(t, schema, "UNIQUE (email)")
}

// The tests below run against a real database when TEST_DATABASE_URL is set.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE employees, admins`)
	require.NoError(t, err)
	return s
}

func TestEmployeeLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &models.Employee{
		FullName: "Jane Doe",
		Email:    "Jane.Doe@Example.com",
		DOB:      time.Date(1992, 2, 29, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateEmployee(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "jane.doe@example.com", e.Email)
	assert.False(t, e.JoiningDate.IsZero())

	dup := &models.Employee{FullName: "Jane Two", Email: "jane.doe@example.com", DOB: e.DOB}
	assert.ErrorIs(t, s.CreateEmployee(ctx, dup), store.ErrDuplicateEmail)

	addr := "221B Baker Street"
	got, err := s.UpdateEmployee(ctx, e.ID, models.EmployeeUpdate{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, addr, got.Address)
	assert.Equal(t, e.FullName, got.FullName)

	_, err = s.UpdateEmployee(ctx, "not-a-uuid", models.EmployeeUpdate{Address: &addr})
	assert.ErrorIs(t, err, store.ErrNotFound)

	page, total, err := s.ListEmployees(ctx, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)

	require.NoError(t, s.DeleteEmployee(ctx, e.ID))
	assert.ErrorIs(t, s.DeleteEmployee(ctx, e.ID), store.ErrNotFound)
}

func TestAdminLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &models.Admin{FullName: "Site Admin", Email: "admin@example.com", PasswordHash: "digest"}
	require.NoError(t, s.CreateAdmin(ctx, a))
	assert.NotEmpty(t, a.ID)

	got, err := s.GetAdminByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "digest", got.PasswordHash)

	assert.ErrorIs(t, s.CreateAdmin(ctx, &models.Admin{Email: "admin@example.com", PasswordHash: "x"}), store.ErrDuplicateEmail)

	byID, err := s.GetAdminByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", byID.Email)

	_, err = s.GetAdminByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
