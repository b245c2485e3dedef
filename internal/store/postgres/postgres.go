// Package postgres stores employees and admins in PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/models"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store"
)

//go:embed schema.sql
var schema string

const (
	codeUniqueViolation    = "23505"
	codeInvalidTextForType = "22P02"
)

const employeeColumns = `id::text, full_name, email, dob, joining_date, address, created_at, updated_at`

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var e models.Employee
	if err := row.Scan(&e.ID, &e.FullName, &e.Email, &e.DOB, &e.JoiningDate, &e.Address, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateEmployee(ctx context.Context, e *models.Employee) error {
	e.Email = store.NormalizeEmail(e.Email)

	var joining *time.Time
	if !e.JoiningDate.IsZero() {
		joining = &e.JoiningDate
	}

	created, err := scanEmployee(s.pool.QueryRow(ctx, `
		INSERT INTO employees (full_name, email, dob, joining_date, address)
		VALUES ($1, $2, $3, COALESCE($4, NOW()), $5)
		RETURNING `+employeeColumns,
		e.FullName, e.Email, e.DOB, joining, e.Address))
	if err != nil {
		return translate(err)
	}
	*e = *created
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	e, err := scanEmployee(s.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context, page models.PageRequest) ([]models.Employee, int, error) {
	page = page.Normalize()

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	start, end := page.Bounds(total)
	out := make([]models.Employee, 0, end-start)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	return out, total, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, id string, u models.EmployeeUpdate) (*models.Employee, error) {
	if u.IsEmpty() {
		return s.GetEmployee(ctx, id)
	}

	updates := []string{}
	args := []interface{}{}
	argIdx := 1
	set := func(col string, v interface{}) {
		updates = append(updates, fmt.Sprintf("%s=$%d", col, argIdx))
		args = append(args, v)
		argIdx++
	}

	if u.FullName != nil {
		set("full_name", *u.FullName)
	}
	if u.Email != nil {
		set("email", store.NormalizeEmail(*u.Email))
	}
	if u.DOB != nil {
		set("dob", *u.DOB)
	}
	if u.JoiningDate != nil {
		set("joining_date", *u.JoiningDate)
	}
	if u.Address != nil {
		set("address", *u.Address)
	}

	query := "UPDATE employees SET " + strings.Join(updates, ", ") +
		fmt.Sprintf(", updated_at=NOW() WHERE id=$%d RETURNING ", argIdx) + employeeColumns
	args = append(args, id)

	e, err := scanEmployee(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) error {
	a.Email = store.NormalizeEmail(a.Email)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO admins (full_name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at, updated_at`,
		a.FullName, a.Email, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, full_name, email, password_hash, created_at, updated_at
		FROM admins WHERE email=$1`, store.NormalizeEmail(email),
	).Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	var a models.Admin
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, full_name, email, password_hash, created_at, updated_at
		FROM admins WHERE id=$1`, id,
	).Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

// translate maps driver errors onto the store sentinels. A malformed UUID is
// reported as not found: no record can have that id.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return store.ErrDuplicateEmail
		case codeInvalidTextForType:
			return store.ErrNotFound
		}
	}
	return err
}
