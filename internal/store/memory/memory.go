// Package memory is an in-process store backend for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/models"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store"
)

type employeeRow struct {
	models.Employee
	seq uint64
}

type Store struct {
	mu        sync.RWMutex
	employees map[string]*employeeRow
	emails    map[string]string // email -> employee id
	admins    map[string]models.Admin
	seq       uint64
	now       func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		employees: make(map[string]*employeeRow),
		emails:    make(map[string]string),
		admins:    make(map[string]models.Admin),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the creation clock. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) CreateEmployee(_ context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Email = store.NormalizeEmail(e.Email)
	if _, taken := s.emails[e.Email]; taken {
		return store.ErrDuplicateEmail
	}

	now := s.now()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.JoiningDate.IsZero() {
		e.JoiningDate = now
	}

	s.seq++
	s.employees[e.ID] = &employeeRow{Employee: *e, seq: s.seq}
	s.emails[e.Email] = e.ID
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.employees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	e := row.Employee
	return &e, nil
}

func (s *Store) ListEmployees(_ context.Context, page models.PageRequest) ([]models.Employee, int, error) {
	// rows are updated in place, so copy them before releasing the lock
	s.mu.RLock()
	rows := make([]employeeRow, 0, len(s.employees))
	for _, row := range s.employees {
		rows = append(rows, *row)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	start, end := page.Normalize().Bounds(len(rows))
	out := make([]models.Employee, 0, end-start)
	for _, row := range rows[start:end] {
		out = append(out, row.Employee)
	}
	return out, len(rows), nil
}

func (s *Store) UpdateEmployee(_ context.Context, id string, u models.EmployeeUpdate) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.employees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u.Email != nil {
		email := store.NormalizeEmail(*u.Email)
		u.Email = &email
		if owner, taken := s.emails[email]; taken && owner != id {
			return nil, store.ErrDuplicateEmail
		}
	}

	oldEmail := row.Email
	u.Apply(&row.Employee)
	row.UpdatedAt = s.now()
	if row.Email != oldEmail {
		delete(s.emails, oldEmail)
		s.emails[row.Email] = id
	}
	e := row.Employee
	return &e, nil
}

func (s *Store) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.employees[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.emails, row.Email)
	delete(s.employees, id)
	return nil
}

func (s *Store) CreateAdmin(_ context.Context, a *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.Email = store.NormalizeEmail(a.Email)
	if _, taken := s.admins[a.Email]; taken {
		return store.ErrDuplicateEmail
	}
	now := s.now()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.admins[a.Email] = *a
	return nil
}

func (s *Store) GetAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[store.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) GetAdminByID(_ context.Context, id string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.admins {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}
