// Package store defines the persistence collaborator used by the handlers.
// Backends live in the postgres, dynamodb and memory subpackages.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type EmployeeStore interface {
	// CreateEmployee assigns the ID and timestamps of e. A zero JoiningDate
	// defaults to the creation time.
	CreateEmployee(ctx context.Context, e *models.Employee) error
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	// ListEmployees returns one page ordered by creation time, newest first,
	// and the total number of employees.
	ListEmployees(ctx context.Context, page models.PageRequest) ([]models.Employee, int, error)
	UpdateEmployee(ctx context.Context, id string, u models.EmployeeUpdate) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type AdminStore interface {
	// CreateAdmin persists a. PasswordHash must already be set.
	CreateAdmin(ctx context.Context, a *models.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*models.Admin, error)
}

// Store is a complete backend.
type Store interface {
	EmployeeStore
	AdminStore
	Ping(ctx context.Context) error
	Close()
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
