package store

import (
	"context"
	"fmt"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/models"
)

// AdminRepository hashes staged passwords before they reach the backend.
type AdminRepository struct {
	admins AdminStore
	hasher models.PasswordHasher
}

func NewAdminRepository(admins AdminStore, hasher models.PasswordHasher) *AdminRepository {
	return &AdminRepository{admins: admins, hasher: hasher}
}

// Save creates a. A password staged with SetPassword is hashed first; an
// already hashed password is stored as is.
func (r *AdminRepository) Save(ctx context.Context, a *models.Admin) error {
	a.Email = NormalizeEmail(a.Email)
	if err := a.PrepareSave(r.hasher); err != nil {
		return fmt.Errorf("prepare admin: %w", err)
	}
	return r.admins.CreateAdmin(ctx, a)
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.admins.GetAdminByEmail(ctx, NormalizeEmail(email))
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.admins.GetAdminByID(ctx, id)
}
