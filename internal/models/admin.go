package models

import (
	"errors"
	"time"
)

// PasswordHasher turns a plaintext secret into its stored digest.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

var ErrPasswordNotSet = errors.New("admin password not set")

// Admin is an identity allowed to manage employee records.
type Admin struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	pendingPassword *string
}

// SetPassword stages a new plaintext password. It is hashed by PrepareSave.
func (a *Admin) SetPassword(plaintext string) {
	a.pendingPassword = &plaintext
}

// PasswordModified reports whether a staged password is waiting to be hashed.
func (a *Admin) PasswordModified() bool {
	return a.pendingPassword != nil
}

// PrepareSave hashes a staged password into PasswordHash. An unchanged
// password is left alone so an existing digest is never hashed again.
func (a *Admin) PrepareSave(h PasswordHasher) error {
	if a.pendingPassword == nil {
		if a.PasswordHash == "" {
			return ErrPasswordNotSet
		}
		return nil
	}
	digest, err := h.Hash(*a.pendingPassword)
	if err != nil {
		return err
	}
	a.PasswordHash = digest
	a.pendingPassword = nil
	return nil
}
