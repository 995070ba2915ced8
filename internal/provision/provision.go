// Package provision creates and maintains the single admin credential.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/eldtechnologies/folio/internal/crypto"
	"github.com/eldtechnologies/folio/internal/store"
)

// ErrAdminExists is returned when an admin is already provisioned.
var ErrAdminExists = errors.New("an admin account already exists")

// EnsureAdmin creates the admin if none exists yet. It reports whether an
// account was created.
func EnsureAdmin(ctx context.Context, ds store.DataStore, id, password string) (bool, error) {
	err := CreateAdmin(ctx, ds, id, password)
	if errors.Is(err, ErrAdminExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateAdmin provisions the admin, refusing if one already exists.
func CreateAdmin(ctx context.Context, ds store.DataStore, id, password string) error {
	if id == "" {
		return errors.New("admin id must not be empty")
	}

	count, err := ds.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return ErrAdminExists
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := ds.CreateAdmin(ctx, id, hash); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// SetPassword replaces the admin's password.
func SetPassword(ctx context.Context, ds store.DataStore, id, password string) error {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	return ds.UpdateAdminPassword(ctx, id, hash)
}
