// Package store persists login accounts. Implementations must return
// sentinel.ErrConflict for duplicate emails and sentinel.ErrNotFound for
// missing lookups.
package store

import (
	"context"

	"bloodlink/internal/account/models"
	"bloodlink/pkg/domain"
)

// Store persists accounts.
type Store interface {
	// Create persists a new account. Returns sentinel.ErrConflict when the
	// email is already registered.
	Create(ctx context.Context, account *models.Account) error

	// FindByEmail returns the account or sentinel.ErrNotFound. Email matching
	// is case-insensitive; accounts store emails lowercase.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// FindByID returns the account or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id domain.AccountID) (*models.Account, error)
}
