// Package hospital stores hospital profiles. Implementations must return
// sentinel.ErrConflict when an account already owns a profile and
// sentinel.ErrNotFound for missing lookups.
package hospital

import (
	"context"

	"bloodlink/internal/hospital/models"
	"bloodlink/pkg/domain"
)

// Store persists hospital profiles.
type Store interface {
	// Create persists a new hospital. Returns sentinel.ErrConflict when the
	// account already has a profile.
	Create(ctx context.Context, hospital *models.Hospital) error

	// FindByAccount returns the profile owned by the account or
	// sentinel.ErrNotFound.
	FindByAccount(ctx context.Context, accountID domain.AccountID) (*models.Hospital, error)

	// FindByID returns the profile or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id domain.HospitalID) (*models.Hospital, error)
}
