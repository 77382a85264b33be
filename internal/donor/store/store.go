// Package store defines the donor directory's persistence contract and its
// in-memory and Postgres implementations.
package store

import (
	"context"

	"bloodlink/internal/donor/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/geo"
)

// Filter narrows a directory listing. Zero value lists everything ordered by
// registration time descending.
type Filter struct {
	// BloodTypes restricts to donors whose type is in the set. Empty means no
	// restriction.
	BloodTypes []domain.BloodType
	// AvailableOnly drops donors with IsAvailable=false.
	AvailableOnly bool
	// Origin plus MaxDistanceMeters enables a proximity query: only donors
	// with coordinates within the radius, ordered by distance ascending.
	Origin            *geo.Point
	MaxDistanceMeters float64
}

// Store is the donor directory persistence contract.
//
// Concurrency: Execute serializes mutations per record. The in-memory store
// holds a mutex for the validate+mutate pair; the Postgres store holds a row
// lock (SELECT ... FOR UPDATE). Two concurrent toggles on one donor therefore
// observe each other.
type Store interface {
	// Create inserts a new profile. Returns sentinel.ErrConflict when the
	// owning account already has one.
	Create(ctx context.Context, donor *models.Donor) error

	// FindByAccount returns the profile owned by the account, or
	// sentinel.ErrNotFound.
	FindByAccount(ctx context.Context, accountID domain.AccountID) (*models.Donor, error)

	// List returns donors matching the filter. Ordering: distance ascending
	// when filter.Origin is set (donors without coordinates excluded),
	// otherwise CreatedAt descending with donor ID ascending as tie-break.
	List(ctx context.Context, filter Filter) ([]*models.Donor, error)

	// Execute atomically loads the account's profile, runs validate, and on
	// nil applies mutate, persisting the result. The lock covers both
	// callbacks. Returns the mutated donor.
	Execute(ctx context.Context, accountID domain.AccountID,
		validate func(*models.Donor) error,
		mutate func(*models.Donor)) (*models.Donor, error)

	// CountByAvailability returns total and available donor counts.
	CountByAvailability(ctx context.Context) (total, available int, err error)

	// CountAvailableByBloodType returns available-donor counts per blood type.
	// Types with no available donors are omitted.
	CountAvailableByBloodType(ctx context.Context) (map[domain.BloodType]int, error)
}
