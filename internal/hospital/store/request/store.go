// Package request stores blood requests. Lookups are scoped by hospital so
// one hospital can never read or fulfill another's requests.
package request

import (
	"context"

	"bloodlink/internal/hospital/models"
	"bloodlink/pkg/domain"
)

// Store persists blood requests.
type Store interface {
	// Create persists a new request.
	Create(ctx context.Context, request *models.BloodRequest) error

	// FindByHospital returns the request or sentinel.ErrNotFound. A request
	// belonging to a different hospital is also ErrNotFound.
	FindByHospital(ctx context.Context, hospitalID domain.HospitalID, id domain.RequestID) (*models.BloodRequest, error)

	// ListByHospital returns the hospital's requests, newest first.
	ListByHospital(ctx context.Context, hospitalID domain.HospitalID) ([]*models.BloodRequest, error)

	// Execute atomically loads the hospital-scoped request, runs validate,
	// and applies mutate if validation passes. The lock covers the whole
	// cycle so concurrent fulfillment attempts serialize.
	Execute(ctx context.Context, hospitalID domain.HospitalID, id domain.RequestID, validate func(*models.BloodRequest) error, mutate func(*models.BloodRequest)) (*models.BloodRequest, error)

	// CountActive returns the number of unfulfilled requests across all
	// hospitals.
	CountActive(ctx context.Context) (int, error)

	// ListRecent returns the most recent requests across all hospitals,
	// newest first, capped at limit.
	ListRecent(ctx context.Context, limit int) ([]*models.BloodRequest, error)
}
