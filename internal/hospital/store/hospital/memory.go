package hospital

import (
	"context"
	"sync"

	"bloodlink/internal/hospital/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded hospital store for tests and for running
// without Postgres.
type InMemory struct {
	mu        sync.RWMutex
	byAccount map[domain.AccountID]*models.Hospital
	byID      map[domain.HospitalID]*models.Hospital
}

func NewInMemory() *InMemory {
	return &InMemory{
		byAccount: make(map[domain.AccountID]*models.Hospital),
		byID:      make(map[domain.HospitalID]*models.Hospital),
	}
}

func (s *InMemory) Create(_ context.Context, hospital *models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAccount[hospital.AccountID]; exists {
		return sentinel.ErrConflict
	}
	stored := hospital.Clone()
	s.byAccount[hospital.AccountID] = stored
	s.byID[hospital.ID] = stored
	return nil
}

func (s *InMemory) FindByAccount(_ context.Context, accountID domain.AccountID) (*models.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hospital, ok := s.byAccount[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return hospital.Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.HospitalID) (*models.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hospital, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return hospital.Clone(), nil
}
