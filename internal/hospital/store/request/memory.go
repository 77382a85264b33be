package request

import (
	"context"
	"sort"
	"sync"

	"bloodlink/internal/hospital/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded request store for tests and for running
// without Postgres.
type InMemory struct {
	mu   sync.RWMutex
	byID map[domain.RequestID]*models.BloodRequest
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[domain.RequestID]*models.BloodRequest)}
}

func (s *InMemory) Create(_ context.Context, request *models.BloodRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[request.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[request.ID] = request.Clone()
	return nil
}

func (s *InMemory) FindByHospital(_ context.Context, hospitalID domain.HospitalID, id domain.RequestID) (*models.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.byID[id]
	if !ok || request.HospitalID != hospitalID {
		return nil, sentinel.ErrNotFound
	}
	return request.Clone(), nil
}

func (s *InMemory) ListByHospital(_ context.Context, hospitalID domain.HospitalID) ([]*models.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.BloodRequest
	for _, r := range s.byID {
		if r.HospitalID == hospitalID {
			out = append(out, r.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, hospitalID domain.HospitalID, id domain.RequestID, validate func(*models.BloodRequest) error, mutate func(*models.BloodRequest)) (*models.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.byID[id]
	if !ok || request.HospitalID != hospitalID {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(request); err != nil {
		return nil, err
	}
	mutate(request)
	return request.Clone(), nil
}

func (s *InMemory) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.byID {
		if !r.IsFulfilled {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) ListRecent(_ context.Context, limit int) ([]*models.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.BloodRequest, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r.Clone())
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(requests []*models.BloodRequest) {
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		}
		return requests[i].ID.String() < requests[j].ID.String()
	})
}
