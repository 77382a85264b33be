package store

import (
	"context"
	"sort"
	"sync"

	"bloodlink/internal/donor/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/platform/sentinel"
)

// InMemory keeps donor profiles in a map guarded by a mutex. It favors
// clarity over performance and backs unit tests and dev mode.
type InMemory struct {
	mu        sync.RWMutex
	byAccount map[domain.AccountID]*models.Donor
}

func NewInMemory() *InMemory {
	return &InMemory{byAccount: make(map[domain.AccountID]*models.Donor)}
}

func (s *InMemory) Create(_ context.Context, donor *models.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAccount[donor.AccountID]; exists {
		return sentinel.ErrConflict
	}
	s.byAccount[donor.AccountID] = donor.Clone()
	return nil
}

func (s *InMemory) FindByAccount(_ context.Context, accountID domain.AccountID) (*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	donor, ok := s.byAccount[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return donor.Clone(), nil
}

func (s *InMemory) List(_ context.Context, filter Filter) ([]*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	typeSet := make(map[domain.BloodType]bool, len(filter.BloodTypes))
	for _, bt := range filter.BloodTypes {
		typeSet[bt] = true
	}

	type scored struct {
		donor    *models.Donor
		distance float64
	}
	var matches []scored

	for _, donor := range s.byAccount {
		if filter.AvailableOnly && !donor.IsAvailable {
			continue
		}
		if len(typeSet) > 0 && !typeSet[donor.BloodType] {
			continue
		}

		entry := scored{donor: donor.Clone()}
		if filter.Origin != nil {
			if donor.Location.Coordinates == nil {
				continue
			}
			entry.distance = geo.Distance(*filter.Origin, *donor.Location.Coordinates)
			if entry.distance > filter.MaxDistanceMeters {
				continue
			}
		}
		matches = append(matches, entry)
	}

	if filter.Origin != nil {
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].distance != matches[j].distance {
				return matches[i].distance < matches[j].distance
			}
			return matches[i].donor.ID.String() < matches[j].donor.ID.String()
		})
	} else {
		sort.Slice(matches, func(i, j int) bool {
			if !matches[i].donor.CreatedAt.Equal(matches[j].donor.CreatedAt) {
				return matches[i].donor.CreatedAt.After(matches[j].donor.CreatedAt)
			}
			return matches[i].donor.ID.String() < matches[j].donor.ID.String()
		})
	}

	out := make([]*models.Donor, len(matches))
	for i, m := range matches {
		out[i] = m.donor
	}
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, accountID domain.AccountID,
	validate func(*models.Donor) error,
	mutate func(*models.Donor)) (*models.Donor, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	donor, ok := s.byAccount[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := donor.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.byAccount[accountID] = working

	return working.Clone(), nil
}

func (s *InMemory) CountByAvailability(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.byAccount)
	available := 0
	for _, donor := range s.byAccount {
		if donor.IsAvailable {
			available++
		}
	}
	return total, available, nil
}

func (s *InMemory) CountAvailableByBloodType(_ context.Context) (map[domain.BloodType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.BloodType]int)
	for _, donor := range s.byAccount {
		if donor.IsAvailable {
			counts[donor.BloodType]++
		}
	}
	return counts, nil
}
