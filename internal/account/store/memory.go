package store

import (
	"context"
	"strings"
	"sync"

	"bloodlink/internal/account/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded account store for tests and for running
// without Postgres.
type InMemory struct {
	mu      sync.RWMutex
	byEmail map[string]*models.Account
	byID    map[domain.AccountID]*models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{
		byEmail: make(map[string]*models.Account),
		byID:    make(map[domain.AccountID]*models.Account),
	}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	stored := account.Clone()
	s.byEmail[key] = stored
	s.byID[account.ID] = stored
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return account.Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return account.Clone(), nil
}
