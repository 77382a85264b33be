package memory

import (
	"context"
	"sync"

	"bloodlink/pkg/domain"
	audit "bloodlink/pkg/platform/audit"
)

// InMemoryStore keeps emitted events per account. Used in tests and as the
// default when no durable audit backend is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.AccountID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.AccountID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.AccountID] = append(s.events[event.AccountID], event)
	return nil
}

func (s *InMemoryStore) ListByAccount(_ context.Context, accountID domain.AccountID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[accountID]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.AccountID][]audit.Event)
}
