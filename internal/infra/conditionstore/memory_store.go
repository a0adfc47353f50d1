package conditionstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
)

type entry struct {
	payload   wellbeing.Conditions
	expiresAt time.Time
}

// MemoryStore keeps conditions in process memory for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements wellbeing.ConditionStore.
func (s *MemoryStore) Get(_ context.Context, key string) (wellbeing.Conditions, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return wellbeing.Conditions{}, false, nil
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return wellbeing.Conditions{}, false, nil
	}
	return e.payload, true, nil
}

// Save stores conditions. A non-positive ttl disables caching.
func (s *MemoryStore) Save(_ context.Context, key string, c wellbeing.Conditions, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{payload: c, expiresAt: s.now().Add(ttl)}
	return nil
}

var _ wellbeing.ConditionStore = (*MemoryStore)(nil)
