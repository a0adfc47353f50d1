package historyrepo

import (
	"context"
	"sync"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
)

// MemoryRepository keeps the most recent assessments in memory for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	limit int
	order []string
	items map[string]wellbeing.Assessment
}

// NewMemoryRepository constructs a bounded repository. A non-positive limit
// keeps everything.
func NewMemoryRepository(limit int) *MemoryRepository {
	return &MemoryRepository{
		limit: limit,
		items: make(map[string]wellbeing.Assessment),
	}
}

// Save implements wellbeing.HistoryRepository.
func (r *MemoryRepository) Save(_ context.Context, a wellbeing.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	r.items[a.ID] = a
	for r.limit > 0 && len(r.order) > r.limit {
		delete(r.items, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

// Find implements wellbeing.HistoryRepository.
func (r *MemoryRepository) Find(_ context.Context, id string) (wellbeing.Assessment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	return a, ok, nil
}

var _ wellbeing.HistoryRepository = (*MemoryRepository)(nil)
