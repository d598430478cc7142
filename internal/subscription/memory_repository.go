package subscription

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu            sync.RWMutex
	subscriptions []Subscription
}

// NewMemoryRepository constructs an in-memory subscription repository for
// dev mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) List(_ context.Context) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Subscription, len(r.subscriptions))
	copy(out, r.subscriptions)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Seed inserts a subscription directly. Tests and dev mode only.
func Seed(repo Repository, sub Subscription) {
	if mem, ok := repo.(*memoryRepository); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.subscriptions = append(mem.subscriptions, sub)
	}
}
