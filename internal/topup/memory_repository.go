package topup

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	requests map[string]Request
}

// NewMemoryRepository constructs an in-memory request repository for dev
// mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{requests: make(map[string]Request)}
}

func (r *memoryRepository) Get(_ context.Context, id string) (Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (r *memoryRepository) List(_ context.Context, status string) ([]Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Request
	for _, req := range r.requests {
		if status == "" || status == "all" || req.Status == status {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id, status, adminNotes string, processedAt time.Time) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	utc := processedAt.UTC()
	req.Status = status
	req.AdminNotes = adminNotes
	req.ProcessedAt = &utc
	req.UpdatedAt = utc
	r.requests[id] = req
	return req, nil
}

func (r *memoryRepository) Stats(_ context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Stats
	for _, req := range r.requests {
		switch req.Status {
		case StatusPending:
			s.TotalPending++
			s.PendingAmount += req.Amount
		case StatusApproved:
			s.TotalApproved++
		case StatusRejected:
			s.TotalRejected++
		}
	}
	return s, nil
}

// Seed inserts a request directly, standing in for the out-of-scope
// submission flow. Tests and dev mode only.
func Seed(repo Repository, req Request) {
	if mem, ok := repo.(*memoryRepository); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.requests[req.ID] = req
	}
}
