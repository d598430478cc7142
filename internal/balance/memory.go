package balance

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu           sync.RWMutex
	records      map[string]Record
	transactions []Transaction
}

// NewMemoryStore creates a concurrency-safe in-memory store used in dev mode
// and unit tests. Each call is safe on its own; it provides no isolation
// across calls, which is exactly what the manual adjuster needs to exhibit
// its documented race.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) GetRecord(_ context.Context, userID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID]
	if !ok {
		return Record{}, ErrNoRecord
	}
	return record, nil
}

func (s *memoryStore) CreateRecord(_ context.Context, userID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[userID]; ok {
		return existing, nil
	}
	record := Record{UserID: userID, Balance: 0, UpdatedAt: time.Now().UTC()}
	s.records[userID] = record
	return record, nil
}

func (s *memoryStore) UpdateRecord(_ context.Context, userID string, newBalance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID]
	if !ok {
		return ErrNoRecord
	}
	record.Balance = newBalance
	record.UpdatedAt = time.Now().UTC()
	s.records[userID] = record
	return nil
}

func (s *memoryStore) InsertTransaction(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *memoryStore) ListTransactions(_ context.Context, userID string, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) SumTransactions(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum int64
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			sum += signedAmount(tx.Type, tx.Amount)
		}
	}
	return sum, nil
}

func (s *memoryStore) HasReference(_ context.Context, referenceID string) (bool, error) {
	if referenceID == "" {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.transactions {
		if tx.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) ListRecords(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
