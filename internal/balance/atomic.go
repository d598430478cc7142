package balance

import (
	"context"
	"log/slog"
	"sync"
)

// LockingAdjuster serializes adjustments per user with in-process locks. It
// is the atomic path for store backends that lack transactions, notably the
// in-memory store used in dev mode and tests. For multi-process deployments
// PostgresAdjuster provides the same guarantee through row locking.
type LockingAdjuster struct {
	store  Store
	logger *slog.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewLockingAdjuster builds the per-user-lock adjuster over the given store.
func NewLockingAdjuster(store Store, logger *slog.Logger) *LockingAdjuster {
	return &LockingAdjuster{store: store, logger: logger, users: make(map[string]*sync.Mutex)}
}

// Adjust applies the adjustment while holding the user's lock, so two
// concurrent adjustments for the same user can never interleave.
func (a *LockingAdjuster) Adjust(ctx context.Context, input Input) (Result, error) {
	lock := a.userLock(input.UserID)
	lock.Lock()
	defer lock.Unlock()
	return applyAdjustment(ctx, a.store, a.logger, input)
}

func (a *LockingAdjuster) userLock(userID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		a.users[userID] = lock
	}
	return lock
}
