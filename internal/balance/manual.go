package balance

import (
	"context"
	"log/slog"
)

// ManualAdjuster is the degraded fallback path: three independent store
// calls (read the record, write the new balance, append the ledger row) with
// no locking and no transaction. Between the read and the write a concurrent
// adjustment for the same user can interleave and its update is then lost.
// The hazard is inherent to this mode and is deliberately not papered over;
// deployments with an atomic primitive available must run BALANCE_MODE=atomic.
type ManualAdjuster struct {
	store  Store
	logger *slog.Logger
}

// NewManualAdjuster builds the fallback adjuster over the given store.
func NewManualAdjuster(store Store, logger *slog.Logger) *ManualAdjuster {
	return &ManualAdjuster{store: store, logger: logger}
}

// Adjust applies the read-compute-write sequence without isolation.
func (a *ManualAdjuster) Adjust(ctx context.Context, input Input) (Result, error) {
	return applyAdjustment(ctx, a.store, a.logger, input)
}
