package balance

import (
	"context"
	"errors"
)

// ReconcileReport compares the cached balance record against a full replay
// of the user's ledger.
type ReconcileReport struct {
	UserID        string
	CachedBalance int64
	LedgerBalance int64
	Consistent    bool
}

// Reconcile replays the user's ledger and compares the signed sum to the
// cached record. A mismatch is the expected residue of the manual adjuster's
// lost-update window or of a ledger append that failed after the balance
// write; it is reported, not repaired.
func Reconcile(ctx context.Context, store Store, userID string) (ReconcileReport, error) {
	ledgerBalance, err := store.SumTransactions(ctx, userID)
	if err != nil {
		return ReconcileReport{}, err
	}

	cached := int64(0)
	record, err := store.GetRecord(ctx, userID)
	if err == nil {
		cached = record.Balance
	} else if !errors.Is(err, ErrNoRecord) {
		return ReconcileReport{}, err
	}

	return ReconcileReport{
		UserID:        userID,
		CachedBalance: cached,
		LedgerBalance: ledgerBalance,
		Consistent:    cached == ledgerBalance,
	}, nil
}
