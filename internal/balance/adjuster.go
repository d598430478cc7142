package balance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Input describes one balance adjustment. Amount is always a positive
// magnitude; the sign is derived from Type, never passed in.
type Input struct {
	UserID      string
	Amount      int64
	Type        string
	Description string
	ReferenceID string
}

// Result captures the outcome of a successful adjustment.
type Result struct {
	BalanceBefore int64
	BalanceAfter  int64
	TransactionID string
}

// Adjuster applies a balance adjustment and records it in the ledger.
//
// Implementations differ only in their atomicity guarantee: the locking and
// Postgres adjusters serialize adjustments per user, the manual adjuster
// does not. Which one runs is decided once at startup from BALANCE_MODE.
type Adjuster interface {
	Adjust(ctx context.Context, input Input) (Result, error)
}

func (in Input) validate() error {
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidType(in.Type) {
		return ErrInvalidType
	}
	return nil
}

// applyAdjustment performs the read / lazy-create / compute / write / append
// sequence against the store. Callers decide whether it runs under a per-user
// lock; on its own it provides no isolation between concurrent invocations.
func applyAdjustment(ctx context.Context, store Store, logger *slog.Logger, input Input) (Result, error) {
	if err := input.validate(); err != nil {
		return Result{}, err
	}

	record, err := store.GetRecord(ctx, input.UserID)
	if errors.Is(err, ErrNoRecord) {
		record, err = store.CreateRecord(ctx, input.UserID)
	}
	if err != nil {
		return Result{}, err
	}

	before := record.Balance
	after := before + signedAmount(input.Type, input.Amount)
	if input.Type == TypeDeduct && after < 0 {
		return Result{}, &InsufficientBalanceError{CurrentBalance: before, RequiredAmount: input.Amount}
	}

	if err := store.UpdateRecord(ctx, input.UserID, after); err != nil {
		return Result{}, err
	}

	tx := Transaction{
		ID:            uuid.NewString(),
		UserID:        input.UserID,
		Type:          input.Type,
		Amount:        input.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   input.Description,
		ReferenceID:   input.ReferenceID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := store.InsertTransaction(ctx, tx); err != nil {
		// The balance write already committed; the ledger is now missing a
		// row and needs manual reconciliation.
		if logger != nil {
			logger.Error("ledger append failed after balance write",
				slog.String("user_id", input.UserID),
				slog.Int64("balance_before", before),
				slog.Int64("balance_after", after),
				slog.String("reference_id", input.ReferenceID),
				slog.Any("error", err))
		}
		return Result{}, err
	}

	return Result{BalanceBefore: before, BalanceAfter: after, TransactionID: tx.ID}, nil
}
