package balance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// TypeTopup credits a user balance from an approved top-up.
	TypeTopup = "topup"
	// TypeDeduct debits a user balance; rejected when it would go negative.
	TypeDeduct = "deduct"
	// TypeRefund credits a user balance to reverse an earlier charge.
	TypeRefund = "refund"
)

var (
	// ErrNoRecord indicates no balance record exists yet for the user.
	ErrNoRecord = errors.New("no balance record")

	// ErrInsufficientBalance occurs when a deduct would drive the balance negative.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidType indicates an unknown transaction type was supplied.
	ErrInvalidType = errors.New("invalid transaction type: use topup, deduct, or refund")

	// ErrInvalidAmount indicates a non-positive amount was supplied.
	ErrInvalidAmount = errors.New("amount must be a positive number")
)

// InsufficientBalanceError carries the figures callers echo back in responses.
type InsufficientBalanceError struct {
	CurrentBalance int64
	RequiredAmount int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.CurrentBalance, e.RequiredAmount)
}

// Is lets errors.Is(err, ErrInsufficientBalance) match the typed error.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// Record is the current-value cache of a user's balance. At most one exists
// per user; it is created lazily with a zero balance on first adjustment.
type Record struct {
	UserID    string
	Balance   int64
	UpdatedAt time.Time
}

// Transaction is one append-only ledger row. Amount is a positive magnitude;
// the direction comes from Type. BalanceAfter always equals BalanceBefore
// plus the signed amount.
type Transaction struct {
	ID            string
	UserID        string
	Type          string
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
	Description   string
	ReferenceID   string
	CreatedAt     time.Time
}

// Store persists balance records and the transaction ledger.
type Store interface {
	GetRecord(ctx context.Context, userID string) (Record, error)
	CreateRecord(ctx context.Context, userID string) (Record, error)
	UpdateRecord(ctx context.Context, userID string, newBalance int64) error
	InsertTransaction(ctx context.Context, tx Transaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
	SumTransactions(ctx context.Context, userID string) (int64, error)
	HasReference(ctx context.Context, referenceID string) (bool, error)
	ListRecords(ctx context.Context) ([]Record, error)
}

// ValidType reports whether t is a supported transaction type.
func ValidType(t string) bool {
	switch t {
	case TypeTopup, TypeDeduct, TypeRefund:
		return true
	default:
		return false
	}
}

// signedAmount converts a positive magnitude into the delta applied to the
// balance: credits for topup/refund, debit for deduct.
func signedAmount(transactionType string, amount int64) int64 {
	if transactionType == TypeDeduct {
		return -amount
	}
	return amount
}
