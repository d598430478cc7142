package balance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/evenoddpro/walletadmin/internal/logging"
)

func TestAdjustCreatesRecordLazily(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	adjuster := NewLockingAdjuster(store, logging.Discard())

	res, err := adjuster.Adjust(ctx, Input{UserID: "u3", Amount: 30, Type: TypeTopup})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if res.BalanceBefore != 0 || res.BalanceAfter != 30 {
		t.Fatalf("unexpected balances: %+v", res)
	}

	record, err := store.GetRecord(ctx, "u3")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Balance != 30 {
		t.Fatalf("expected balance 30, got %d", record.Balance)
	}

	txs, err := store.ListTransactions(ctx, "u3", 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].BalanceBefore != 0 || txs[0].BalanceAfter != 30 || txs[0].Type != TypeTopup {
		t.Fatalf("unexpected transaction: %+v", txs[0])
	}
}

func TestAdjustRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	adjuster := NewLockingAdjuster(NewMemoryStore(), logging.Discard())

	if _, err := adjuster.Adjust(ctx, Input{UserID: "u1", Amount: 0, Type: TypeTopup}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := adjuster.Adjust(ctx, Input{UserID: "u1", Amount: 10, Type: "withdrawal"}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected invalid type, got %v", err)
	}
}

func TestDeductRejectedWhenBalanceWouldGoNegative(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	adjuster := NewLockingAdjuster(store, logging.Discard())

	if _, err := adjuster.Adjust(ctx, Input{UserID: "u2", Amount: 50, Type: TypeTopup}); err != nil {
		t.Fatalf("seed topup: %v", err)
	}

	_, err := adjuster.Adjust(ctx, Input{UserID: "u2", Amount: 100, Type: TypeDeduct})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected typed insufficient error, got %T", err)
	}
	if insufficient.CurrentBalance != 50 || insufficient.RequiredAmount != 100 {
		t.Fatalf("unexpected figures: %+v", insufficient)
	}

	record, err := store.GetRecord(ctx, "u2")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Balance != 50 {
		t.Fatalf("balance changed on rejected deduct: %d", record.Balance)
	}
	txs, _ := store.ListTransactions(ctx, "u2", 10)
	if len(txs) != 1 {
		t.Fatalf("rejected deduct must not write a ledger row, got %d rows", len(txs))
	}
}

func TestRefundCreditsBalance(t *testing.T) {
	ctx := context.Background()
	adjuster := NewLockingAdjuster(NewMemoryStore(), logging.Discard())

	if _, err := adjuster.Adjust(ctx, Input{UserID: "u5", Amount: 100, Type: TypeTopup}); err != nil {
		t.Fatalf("topup: %v", err)
	}
	if _, err := adjuster.Adjust(ctx, Input{UserID: "u5", Amount: 40, Type: TypeDeduct}); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	res, err := adjuster.Adjust(ctx, Input{UserID: "u5", Amount: 40, Type: TypeRefund})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if res.BalanceBefore != 60 || res.BalanceAfter != 100 {
		t.Fatalf("unexpected refund balances: %+v", res)
	}
}

func TestLockingAdjusterSerializesPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	adjuster := NewLockingAdjuster(store, logging.Discard())

	const workers = 10
	const perWorker = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := adjuster.Adjust(ctx, Input{UserID: "u4", Amount: 5, Type: TypeTopup}); err != nil {
					t.Errorf("adjust failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	record, err := store.GetRecord(ctx, "u4")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if want := int64(workers * perWorker * 5); record.Balance != want {
		t.Fatalf("lost update under locking adjuster: want %d, got %d", want, record.Balance)
	}

	report, err := Reconcile(ctx, store, "u4")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !report.Consistent {
		t.Fatalf("ledger and cache diverged under locking adjuster: %+v", report)
	}
}

// gatedStore forces two concurrent adjustments to both read the balance
// before either writes, making the manual adjuster's race deterministic.
type gatedStore struct {
	Store
	reads *sync.WaitGroup
}

func (s *gatedStore) GetRecord(ctx context.Context, userID string) (Record, error) {
	record, err := s.Store.GetRecord(ctx, userID)
	s.reads.Done()
	s.reads.Wait()
	return record, err
}

func TestManualAdjusterLosesConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	var reads sync.WaitGroup
	reads.Add(2)
	store := &gatedStore{Store: inner, reads: &reads}
	adjuster := NewManualAdjuster(store, logging.Discard())

	results := make(chan error, 2)
	for _, amount := range []int64{50, 20} {
		go func(amount int64) {
			_, err := adjuster.Adjust(ctx, Input{UserID: "u6", Amount: amount, Type: TypeTopup})
			results <- err
		}(amount)
	}
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			t.Fatalf("adjust failed: %v", err)
		}
	}

	record, err := inner.GetRecord(ctx, "u6")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	// Both adjustments read balance 0, so one credit overwrites the other.
	if record.Balance != 50 && record.Balance != 20 {
		t.Fatalf("expected a lost update (50 or 20), got %d", record.Balance)
	}

	// The ledger saw both rows, so reconciliation must flag the mismatch.
	report, err := Reconcile(ctx, inner, "u6")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.LedgerBalance != 70 {
		t.Fatalf("expected ledger sum 70, got %d", report.LedgerBalance)
	}
	if report.Consistent {
		t.Fatal("reconcile must report the manual adjuster's lost update")
	}
}

// wrappingStore annotates lookup errors the way an instrumented driver
// would, so sentinel checks must survive wrapping.
type wrappingStore struct {
	Store
}

func (s *wrappingStore) GetRecord(ctx context.Context, userID string) (Record, error) {
	record, err := s.Store.GetRecord(ctx, userID)
	if err != nil {
		return record, fmt.Errorf("lookup %s: %w", userID, err)
	}
	return record, nil
}

func TestAdjustHandlesWrappedMissingRecord(t *testing.T) {
	ctx := context.Background()
	store := &wrappingStore{Store: NewMemoryStore()}
	adjuster := NewLockingAdjuster(store, logging.Discard())

	res, err := adjuster.Adjust(ctx, Input{UserID: "u8", Amount: 25, Type: TypeTopup})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if res.BalanceBefore != 0 || res.BalanceAfter != 25 {
		t.Fatalf("unexpected balances: %+v", res)
	}

	report, err := Reconcile(ctx, store, "never-seen")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.CachedBalance != 0 || !report.Consistent {
		t.Fatalf("missing record must reconcile as zero: %+v", report)
	}
}

func TestLedgerRowsStayInternallyConsistent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	adjuster := NewLockingAdjuster(store, logging.Discard())

	moves := []struct {
		amount int64
		typ    string
	}{
		{100, TypeTopup}, {30, TypeDeduct}, {30, TypeRefund}, {45, TypeDeduct},
	}
	for i, m := range moves {
		ref := fmt.Sprintf("ref-%d", i)
		if _, err := adjuster.Adjust(ctx, Input{UserID: "u7", Amount: m.amount, Type: m.typ, ReferenceID: ref}); err != nil {
			t.Fatalf("adjust %d: %v", i, err)
		}
	}

	txs, err := store.ListTransactions(ctx, "u7", 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != len(moves) {
		t.Fatalf("expected %d rows, got %d", len(moves), len(txs))
	}
	for _, tx := range txs {
		if tx.BalanceAfter != tx.BalanceBefore+signedAmount(tx.Type, tx.Amount) {
			t.Fatalf("row breaks balance_after = balance_before + signed amount: %+v", tx)
		}
	}

	ok, err := store.HasReference(ctx, "ref-2")
	if err != nil || !ok {
		t.Fatalf("expected ref-2 present, ok=%v err=%v", ok, err)
	}
	if ok, _ := store.HasReference(ctx, "ref-99"); ok {
		t.Fatal("unexpected reference match")
	}
}
