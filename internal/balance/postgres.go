package balance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists balance records and ledger rows in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetRecord fetches the balance record for a user.
func (s *PostgresStore) GetRecord(ctx context.Context, userID string) (Record, error) {
	row := s.db.QueryRow(ctx, `SELECT user_id, balance, updated_at FROM user_balances WHERE user_id = $1`, userID)
	var r Record
	var updatedAt time.Time
	if err := row.Scan(&r.UserID, &r.Balance, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNoRecord
		}
		return Record{}, err
	}
	r.UpdatedAt = updatedAt.UTC()
	return r, nil
}

// CreateRecord inserts a zero-balance record for a user. Safe to race with
// another creator: the conflict clause keeps the invariant of one record per
// user and the existing row is returned.
func (s *PostgresStore) CreateRecord(ctx context.Context, userID string) (Record, error) {
	_, err := s.db.Exec(ctx, `INSERT INTO user_balances (user_id, balance, updated_at)
        VALUES ($1, 0, now()) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return Record{}, err
	}
	return s.GetRecord(ctx, userID)
}

// UpdateRecord writes a new balance value for the user.
func (s *PostgresStore) UpdateRecord(ctx context.Context, userID string, newBalance int64) error {
	cmd, err := s.db.Exec(ctx, `UPDATE user_balances SET balance = $1, updated_at = now() WHERE user_id = $2`, newBalance, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoRecord
	}
	return nil
}

// InsertTransaction appends one ledger row.
func (s *PostgresStore) InsertTransaction(ctx context.Context, tx Transaction) error {
	_, err := s.db.Exec(ctx, `INSERT INTO balance_transactions
        (id, user_id, transaction_type, amount, balance_before, balance_after, description, reference_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tx.ID, tx.UserID, tx.Type, tx.Amount, tx.BalanceBefore, tx.BalanceAfter,
		nullable(tx.Description), nullable(tx.ReferenceID), tx.CreatedAt.UTC())
	return err
}

// ListTransactions returns the user's ledger rows, newest first, capped at limit.
func (s *PostgresStore) ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT id, user_id, transaction_type, amount, balance_before, balance_after,
        COALESCE(description, ''), COALESCE(reference_id, ''), created_at
        FROM balance_transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		var createdAt time.Time
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.BalanceBefore, &tx.BalanceAfter,
			&tx.Description, &tx.ReferenceID, &createdAt); err != nil {
			return nil, err
		}
		tx.CreatedAt = createdAt.UTC()
		out = append(out, tx)
	}
	return out, rows.Err()
}

// SumTransactions replays the user's ledger as a signed sum from zero.
func (s *PostgresStore) SumTransactions(ctx context.Context, userID string) (int64, error) {
	const query = `SELECT COALESCE(SUM(CASE WHEN transaction_type = 'deduct' THEN -amount ELSE amount END), 0)
        FROM balance_transactions WHERE user_id = $1`
	var sum int64
	if err := s.db.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// HasReference reports whether any ledger row references the given id.
func (s *PostgresStore) HasReference(ctx context.Context, referenceID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM balance_transactions WHERE reference_id = $1)`, referenceID).Scan(&exists)
	return exists, err
}

// ListRecords returns every balance record, newest first.
func (s *PostgresStore) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id, balance, updated_at FROM user_balances ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var updatedAt time.Time
		if err := rows.Scan(&r.UserID, &r.Balance, &updatedAt); err != nil {
			return nil, err
		}
		r.UpdatedAt = updatedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// PostgresAdjuster is the atomic adjustment path: the whole
// read-modify-write-and-log sequence runs inside one database transaction
// with the user's balance row locked, so concurrent adjustments for the same
// user serialize on the row.
type PostgresAdjuster struct {
	db *pgxpool.Pool
}

// NewPostgresAdjuster builds the transactional adjuster.
func NewPostgresAdjuster(db *pgxpool.Pool) *PostgresAdjuster {
	return &PostgresAdjuster{db: db}
}

// Adjust applies the adjustment and appends the ledger row as one unit.
func (a *PostgresAdjuster) Adjust(ctx context.Context, input Input) (Result, error) {
	if err := input.validate(); err != nil {
		return Result{}, err
	}

	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lazily create the record, then take the row lock.
	if _, err := tx.Exec(ctx, `INSERT INTO user_balances (user_id, balance, updated_at)
        VALUES ($1, 0, now()) ON CONFLICT (user_id) DO NOTHING`, input.UserID); err != nil {
		return Result{}, err
	}

	var before int64
	if err := tx.QueryRow(ctx, `SELECT balance FROM user_balances WHERE user_id = $1 FOR UPDATE`, input.UserID).Scan(&before); err != nil {
		return Result{}, err
	}

	after := before + signedAmount(input.Type, input.Amount)
	if input.Type == TypeDeduct && after < 0 {
		return Result{}, &InsufficientBalanceError{CurrentBalance: before, RequiredAmount: input.Amount}
	}

	if _, err := tx.Exec(ctx, `UPDATE user_balances SET balance = $1, updated_at = now() WHERE user_id = $2`, after, input.UserID); err != nil {
		return Result{}, err
	}

	txID := uuid.New()
	if _, err := tx.Exec(ctx, `INSERT INTO balance_transactions
        (id, user_id, transaction_type, amount, balance_before, balance_after, description, reference_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		txID, input.UserID, input.Type, input.Amount, before, after,
		nullable(input.Description), nullable(input.ReferenceID)); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}

	return Result{BalanceBefore: before, BalanceAfter: after, TransactionID: txID.String()}, nil
}
