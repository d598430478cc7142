package topup

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the referenced top-up request does not exist.
var ErrNotFound = errors.New("topup request not found")

// Repository persists top-up requests.
type Repository interface {
	Get(ctx context.Context, id string) (Request, error)
	// List returns requests newest first; status filters when not empty or "all".
	List(ctx context.Context, status string) ([]Request, error)
	// UpdateStatus writes the transition outcome and returns the updated request.
	UpdateStatus(ctx context.Context, id, status, adminNotes string, processedAt time.Time) (Request, error)
	Stats(ctx context.Context) (Stats, error)
}

// PostgresRepository stores top-up requests in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const requestColumns = `id, user_id, amount, payment_method, COALESCE(payment_currency, 'USD'),
    status, COALESCE(admin_notes, ''), processed_at, created_at, updated_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	var processedAt *time.Time
	var createdAt, updatedAt time.Time
	if err := row.Scan(&r.ID, &r.UserID, &r.Amount, &r.PaymentMethod, &r.Currency,
		&r.Status, &r.AdminNotes, &processedAt, &createdAt, &updatedAt); err != nil {
		return Request{}, err
	}
	if processedAt != nil {
		utc := processedAt.UTC()
		r.ProcessedAt = &utc
	}
	r.CreatedAt = createdAt.UTC()
	r.UpdatedAt = updatedAt.UTC()
	return r, nil
}

// Get fetches one request by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Request, error) {
	row := r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM topup_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	return req, nil
}

// List returns requests newest first, optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, status string) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM topup_requests ORDER BY created_at DESC`
	args := []any{}
	if status != "" && status != "all" {
		query = `SELECT ` + requestColumns + ` FROM topup_requests WHERE status = $1 ORDER BY created_at DESC`
		args = append(args, status)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// UpdateStatus writes the new status, notes, and processing timestamps.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status, adminNotes string, processedAt time.Time) (Request, error) {
	row := r.db.QueryRow(ctx, `UPDATE topup_requests
        SET status = $1, admin_notes = $2, processed_at = $3, updated_at = $3
        WHERE id = $4
        RETURNING `+requestColumns, status, adminNotes, processedAt.UTC(), id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	return req, nil
}

// Stats aggregates request counts and the pending amount in one pass.
func (r *PostgresRepository) Stats(ctx context.Context) (Stats, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status = 'pending'),
        COUNT(*) FILTER (WHERE status = 'approved'),
        COUNT(*) FILTER (WHERE status = 'rejected'),
        COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0)
        FROM topup_requests`
	var s Stats
	if err := r.db.QueryRow(ctx, query).Scan(&s.TotalPending, &s.TotalApproved, &s.TotalRejected, &s.PendingAmount); err != nil {
		return Stats{}, err
	}
	return s, nil
}
