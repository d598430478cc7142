package admin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores admin accounts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed admin repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByEmail fetches an active admin account by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, password, COALESCE(full_name, ''), is_active, last_login, created_at
        FROM admin_users WHERE email = $1`, email)
	var a Account
	var lastLogin *time.Time
	var createdAt time.Time
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.IsActive, &lastLogin, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if lastLogin != nil {
		utc := lastLogin.UTC()
		a.LastLogin = &utc
	}
	a.CreatedAt = createdAt.UTC()
	return a, nil
}

// UpdateLastLogin records the login timestamp.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE admin_users SET last_login = $1 WHERE id = $2`, at.UTC(), id)
	return err
}
