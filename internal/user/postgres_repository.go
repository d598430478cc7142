package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository reads profiles from PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches one profile by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_email, COALESCE(full_name, ''), created_at
        FROM user_profiles WHERE id = $1`, id)
	var p Profile
	var createdAt time.Time
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.CreatedAt = createdAt.UTC()
	return p, nil
}

// List returns all profiles, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_email, COALESCE(full_name, ''), created_at
        FROM user_profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		var createdAt time.Time
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = createdAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}
