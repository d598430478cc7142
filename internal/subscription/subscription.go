package subscription

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Subscription mirrors one row of the subscription history shown on the
// dashboard. This service never mutates subscriptions.
type Subscription struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	PlanID             string     `json:"plan_id"`
	Status             string     `json:"status"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	UserEmail          string     `json:"user_email,omitempty"`
	FullName           string     `json:"full_name,omitempty"`
}

// Repository reads subscription history.
type Repository interface {
	List(ctx context.Context) ([]Subscription, error)
}

// PostgresRepository reads subscriptions from PostgreSQL, joined with the
// user directory for display.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed subscription repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all subscriptions, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Subscription, error) {
	rows, err := r.db.Query(ctx, `SELECT s.id, s.user_id, s.plan_id, s.status,
        s.current_period_start, s.current_period_end, s.created_at, s.updated_at,
        COALESCE(p.user_email, ''), COALESCE(p.full_name, '')
        FROM subscriptions s
        LEFT JOIN user_profiles p ON p.id = s.user_id
        ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var s Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status,
			&s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt,
			&s.UserEmail, &s.FullName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Handler exposes the subscription history endpoint.
type Handler struct {
	repo Repository
}

// NewHandler builds a subscription HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns all subscriptions for the dashboard.
func (h *Handler) List(c *fiber.Ctx) error {
	subscriptions, err := h.repo.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if subscriptions == nil {
		subscriptions = []Subscription{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "subscriptions": subscriptions})
}
