package admin

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCredentials covers unknown email, inactive account, and wrong
// password alike; the response never reveals which one failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Account is a dashboard administrator.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// Repository persists admin accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
