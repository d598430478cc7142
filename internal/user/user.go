package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no profile exists for the given user id.
var ErrNotFound = errors.New("user not found")

// Profile mirrors one row of the user directory. The admin service only
// reads profiles; they are created by the customer-facing signup flow.
type Profile struct {
	ID        string
	Email     string
	FullName  string
	CreatedAt time.Time
}

// Repository reads user profiles.
type Repository interface {
	Get(ctx context.Context, id string) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
}
