package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evenoddpro/walletadmin/internal/logging"
)

func seedAccount(t *testing.T, repo Repository, email, password string, active bool) Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := Account{
		ID:           "admin-1",
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Dashboard Admin",
		IsActive:     active,
		CreatedAt:    time.Now().UTC(),
	}
	Seed(repo, account)
	return account
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	repo := NewMemoryRepository()
	seedAccount(t, repo, "admin@example.com", "s3cret", true)
	service := NewService(repo, logging.Discard())

	account, err := service.Login(context.Background(), "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if account.Email != "admin@example.com" {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := NewMemoryRepository()
	seedAccount(t, repo, "admin@example.com", "s3cret", true)
	service := NewService(repo, logging.Discard())

	if _, err := service.Login(context.Background(), "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	service := NewService(NewMemoryRepository(), logging.Discard())

	if _, err := service.Login(context.Background(), "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo := NewMemoryRepository()
	seedAccount(t, repo, "admin@example.com", "s3cret", false)
	service := NewService(repo, logging.Discard())

	if _, err := service.Login(context.Background(), "admin@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}
