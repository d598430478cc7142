package admin

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Service authenticates dashboard administrators.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds the admin auth service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Login verifies the credentials and returns the account on success. The
// last-login update is best effort.
func (s *Service) Login(ctx context.Context, email, password string) (Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if !account.IsActive {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	if err := s.repo.UpdateLastLogin(ctx, account.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", slog.String("admin_id", account.ID), slog.Any("error", err))
	}
	return account, nil
}
