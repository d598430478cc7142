package topup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/evenoddpro/walletadmin/internal/balance"
	"github.com/evenoddpro/walletadmin/internal/notification"
	"github.com/evenoddpro/walletadmin/internal/user"
)

var (
	// ErrInvalidStatus indicates a target status other than approved/rejected.
	ErrInvalidStatus = errors.New("invalid status: use approved or rejected")

	// ErrInvalidTransition indicates an attempt to flip a request between the
	// two terminal statuses. Corrections of a finalized decision go through
	// manual reconciliation, not this endpoint.
	ErrInvalidTransition = errors.New("request already processed with a different status")
)

// Service drives the top-up review workflow: listing the queue and applying
// status transitions with their balance effect.
type Service struct {
	repo     Repository
	adjuster balance.Adjuster
	ledger   balance.Store
	users    user.Repository
	notifier notification.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	requests map[string]*sync.Mutex
}

// NewService wires the transition procedure's collaborators.
func NewService(repo Repository, adjuster balance.Adjuster, ledger balance.Store, users user.Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		adjuster: adjuster,
		ledger:   ledger,
		users:    users,
		notifier: notifier,
		logger:   logger,
		requests: make(map[string]*sync.Mutex),
	}
}

// TransitionResult combines the updated request with the balance effect (if
// any) and the best-effort notification outcome.
type TransitionResult struct {
	Request       Request
	BalanceEffect *balance.Result
	CreditSkipped bool
	EmailSent     bool
	EmailError    string
}

// Transition moves a request to approved or rejected. Approving a pending
// request credits the user's balance before the status write; if the credit
// fails the status is left untouched. Re-applying the same terminal status
// refreshes notes and timestamps without a second credit.
func (s *Service) Transition(ctx context.Context, id, target, adminNotes string) (TransitionResult, error) {
	if target != StatusApproved && target != StatusRejected {
		return TransitionResult{}, ErrInvalidStatus
	}

	// Concurrent transitions for the same request serialize here. Without
	// this, two approvals can both pass the ledger reference check below
	// before either credits, and the user is credited twice.
	lock := s.requestLock(id)
	lock.Lock()
	result, err := s.transitionLocked(ctx, id, target, adminNotes)
	lock.Unlock()
	if err != nil {
		return TransitionResult{}, err
	}

	result.EmailSent, result.EmailError = s.notify(ctx, result.Request, adminNotes)
	return result, nil
}

func (s *Service) transitionLocked(ctx context.Context, id, target, adminNotes string) (TransitionResult, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}

	if Terminal(req.Status) && req.Status != target {
		return TransitionResult{}, ErrInvalidTransition
	}

	result := TransitionResult{}

	if target == StatusApproved && req.Status != StatusApproved {
		credited, err := s.ledger.HasReference(ctx, req.ID)
		if err != nil {
			return TransitionResult{}, err
		}
		if credited {
			// An earlier approval credited the balance but died before the
			// status write. Finish the transition without crediting again.
			result.CreditSkipped = true
			s.logger.Warn("request already credited, skipping balance effect",
				slog.String("request_id", req.ID),
				slog.String("user_id", req.UserID))
		} else {
			effect, err := s.adjuster.Adjust(ctx, balance.Input{
				UserID:      req.UserID,
				Amount:      req.Amount,
				Type:        balance.TypeTopup,
				Description: approvalDescription(adminNotes),
				ReferenceID: req.ID,
			})
			if err != nil {
				return TransitionResult{}, fmt.Errorf("update user balance: %w", err)
			}
			result.BalanceEffect = &effect
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, req.ID, target, adminNotes, time.Now().UTC())
	if err != nil {
		if result.BalanceEffect != nil {
			// Credit committed, status write failed: the request stays
			// pending while the user holds the funds. The reference check
			// above stops a retry from crediting twice.
			s.logger.Error("status write failed after balance credit",
				slog.String("request_id", req.ID),
				slog.String("user_id", req.UserID),
				slog.String("transaction_id", result.BalanceEffect.TransactionID),
				slog.Any("error", err))
		}
		return TransitionResult{}, err
	}
	result.Request = updated
	return result, nil
}

func (s *Service) requestLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.requests[id]
	if !ok {
		lock = &sync.Mutex{}
		s.requests[id] = lock
	}
	return lock
}

// notify emits the status-change event. Failures never affect the transition.
func (s *Service) notify(ctx context.Context, req Request, adminNotes string) (bool, string) {
	if s.notifier == nil {
		return false, ""
	}

	change := notification.StatusChange{
		RequestID:     req.ID,
		UserID:        req.UserID,
		Status:        req.Status,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Currency:      req.Currency,
		Notes:         adminNotes,
	}
	if s.users != nil {
		if profile, err := s.users.Get(ctx, req.UserID); err == nil {
			change.Email = profile.Email
			change.Name = profile.FullName
		} else {
			s.logger.Warn("profile lookup for notification failed",
				slog.String("user_id", req.UserID), slog.Any("error", err))
		}
	}

	if err := s.notifier.NotifyStatusChange(ctx, change); err != nil {
		s.logger.Warn("status notification failed",
			slog.String("request_id", req.ID), slog.Any("error", err))
		return false, err.Error()
	}
	return true, ""
}

// List returns the review queue, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]Request, error) {
	return s.repo.List(ctx, status)
}

// Stats aggregates the queue for the dashboard.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func approvalDescription(adminNotes string) string {
	if adminNotes == "" {
		adminNotes = "No notes"
	}
	return "Top-up approved by admin: " + adminNotes
}
