package notification

import (
	"context"
	"log/slog"
)

// StatusChange is the domain event emitted after a top-up request transition.
type StatusChange struct {
	RequestID     string
	UserID        string
	Email         string
	Name          string
	Status        string
	Amount        int64
	PaymentMethod string
	Currency      string
	Notes         string
}

// Notifier delivers status-change notifications to the affected user. The
// transition procedure treats delivery as best effort: errors are surfaced
// in the response payload, never as a transition failure.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, change StatusChange) error
}

// LoggerNotifier is a stub implementation that writes notifications to the
// logger. Used when SMTP is not configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// NotifyStatusChange writes the event to the structured logger.
func (n *LoggerNotifier) NotifyStatusChange(_ context.Context, change StatusChange) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("topup status notification",
		"request_id", change.RequestID,
		"user_id", change.UserID,
		"status", change.Status,
		"amount", change.Amount)
	return nil
}
