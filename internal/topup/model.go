package topup

import "time"

const (
	// StatusPending is the initial state of a submitted top-up request.
	StatusPending = "pending"
	// StatusApproved is terminal; entering it credits the user's balance once.
	StatusApproved = "approved"
	// StatusRejected is terminal and has no balance effect.
	StatusRejected = "rejected"
)

// Request is a user-submitted wallet top-up awaiting admin review. Requests
// are created by the customer-facing submission flow; this service only
// reads them and applies the single pending -> approved/rejected transition.
type Request struct {
	ID            string
	UserID        string
	Amount        int64
	PaymentMethod string
	Currency      string
	Status        string
	AdminNotes    string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Stats aggregates the review queue for the dashboard header.
type Stats struct {
	TotalPending  int   `json:"totalPending"`
	TotalApproved int   `json:"totalApproved"`
	TotalRejected int   `json:"totalRejected"`
	PendingAmount int64 `json:"pendingAmount"`
}

// Terminal reports whether a status permits no further transition.
func Terminal(status string) bool {
	return status == StatusApproved || status == StatusRejected
}
