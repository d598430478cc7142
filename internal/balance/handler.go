package balance

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evenoddpro/walletadmin/internal/user"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

// Handler exposes balance and ledger endpoints.
type Handler struct {
	store    Store
	adjuster Adjuster
	users    user.Repository
}

// NewHandler builds a balance HTTP handler.
func NewHandler(store Store, adjuster Adjuster, users user.Repository) *Handler {
	return &Handler{store: store, adjuster: adjuster, users: users}
}

type adjustRequest struct {
	Amount      int64  `json:"amount"`
	Type        string `json:"transaction_type"`
	Description string `json:"description"`
	ReferenceID string `json:"reference_id"`
}

type recordResponse struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"transaction_type"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	Description   string    `json:"description,omitempty"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Overview lists all user profiles with their current balances.
func (h *Handler) Overview(c *fiber.Ctx) error {
	profiles, err := h.users.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	records, err := h.store.ListRecords(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	balances := make(map[string]int64, len(records))
	for _, r := range records {
		balances[r.UserID] = r.Balance
	}

	users := make([]fiber.Map, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, fiber.Map{
			"id":         p.ID,
			"user_email": p.Email,
			"full_name":  p.FullName,
			"balance":    balances[p.ID],
			"created_at": p.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "users": users})
}

// Get returns the current balance for one user. Users without a record have
// balance zero and a null record.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID := c.Params("userId")
	record, err := h.store.GetRecord(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "balance": 0, "record": nil})
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"balance": record.Balance,
		"record":  recordResponse{UserID: record.UserID, Balance: record.Balance, UpdatedAt: record.UpdatedAt},
	})
}

// Adjust applies a manual balance adjustment (topup, deduct, or refund).
func (h *Handler) Adjust(c *fiber.Ctx) error {
	userID := c.Params("userId")
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.adjuster.Adjust(c.UserContext(), Input{
		UserID:      userID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		var insufficient *InsufficientBalanceError
		switch {
		case errors.As(err, &insufficient):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error":           "Insufficient balance",
				"current_balance": insufficient.CurrentBalance,
				"required_amount": insufficient.RequiredAmount,
			})
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidType):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":        true,
		"balance_before": result.BalanceBefore,
		"balance_after":  result.BalanceAfter,
		"transaction_id": result.TransactionID,
		"message":        "Balance updated successfully",
	})
}

// Transactions returns the user's ledger, newest first, capped.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	userID := c.Params("userId")
	limit := c.QueryInt("limit", defaultTransactionLimit)
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	transactions, err := h.store.ListTransactions(c.UserContext(), userID, limit)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, transactionResponse{
			ID:            tx.ID,
			UserID:        tx.UserID,
			Type:          tx.Type,
			Amount:        tx.Amount,
			BalanceBefore: tx.BalanceBefore,
			BalanceAfter:  tx.BalanceAfter,
			Description:   tx.Description,
			ReferenceID:   tx.ReferenceID,
			CreatedAt:     tx.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "transactions": out})
}

// Reconcile reports whether the cached balance matches a ledger replay.
func (h *Handler) Reconcile(c *fiber.Ctx) error {
	userID := c.Params("userId")
	report, err := Reconcile(c.UserContext(), h.store, userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":        true,
		"user_id":        report.UserID,
		"cached_balance": report.CachedBalance,
		"ledger_balance": report.LedgerBalance,
		"consistent":     report.Consistent,
	})
}
