package topup

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evenoddpro/walletadmin/internal/user"
)

// Handler exposes the top-up review endpoints.
type Handler struct {
	service *Service
	users   user.Repository
}

// NewHandler builds a top-up HTTP handler.
func NewHandler(service *Service, users user.Repository) *Handler {
	return &Handler{service: service, users: users}
}

type updateStatusRequest struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

type profileResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

type requestResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Amount        int64            `json:"amount"`
	PaymentMethod string           `json:"payment_method"`
	Currency      string           `json:"payment_currency"`
	Status        string           `json:"status"`
	AdminNotes    string           `json:"admin_notes,omitempty"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	UserProfile   *profileResponse `json:"user_profile,omitempty"`
}

func toRequestResponse(req Request, profile *profileResponse) requestResponse {
	return requestResponse{
		ID:            req.ID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Currency:      req.Currency,
		Status:        req.Status,
		AdminNotes:    req.AdminNotes,
		ProcessedAt:   req.ProcessedAt,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
		UserProfile:   profile,
	}
}

// ListRequests returns the review queue with user profiles embedded.
func (h *Handler) ListRequests(c *fiber.Ctx) error {
	status := c.Query("status")
	requests, err := h.service.List(c.UserContext(), status)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	profiles := map[string]*profileResponse{}
	if h.users != nil {
		if all, err := h.users.List(c.UserContext()); err == nil {
			for _, p := range all {
				profiles[p.ID] = &profileResponse{ID: p.ID, Email: p.Email, FullName: p.FullName}
			}
		}
	}

	out := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req, profiles[req.UserID]))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "requests": out})
}

// Stats returns aggregate queue counters.
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "stats": stats})
}

// UpdateStatus applies an approve/reject transition.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ID == "" || req.Status == "" {
		return fiber.NewError(http.StatusBadRequest, "Missing required fields")
	}

	result, err := h.service.Transition(c.UserContext(), req.ID, req.Status, req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidStatus):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	message := "Status updated successfully"
	if result.Request.Status == StatusApproved {
		message = "Topup approved and balance updated successfully"
	}

	body := fiber.Map{
		"success":    true,
		"request":    toRequestResponse(result.Request, nil),
		"email_sent": result.EmailSent,
		"message":    message,
	}
	if result.EmailError != "" {
		body["email_error"] = result.EmailError
	}
	if result.BalanceEffect != nil {
		body["balance_after"] = result.BalanceEffect.BalanceAfter
	}
	return c.Status(http.StatusOK).JSON(body)
}
