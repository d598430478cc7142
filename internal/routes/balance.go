package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evenoddpro/walletadmin/internal/balance"
)

// RegisterBalanceRoutes wires balance and ledger endpoints.
func RegisterBalanceRoutes(r fiber.Router, h *balance.Handler) {
	r.Get("/balances", h.Overview)
	r.Get("/balance/:userId", h.Get)
	r.Post("/balance/:userId/adjust", h.Adjust)
	r.Get("/balance/:userId/reconcile", h.Reconcile)
	r.Get("/transactions/:userId", h.Transactions)
}
