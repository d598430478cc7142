package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/evenoddpro/walletadmin/internal/subscription"
	"github.com/evenoddpro/walletadmin/internal/topup"
)

// RegisterAdminRoutes wires the action-multiplexed dashboard endpoint. The
// UI selects the operation with an ?action= query parameter.
func RegisterAdminRoutes(r fiber.Router, topups *topup.Handler, subs *subscription.Handler) {
	r.Get("/admin", func(c *fiber.Ctx) error {
		switch c.Query("action") {
		case "topup-requests":
			return topups.ListRequests(c)
		case "stats":
			return topups.Stats(c)
		case "subscriptions":
			return subs.List(c)
		default:
			return fiber.NewError(http.StatusBadRequest, "Invalid action")
		}
	})

	r.Put("/admin", func(c *fiber.Ctx) error {
		if c.Query("action") != "update-status" {
			return fiber.NewError(http.StatusBadRequest, "Invalid action")
		}
		return topups.UpdateStatus(c)
	})
}
