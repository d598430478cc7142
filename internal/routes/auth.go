package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evenoddpro/walletadmin/internal/admin"
)

// RegisterAuthRoutes wires the admin login endpoint.
func RegisterAuthRoutes(r fiber.Router, h *admin.Handler, rateLimiter fiber.Handler) {
	r.Post("/admin/login", rateLimiter, h.Login)
}
