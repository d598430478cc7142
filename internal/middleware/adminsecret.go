package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const adminSecretHeader = "x-admin-secret"

// AdminSecret gates every admin endpoint behind a shared secret header.
// Requests without the right secret are rejected before any core logic runs.
func AdminSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get(adminSecretHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}
