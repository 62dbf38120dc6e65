package security

import (
	"github.com/gofiber/fiber/v2"
)

// HeadersMiddleware sets conservative security headers for a JSON-only API.
func HeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		return c.Next()
	}
}
