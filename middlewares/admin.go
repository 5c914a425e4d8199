package middlewares

import (
	"os"

	"tiempos/helpers"

	"github.com/gofiber/fiber/v2"
)

func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-Admin-Key")
		expected := os.Getenv("ADMIN_API_KEY")

		if expected == "" || key != expected {
			return helpers.JSONError(c, "INVALID_ADMIN_KEY")
		}

		c.Locals("actor_id", "admin")
		return c.Next()
	}
}
