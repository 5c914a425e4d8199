package auditlog

import (
	"tiempos/audit"
	"tiempos/database"
	"tiempos/helpers"

	"github.com/gofiber/fiber/v2"
)

// Verify walks the full audit chain and recomputes every hash.
func Verify(c *fiber.Ctx) error {
	verified, err := audit.Verify(database.DB)
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "AUDIT_CHAIN_BROKEN",
			"data": fiber.Map{
				"verified": verified,
				"detail":   err.Error(),
			},
		})
	}

	return helpers.JSONSuccess(c, "Audit chain verified", fiber.Map{
		"verified": verified,
	})
}
