package bet

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

func Status(c *fiber.Ctx) error {
	ticket := c.Params("ticket")
	if ticket == "" {
		return helpers.JSONError(c, "TICKET_CODE_REQUIRED")
	}

	b, err := services.GetBet(ticket)
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Bet retrieved successfully", b)
}
