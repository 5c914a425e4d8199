package bet

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

func Refund(c *fiber.Ctx) error {
	ticket := c.Params("ticket")
	if ticket == "" {
		return helpers.JSONError(c, "TICKET_CODE_REQUIRED")
	}

	actorID, _ := c.Locals("actor_id").(string)

	refunded, err := services.RefundBet(actorID, ticket)
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Bet refunded successfully", fiber.Map{
		"ticket_code": refunded.TicketCode,
		"status":      refunded.Status,
		"amount":      refunded.Amount,
	})
}
