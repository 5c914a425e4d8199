package risk

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

func Evaluate(c *fiber.Ctx) error {
	number := c.Query("number")
	drawID := c.Query("draw_id")
	drawDate := c.Query("draw_date")

	if number == "" || drawID == "" || drawDate == "" {
		return helpers.JSONError(c, "NUMBER_AND_DRAW_REQUIRED")
	}

	st, err := services.EvaluateRisk(drawID, drawDate, number)
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Risk evaluated successfully", st)
}
