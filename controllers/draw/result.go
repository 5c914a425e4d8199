package draw

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

func Result(c *fiber.Ctx) error {
	drawID := c.Query("draw_id")
	drawDate := c.Query("draw_date")
	if drawID == "" || drawDate == "" {
		return helpers.JSONError(c, "DRAW_ID_AND_DATE_REQUIRED")
	}

	dr, err := services.GetDrawResult(drawID, drawDate)
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Draw result retrieved successfully", dr)
}
