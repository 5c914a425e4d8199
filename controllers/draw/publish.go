package draw

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

type PublishResultRequest struct {
	DrawID          string `json:"draw_id"`
	DrawDate        string `json:"draw_date"`
	WinningNumber   string `json:"winning_number"`
	IsReventado     bool   `json:"is_reventado"`
	ReventadoNumber string `json:"reventado_number"`
}

// Publish receives the official result for a draw window and triggers
// settlement. Re-publishing the same result is a no-op.
func Publish(c *fiber.Ctx) error {
	var req PublishResultRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	if req.DrawID == "" || req.DrawDate == "" || req.WinningNumber == "" {
		return helpers.JSONError(c, "DRAW_AND_WINNING_NUMBER_REQUIRED")
	}

	actorID, _ := c.Locals("actor_id").(string)

	out, err := services.SettleDraw(services.SettleDrawInput{
		ActorID:         actorID,
		DrawID:          req.DrawID,
		DrawDate:        req.DrawDate,
		WinningNumber:   req.WinningNumber,
		IsReventado:     req.IsReventado,
		ReventadoNumber: req.ReventadoNumber,
	})
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	message := "Draw settled successfully"
	if out.AlreadyApplied {
		message = "Settlement already applied"
	}
	return helpers.JSONSuccess(c, message, out)
}
