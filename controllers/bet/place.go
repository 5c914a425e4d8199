package bet

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

type PlaceBetRequest struct {
	AccountCode string `json:"account_code"`
	Number      string `json:"number"`
	Amount      int64  `json:"amount"`
	DrawID      string `json:"draw_id"`
	DrawDate    string `json:"draw_date"`
	Mode        string `json:"mode"`
}

func Place(c *fiber.Ctx) error {
	var req PlaceBetRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	if req.AccountCode == "" || req.Number == "" || req.DrawID == "" || req.DrawDate == "" {
		return helpers.JSONError(c, "ACCOUNT_NUMBER_AND_DRAW_REQUIRED")
	}
	if req.Amount <= 0 {
		return helpers.JSONError(c, "AMOUNT_MUST_BE_POSITIVE")
	}

	actorID, _ := c.Locals("actor_id").(string)

	placed, err := services.PlaceBet(services.PlaceBetInput{
		ActorID:     actorID,
		AccountCode: req.AccountCode,
		Number:      req.Number,
		Amount:      req.Amount,
		DrawID:      req.DrawID,
		DrawDate:    req.DrawDate,
		Mode:        req.Mode,
	})
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Bet placed successfully", fiber.Map{
		"ticket_code": placed.TicketCode,
		"number":      placed.Number,
		"amount":      placed.Amount,
		"draw_id":     placed.DrawID,
		"draw_date":   placed.DrawDate,
		"mode":        placed.Mode,
		"status":      placed.Status,
	})
}
