package risk

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

type UpsertLimitRequest struct {
	DrawID      string `json:"draw_id"`
	Number      string `json:"number"`
	MaxExposure *int64 `json:"max_exposure"`
}

func UpsertLimit(c *fiber.Ctx) error {
	var req UpsertLimitRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.Number == "" {
		return helpers.JSONError(c, "NUMBER_REQUIRED")
	}

	actorID, _ := c.Locals("actor_id").(string)

	rl, err := services.UpsertRiskLimit(services.RiskLimitInput{
		ActorID:     actorID,
		DrawID:      req.DrawID,
		Number:      req.Number,
		MaxExposure: req.MaxExposure,
	})
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Risk limit saved successfully", rl)
}

func ListLimits(c *fiber.Ctx) error {
	limits, err := services.ListRiskLimits()
	if err != nil {
		return helpers.JSONAppError(c, err)
	}
	return helpers.JSONSuccess(c, "Risk limits retrieved successfully", limits)
}
