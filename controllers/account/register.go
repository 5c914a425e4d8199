package account

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

type RegisterAccountRequest struct {
	AccountCode string `json:"account_code"`
	DisplayName string `json:"display_name"`
}

func Register(c *fiber.Ctx) error {
	var req RegisterAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	if req.DisplayName == "" {
		return helpers.JSONError(c, "DISPLAY_NAME_REQUIRED")
	}

	actorID, _ := c.Locals("actor_id").(string)

	acc, err := services.CreateAccount(services.CreateAccountInput{
		ActorID:     actorID,
		AccountCode: req.AccountCode,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_REGISTER_ACCOUNT")
	}

	return helpers.JSONSuccess(c, "Account registered successfully", fiber.Map{
		"account_code": acc.AccountCode,
		"display_name": acc.DisplayName,
		"balance":      acc.Balance,
		"status":       acc.Status,
	})
}
