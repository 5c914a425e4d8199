package account

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

type DepositRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

// Deposit funds an account; a negative amount withdraws.
func Deposit(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return helpers.JSONError(c, "ACCOUNT_CODE_REQUIRED")
	}

	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.Amount == 0 {
		return helpers.JSONError(c, "AMOUNT_REQUIRED")
	}

	actorID, _ := c.Locals("actor_id").(string)

	acc, err := services.AdjustBalance(actorID, code, req.Amount, req.Note)
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Balance updated successfully", fiber.Map{
		"account_code": acc.AccountCode,
		"balance":      acc.Balance,
	})
}
