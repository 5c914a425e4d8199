package account

import (
	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

func Balance(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return helpers.JSONError(c, "ACCOUNT_CODE_REQUIRED")
	}

	acc, err := services.GetAccount(code)
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Balance retrieved successfully", fiber.Map{
		"account_code": acc.AccountCode,
		"balance":      acc.Balance,
		"status":       acc.Status,
	})
}
