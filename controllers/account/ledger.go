package account

import (
	"strconv"

	"tiempos/helpers"
	"tiempos/services"

	"github.com/gofiber/fiber/v2"
)

func Ledger(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return helpers.JSONError(c, "ACCOUNT_CODE_REQUIRED")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))

	entries, total, err := services.LedgerHistory(code, page, pageSize)
	if err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Ledger retrieved successfully", fiber.Map{
		"account_code": code,
		"page":         page,
		"page_size":    pageSize,
		"total":        total,
		"entries":      entries,
	})
}
