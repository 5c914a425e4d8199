package middlewares

import (
	"tiempos/database"
	"tiempos/helpers"
	"tiempos/models"

	"github.com/gofiber/fiber/v2"
)

func OperatorAuth(c *fiber.Ctx) error {
	operatorCode := c.Get("X-Operator-Code")
	secretKey := c.Get("X-Secret-Key")

	if operatorCode == "" || secretKey == "" {
		return helpers.JSONError(c, "OPERATOR_CODE_AND_SECRET_REQUIRED")
	}

	var operator models.Operator
	if err := database.DB.
		Where("operator_code = ? AND secret_key = ? AND is_active = true", operatorCode, secretKey).
		First(&operator).Error; err != nil {
		return helpers.JSONError(c, "INVALID_OPERATOR_CREDENTIALS")
	}

	c.Locals("operator", operator)
	c.Locals("actor_id", operator.OperatorCode)
	return c.Next()
}
