package operator

import (
	"strings"

	"tiempos/database"
	"tiempos/helpers"
	"tiempos/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RegisterOperatorRequest struct {
	Name string `json:"name"`
}

// Register creates a sales-channel operator with generated credentials.
func Register(c *fiber.Ctx) error {
	var req RegisterOperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.Name == "" {
		return helpers.JSONError(c, "NAME_REQUIRED")
	}

	operatorCode := "OP-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	secretKey := uuid.New().String()

	op := models.Operator{
		OperatorCode: operatorCode,
		SecretKey:    secretKey,
		Name:         req.Name,
		IsActive:     true,
	}
	if err := database.DB.Create(&op).Error; err != nil {
		return helpers.JSONError(c, "FAILED_TO_REGISTER_OPERATOR")
	}

	return helpers.JSONSuccess(c, "Operator registered successfully", fiber.Map{
		"operator_code": op.OperatorCode,
		"secret_key":    op.SecretKey,
		"name":          op.Name,
	})
}
