package auditlog

import (
	"strconv"

	"tiempos/database"
	"tiempos/helpers"
	"tiempos/models"

	"github.com/gofiber/fiber/v2"
)

// Events lists recent audit events, newest first, optionally filtered by
// action or severity.
func Events(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	q := database.DB.Model(&models.AuditEvent{}).Order("id DESC").Limit(limit)
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if severity := c.Query("severity"); severity != "" {
		q = q.Where("severity = ?", severity)
	}

	var events []models.AuditEvent
	if err := q.Find(&events).Error; err != nil {
		return helpers.JSONAppError(c, err)
	}

	return helpers.JSONSuccess(c, "Audit events retrieved successfully", events)
}
