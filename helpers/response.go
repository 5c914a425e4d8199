package helpers

import (
	"errors"

	"tiempos/svcerr"

	"github.com/gofiber/fiber/v2"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

// JSONAppError maps a service error onto the response envelope with an
// appropriate HTTP status.
func JSONAppError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, svcerr.ErrAccountNotFound), errors.Is(err, svcerr.ErrBetNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, svcerr.ErrServiceUnavailable):
		status = fiber.StatusServiceUnavailable
	case !svcerr.IsBusiness(err):
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": svcerr.Code(err),
		"data":    nil,
	})
}
