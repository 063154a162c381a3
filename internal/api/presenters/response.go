package presenters

import (
	"errors"

	"foodgram/domain"

	"github.com/gofiber/fiber/v2"
)

func SuccessResponse(c *fiber.Ctx, data any, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	payload := fiber.Map{
		"success": false,
		"message": message,
	}

	var validationErrs domain.ValidationErrors
	if errors.As(err, &validationErrs) {
		payload["errors"] = validationErrs
	} else if err != nil {
		payload["error"] = err.Error()
	}

	return c.Status(status).JSON(payload)
}
