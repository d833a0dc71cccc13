package handlers

import (
	"github.com/gofiber/fiber/v3"

	"autoreply/internal/models"
)

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.WebhookResponse{
		Status: "error",
		Error:  message,
	})
}

// jsonOutcome returns a processing result with the given HTTP status code.
func jsonOutcome(c fiber.Ctx, status int, resp models.WebhookResponse) error {
	return c.Status(status).JSON(resp)
}
