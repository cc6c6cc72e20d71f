package handler

import (
	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/queue"
	"ocrapi/internal/service"
)

// Notification accepts an engine completion message over HTTP, for deployments
// where the engine pushes to a webhook instead of a queue. The payload is the
// same shape the queue consumer reads.
func Notification(svc service.CompletionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		msg, err := queue.DecodeMessage(c.Body())
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_MESSAGE", "malformed completion message")
		}

		ts, err := svc.Complete(c.UserContext(), msg.DocumentID(), msg.Status)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"document_id": msg.DocumentID(),
			"status":      ts.Status(),
		})
	}
}
