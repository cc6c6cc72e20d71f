package handler

import (
	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/service"
)

// FetchResult delivers a derived artifact. The Accept header selects the
// representation (text/plain for extracted text, anything else for the raw
// layout result); large or unknown-size artifacts are answered with a
// redirect to a presigned URL instead of an inline body.
func FetchResult(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Fetch(c.UserContext(), c.Params("id"), c.Get(fiber.HeaderAccept))
		if err != nil {
			return writeServiceError(c, err)
		}

		if res.Redirect {
			return c.Redirect(res.Location, fiber.StatusFound)
		}

		if res.Info.ContentType != "" {
			c.Set(fiber.HeaderContentType, res.Info.ContentType)
		}
		return c.SendStream(res.Body, int(res.Info.Size))
	}
}
