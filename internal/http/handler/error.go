package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/http/middleware"
	"ocrapi/internal/service"
)

// errorPayload is the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts the request id stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking
// internal details. code is the machine-readable short form ("NOT_FOUND",
// "ALREADY_EXISTS"), message the human-readable safe text.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// writeServiceError maps the service layer's sentinel errors onto the error
// envelope. Anything unmapped is an internal error; the detail stays in the
// logs, not the response.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "document id is required")
	case errors.Is(err, service.ErrBodyNil):
		return writeError(c, fiber.StatusBadRequest, "BODY_REQUIRED", "request body is required")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrConflict):
		return writeError(c, fiber.StatusConflict, "ALREADY_EXISTS", "document already exists")
	case errors.Is(err, service.ErrJobIDMissing):
		return writeError(c, fiber.StatusConflict, "NO_JOB_ID", "document was never submitted")
	case errors.Is(err, service.ErrUnknownTerminalStatus):
		return writeError(c, fiber.StatusBadRequest, "UNKNOWN_STATUS", "unrecognized terminal status")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses for errors escaping the handlers (404s, method mismatches).
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
