package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"paperapi/internal/http/middleware"
)

// errorPayload is the body of every non-2xx paper API response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	rid, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return rid
}

// writeError writes the envelope. code is machine-readable (INVALID_ID, TITLE_REQUIRED, ...);
// message must never carry internal error text.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// frameworkErrors covers statuses raised by fiber itself rather than by a paper handler.
var frameworkErrors = map[int]errorEnvelope{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {"BODY_TOO_LARGE", "request body too large"},
	fiber.StatusUnsupportedMediaType:  {"UNSUPPORTED_MEDIA_TYPE", "request body must be JSON"},
}

// ErrorHandler is the app-wide fallback for errors returned instead of written.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		if e, ok := frameworkErrors[status]; ok {
			return writeError(c, status, e.Code, e.Message)
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}
