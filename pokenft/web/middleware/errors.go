package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/pokenft/pokenft/pokenft/web/apiutil"
)

// CustomErrorHandler handles errors that escape the handlers, including
// panics surfaced by the recover middleware. Everything is JSON; this
// backend serves no HTML.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("Unhandled request error",
			slog.String("type", "api"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", code),
			slog.String("error", err.Error()),
		)
	}

	return apiutil.SendError(c, code, "REQUEST_FAILED", message, nil)
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}
