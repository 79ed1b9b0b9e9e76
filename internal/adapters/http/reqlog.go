package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geostore/internal/pkg/logging"
)

// RequestIDLogMiddleware stores a logger carrying the Fiber request ID in the
// user context, where services pick it up with logging.FromContext.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, ok := c.Locals("requestid").(string)
		if !ok || rid == "" {
			return c.Next()
		}

		l := slog.Default().With("request_id", rid)
		c.SetUserContext(logging.WithLogger(c.UserContext(), l))
		return c.Next()
	}
}
