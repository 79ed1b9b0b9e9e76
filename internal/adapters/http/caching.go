package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that the handler left
// without one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() >= 400 {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "no-cache"
	case path == "/metrics":
		return "no-store"
	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	case strings.HasPrefix(path, "/v1/features/nearest"), strings.HasPrefix(path, "/v1/features/nearby"):
		return "public, max-age=30"
	case path == "/v1/features":
		// New features shift every page.
		return "public, max-age=5"
	case strings.HasPrefix(path, "/v1/features/"):
		// Features are immutable once stored; deletion is the only change.
		return "public, max-age=600"
	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=60"
	}
	return ""
}
