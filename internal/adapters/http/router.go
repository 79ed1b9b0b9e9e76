package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geostore/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// deprecatedRoutes lists endpoints kept for older clients.
var deprecatedRoutes = []DeprecatedRoute{
	{
		Path:        "/v1/features/nearby",
		SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/features/nearest",
	},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited",
				"too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(deprecatedRoutes))

	// Health and readiness run without the request timeout.
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/features", timeout.NewWithContext(ListFeaturesHandler(deps), requestTimeout))
	v1.Post("/features", timeout.NewWithContext(CreateFeatureHandler(deps), requestTimeout))
	v1.Get("/features/nearest", timeout.NewWithContext(NearestFeaturesHandler(deps), requestTimeout))
	v1.Get("/features/nearby", timeout.NewWithContext(NearestFeaturesHandler(deps), requestTimeout))
	v1.Get("/features/:id", timeout.NewWithContext(GetFeatureHandler(deps), requestTimeout))
	v1.Get("/features/:id/ewkb", timeout.NewWithContext(GetFeatureEWKBHandler(deps), requestTimeout))
	v1.Delete("/features/:id", timeout.NewWithContext(DeleteFeatureHandler(deps), requestTimeout))

	// Stateless codec endpoints
	v1.Post("/ewkb/inspect", InspectHandler(deps))
	v1.Post("/ewkb/encode", EncodeHandler(deps))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, deps.DocsPath)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
