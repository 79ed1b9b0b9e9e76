package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geostore/internal/adapters/postgres"
	"github.com/samirrijal/geostore/internal/adapters/valkey"
	"github.com/samirrijal/geostore/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Features *usecases.FeatureService
	Codec    *usecases.CodecService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache

	// MaxDecimalDigits bounds GeoJSON coordinate precision; zero keeps full precision.
	MaxDecimalDigits int
	// DocsPath is the OpenAPI document served at /docs/openapi.yaml.
	DocsPath string
}
