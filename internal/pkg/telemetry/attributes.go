package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys shared by the feature and codec services.
const (
	AttrFeatureID    = attribute.Key("geostore.feature.id")
	AttrSRID         = attribute.Key("geostore.srid")
	AttrGeometryType = attribute.Key("geostore.geometry.type")
	AttrDimension    = attribute.Key("geostore.geometry.dimension")
	AttrPayloadBytes = attribute.Key("geostore.ewkb.bytes")
	AttrCacheHit     = attribute.Key("geostore.cache.hit")
)
