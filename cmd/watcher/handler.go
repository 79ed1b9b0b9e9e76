package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/core/ewkb"
	"github.com/samirrijal/geostore/internal/pkg/metrics"
)

// handleEvent logs a feature event. Created events carry hex EWKB which is
// decoded against the event SRID; an undecodable payload is reported and
// acknowledged since redelivery cannot fix it.
func handleEvent(_ context.Context, logger *slog.Logger, event *domain.FeatureEvent) error {
	kind := string(event.Kind)
	if event.Kind != domain.FeatureCreated {
		logger.Info("feature event", "kind", kind, "feature_id", event.FeatureID)
		metrics.EventsConsumed.WithLabelValues(kind, "ok").Inc()
		return nil
	}

	g, err := decodeEventGeometry(event)
	if err != nil {
		logger.Warn("feature event geometry rejected",
			"feature_id", event.FeatureID, "srid", event.SRID, "error", err)
		metrics.EventsConsumed.WithLabelValues(kind, "invalid").Inc()
		return nil
	}

	logger.Info("feature event",
		"kind", kind,
		"feature_id", event.FeatureID,
		"name", event.Name,
		"srid", event.SRID,
		"type", g.Type().String(),
		"dimension", g.Dimension().String(),
		"elements", domain.Len(g),
	)
	metrics.EventsConsumed.WithLabelValues(kind, "ok").Inc()
	return nil
}

func decodeEventGeometry(event *domain.FeatureEvent) (domain.Geometry, error) {
	if event.EWKB == "" {
		return nil, fmt.Errorf("event has no geometry")
	}
	data, err := ewkb.DecodeHex(event.EWKB)
	if err != nil {
		return nil, err
	}
	return ewkb.DecodeGeometry(data, event.SRID)
}
