package telemetry_test

import (
	"context"
	"testing"

	"github.com/samirrijal/geostore/internal/pkg/telemetry"
)

func TestTracer_NoopBeforeInit(t *testing.T) {
	_, span := telemetry.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	span.SetAttributes(telemetry.AttrSRID.Int64(4326))
	if span.SpanContext().IsValid() {
		t.Error("expected no-op span before InitTracer")
	}
}

func TestInitTracer_ReturnsShutdown(t *testing.T) {
	// The gRPC exporter connects lazily, so an unreachable address still
	// yields a provider.
	shutdown, err := telemetry.InitTracer(context.Background(), "geostore-test", "127.0.0.1:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := telemetry.Tracer("test").Start(context.Background(), "op")
	if !span.SpanContext().IsValid() {
		t.Error("expected a recording span after InitTracer")
	}
	span.End()
	shutdown()
}
