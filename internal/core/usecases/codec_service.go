package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/core/ewkb"
	"github.com/samirrijal/geostore/internal/pkg/geospatial"
	"github.com/samirrijal/geostore/internal/pkg/metrics"
	"github.com/samirrijal/geostore/internal/pkg/telemetry"
)

// Inspection describes a decoded EWKB payload.
type Inspection struct {
	ByteOrder string    `json:"byte_order"`
	Type      string    `json:"type"`
	Dimension string    `json:"dimension"`
	SRID      *uint32   `json:"srid"`
	Elements  int       `json:"elements"`
	Bytes     int       `json:"bytes"`
	BBox      []float64 `json:"bbox,omitempty"`
	// LengthMeters is the great-circle length of the line work, reported
	// only for WGS 84 geometries.
	LengthMeters *float64        `json:"length_m,omitempty"`
	Geometry     domain.Geometry `json:"-"`
}

// CodecService exposes the EWKB codec to transports that have no store.
type CodecService struct {
	defaultSRID uint32
}

// NewCodecService creates a new CodecService.
func NewCodecService(defaultSRID uint32) *CodecService {
	if defaultSRID == 0 {
		defaultSRID = domain.SRIDWGS84
	}
	return &CodecService{defaultSRID: defaultSRID}
}

// Inspect decodes hex EWKB against expectedSRID (zero means the default).
func (s *CodecService) Inspect(ctx context.Context, hexEWKB string, expectedSRID uint32) (*Inspection, error) {
	ctx, span := telemetry.Tracer("usecases").Start(ctx, "CodecService.Inspect")
	defer span.End()

	if expectedSRID == 0 {
		expectedSRID = s.defaultSRID
	}
	data, err := ewkb.DecodeHex(hexEWKB)
	if err != nil {
		metrics.ObserveCodec("decode", "unknown", 0, err)
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrSRID.Int64(int64(expectedSRID)),
		telemetry.AttrPayloadBytes.Int(len(data)),
	)

	h, err := ewkb.PeekHeader(data)
	if err != nil {
		metrics.ObserveCodec("decode", "unknown", len(data), err)
		span.RecordError(err)
		return nil, err
	}

	g, err := ewkb.DecodeGeometry(data, expectedSRID)
	metrics.ObserveCodec("decode", h.Type.String(), len(data), err)
	if err != nil {
		var sridErr *ewkb.SRIDError
		if errors.As(err, &sridErr) {
			metrics.SRIDMismatches.Inc()
		}
		slog.WarnContext(ctx, "inspect failed", "srid", expectedSRID, "type", h.Type.String(), "error", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrGeometryType.String(h.Type.String()),
		telemetry.AttrDimension.String(h.Dimension.String()),
	)

	ins := &Inspection{
		ByteOrder: h.ByteOrder.String(),
		Type:      h.Type.String(),
		Dimension: h.Dimension.String(),
		SRID:      h.SRID,
		Elements:  domain.Len(g),
		Bytes:     len(data),
		Geometry:  g,
	}
	if env, ok := geospatial.Bounds(g); ok {
		ins.BBox = env.BBox()
	}
	if expectedSRID == domain.SRIDWGS84 {
		if length := geospatial.Length(g); length > 0 {
			ins.LengthMeters = &length
		}
	}
	return ins, nil
}

// Encode returns the hex EWKB of g tagged with srid (zero means the default).
func (s *CodecService) Encode(ctx context.Context, g domain.Geometry, srid uint32) (string, error) {
	_, span := telemetry.Tracer("usecases").Start(ctx, "CodecService.Encode")
	defer span.End()

	if srid == 0 {
		srid = s.defaultSRID
	}
	typ := "unknown"
	if g != nil {
		typ = g.Type().String()
	}
	data, err := ewkb.EncodeGeometry(g, srid)
	metrics.ObserveCodec("encode", typ, len(data), err)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return ewkb.EncodeHex(data), nil
}
