package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/core/ewkb"
	"github.com/samirrijal/geostore/internal/core/ports"
	"github.com/samirrijal/geostore/internal/pkg/logging"
	"github.com/samirrijal/geostore/internal/pkg/metrics"
	"github.com/samirrijal/geostore/internal/pkg/telemetry"
)

// ErrFeatureNotFound is returned when no feature has the requested ID.
var ErrFeatureNotFound = errors.New("feature not found")

// ErrInvalidFeature wraps input validation failures.
var ErrInvalidFeature = errors.New("invalid feature")

const (
	maxNearestLimit     = 100
	defaultNearestLimit = 10
	maxListLimit        = 200
	defaultListLimit    = 50
)

// FeatureServiceConfig carries the tunables the service reads from config.
type FeatureServiceConfig struct {
	DefaultSRID     uint32
	CacheTTLSeconds int
}

// CreateFeatureInput describes a new feature. Exactly one of Geometry and
// EWKB must be set; SRID zero means the configured default.
type CreateFeatureInput struct {
	Name       string
	SRID       uint32
	Geometry   domain.Geometry
	EWKB       []byte
	Properties map[string]any
}

// FeatureService stores and retrieves features, keeping geometries as EWKB.
type FeatureService struct {
	repo      ports.FeatureRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	cfg       FeatureServiceConfig
}

// NewFeatureService creates a new FeatureService. cache and publisher may be nil.
func NewFeatureService(
	repo ports.FeatureRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	cfg FeatureServiceConfig,
) *FeatureService {
	if cfg.DefaultSRID == 0 {
		cfg.DefaultSRID = domain.SRIDWGS84
	}
	return &FeatureService{repo: repo, cache: cache, publisher: publisher, cfg: cfg}
}

// cachedFeature is the cache entry for a feature: the row plus raw EWKB.
type cachedFeature struct {
	Feature domain.Feature `json:"feature"`
	EWKB    []byte         `json:"ewkb"`
}

func featureCacheKey(id string) string { return "feature:" + id }

// Create validates the geometry, stores it and announces it.
func (s *FeatureService) Create(ctx context.Context, in CreateFeatureInput) (*domain.Feature, error) {
	ctx, span := telemetry.Tracer("usecases").Start(ctx, "FeatureService.Create")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidFeature)
	}
	if (in.Geometry == nil) == (len(in.EWKB) == 0) {
		return nil, fmt.Errorf("%w: exactly one of geometry and ewkb is required", ErrInvalidFeature)
	}
	srid := in.SRID
	if srid == 0 {
		srid = s.cfg.DefaultSRID
	}
	span.SetAttributes(telemetry.AttrSRID.Int64(int64(srid)))

	g := in.Geometry
	if g == nil {
		decoded, err := s.decode(ctx, in.EWKB, srid)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode")
			return nil, err
		}
		g = decoded
	}

	// Re-encoding normalises big-endian or ISO input to the stored form.
	data, err := ewkb.EncodeGeometry(g, srid)
	metrics.ObserveCodec("encode", g.Type().String(), len(data), err)
	if err != nil {
		logging.FromContext(ctx).Warn("encode geometry failed",
			"srid", srid, "type", g.Type().String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode")
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrGeometryType.String(g.Type().String()),
		telemetry.AttrPayloadBytes.Int(len(data)),
	)

	f := &domain.Feature{
		Name:       name,
		SRID:       srid,
		Geometry:   g,
		Properties: in.Properties,
	}
	if err := s.repo.Insert(ctx, f, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert")
		return nil, fmt.Errorf("insert feature: %w", err)
	}
	span.SetAttributes(telemetry.AttrFeatureID.String(f.ID))

	s.store(ctx, f, data)
	s.publish(ctx, &domain.FeatureEvent{
		Kind:       domain.FeatureCreated,
		FeatureID:  f.ID,
		Name:       f.Name,
		SRID:       f.SRID,
		EWKB:       ewkb.EncodeHex(data),
		OccurredAt: time.Now().UTC(),
	})

	return f, nil
}

// Get returns a feature with its decoded geometry, reading through the cache.
func (s *FeatureService) Get(ctx context.Context, id string) (*domain.Feature, error) {
	ctx, span := telemetry.Tracer("usecases").Start(ctx, "FeatureService.Get")
	defer span.End()
	span.SetAttributes(telemetry.AttrFeatureID.String(id))

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, featureCacheKey(id)); err == nil {
			var entry cachedFeature
			if err := json.Unmarshal(raw, &entry); err == nil {
				if g, err := s.decode(ctx, entry.EWKB, entry.Feature.SRID); err == nil {
					metrics.CacheHits.WithLabelValues("feature").Inc()
					span.SetAttributes(telemetry.AttrCacheHit.Bool(true))
					f := entry.Feature
					f.Geometry = g
					return &f, nil
				}
			}
		}
		metrics.CacheMisses.WithLabelValues("feature").Inc()
	}
	span.SetAttributes(telemetry.AttrCacheHit.Bool(false))

	f, data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrFeatureNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get feature: %w", err)
	}

	g, err := s.decode(ctx, data, f.SRID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode")
		return nil, err
	}
	f.Geometry = g

	s.store(ctx, f, data)
	return f, nil
}

// Nearest returns up to limit features ordered by distance from (lon, lat),
// measured in the units of srid.
func (s *FeatureService) Nearest(ctx context.Context, lon, lat float64, srid uint32, limit int) ([]domain.Feature, error) {
	ctx, span := telemetry.Tracer("usecases").Start(ctx, "FeatureService.Nearest")
	defer span.End()

	if limit <= 0 {
		limit = defaultNearestLimit
	}
	if limit > maxNearestLimit {
		limit = maxNearestLimit
	}
	if srid == 0 {
		srid = s.cfg.DefaultSRID
	}
	span.SetAttributes(telemetry.AttrSRID.Int64(int64(srid)))

	rows, err := s.repo.Nearest(ctx, lon, lat, srid, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("nearest features: %w", err)
	}

	return s.decodeRows(ctx, rows)
}

// List returns a page of features and the total number stored.
func (s *FeatureService) List(ctx context.Context, offset, limit int) ([]domain.Feature, int, error) {
	ctx, span := telemetry.Tracer("usecases").Start(ctx, "FeatureService.List")
	defer span.End()

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	rows, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("list features: %w", err)
	}
	features, err := s.decodeRows(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return features, total, nil
}

// Delete removes a feature, evicts it from the cache and announces it.
func (s *FeatureService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.Tracer("usecases").Start(ctx, "FeatureService.Delete")
	defer span.End()
	span.SetAttributes(telemetry.AttrFeatureID.String(id))

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrFeatureNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("delete feature: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, featureCacheKey(id))
	}
	s.publish(ctx, &domain.FeatureEvent{
		Kind:       domain.FeatureDeleted,
		FeatureID:  id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Ping checks the backing repository.
func (s *FeatureService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *FeatureService) decode(ctx context.Context, data []byte, srid uint32) (domain.Geometry, error) {
	g, err := ewkb.DecodeGeometry(data, srid)
	typ := "unknown"
	if g != nil {
		typ = g.Type().String()
	}
	metrics.ObserveCodec("decode", typ, len(data), err)
	if err != nil {
		var sridErr *ewkb.SRIDError
		if errors.As(err, &sridErr) {
			metrics.SRIDMismatches.Inc()
		}
		logging.FromContext(ctx).Warn("decode geometry failed",
			"srid", srid, "type", typ, "error", err)
		return nil, err
	}
	return g, nil
}

func (s *FeatureService) decodeRows(ctx context.Context, rows []ports.FeatureRow) ([]domain.Feature, error) {
	features := make([]domain.Feature, 0, len(rows))
	for _, row := range rows {
		g, err := s.decode(ctx, row.EWKB, row.Feature.SRID)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", row.Feature.ID, err)
		}
		f := row.Feature
		f.Geometry = g
		features = append(features, f)
	}
	return features, nil
}

func (s *FeatureService) store(ctx context.Context, f *domain.Feature, data []byte) {
	if s.cache == nil || s.cfg.CacheTTLSeconds <= 0 {
		return
	}
	raw, err := json.Marshal(cachedFeature{Feature: *f, EWKB: data})
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, featureCacheKey(f.ID), raw, s.cfg.CacheTTLSeconds)
}

func (s *FeatureService) publish(ctx context.Context, event *domain.FeatureEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFeatureEvent(ctx, event); err != nil {
		slog.Warn("publish feature event", "kind", event.Kind, "feature_id", event.FeatureID, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(event.Kind)).Inc()
}
