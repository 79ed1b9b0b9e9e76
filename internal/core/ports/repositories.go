package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/geostore/internal/core/domain"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// FeatureRepository persists features. Geometries cross the boundary as
// EWKB so the repository never interprets coordinates itself.
type FeatureRepository interface {
	Insert(ctx context.Context, f *domain.Feature, ewkb []byte) error
	// GetByID returns the feature row and its stored EWKB.
	GetByID(ctx context.Context, id string) (*domain.Feature, []byte, error)
	Nearest(ctx context.Context, lon, lat float64, srid uint32, limit int) ([]FeatureRow, error)
	// List returns a page of features, newest first, and the total count.
	List(ctx context.Context, offset, limit int) ([]FeatureRow, int, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// FeatureRow pairs a feature with its undecoded geometry.
type FeatureRow struct {
	Feature domain.Feature
	EWKB    []byte
}
