package domain

import "time"

// Feature is a named geometry persisted in the store.
type Feature struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	SRID       uint32         `json:"srid"`
	Geometry   Geometry       `json:"-"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`

	// Distance is set by nearest-neighbour queries, in SRID units.
	Distance *float64 `json:"distance,omitempty"`
}

// FeatureEventKind names what happened to a feature.
type FeatureEventKind string

const (
	FeatureCreated FeatureEventKind = "created"
	FeatureDeleted FeatureEventKind = "deleted"
)

// FeatureEvent is broadcast after a feature changes. EWKB carries the
// geometry in hex form so the payload stays JSON.
type FeatureEvent struct {
	Kind       FeatureEventKind `json:"kind"`
	FeatureID  string           `json:"feature_id"`
	Name       string           `json:"name,omitempty"`
	SRID       uint32           `json:"srid"`
	EWKB       string           `json:"ewkb,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
