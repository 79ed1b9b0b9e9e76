package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/core/ports"
)

// FeatureRepo implements ports.FeatureRepository with pgx. Geometries go
// in through ST_GeomFromEWKB and come out through ST_AsEWKB, so PostGIS
// never sees or produces WKT.
type FeatureRepo struct {
	db *DB
}

// NewFeatureRepo creates a new FeatureRepo.
func NewFeatureRepo(db *DB) *FeatureRepo {
	return &FeatureRepo{db: db}
}

// Insert stores f and fills in its generated ID and creation time.
func (r *FeatureRepo) Insert(ctx context.Context, f *domain.Feature, data []byte) error {
	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO features (name, srid, geom, properties)
		VALUES ($1, $2, ST_GeomFromEWKB($3), $4)
		RETURNING id, created_at
	`, f.Name, int64(f.SRID), Geometry(data), props).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feature: %w", err)
	}
	return nil
}

// GetByID returns a feature and its stored EWKB.
func (r *FeatureRepo) GetByID(ctx context.Context, id string) (*domain.Feature, []byte, error) {
	var (
		f    domain.Feature
		srid int64
		geom Geometry
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, srid, ST_AsEWKB(geom), COALESCE(properties, '{}'), created_at
		FROM features WHERE id = $1
	`, id).Scan(&f.ID, &f.Name, &srid, &geom, &f.Properties, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("feature %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	f.SRID = uint32(srid)
	return &f, geom, nil
}

// Nearest returns features of the given SRID ordered by the PostGIS <->
// distance operator, which uses the GiST index on geom.
func (r *FeatureRepo) Nearest(ctx context.Context, lon, lat float64, srid uint32, limit int) ([]ports.FeatureRow, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, srid, ST_AsEWKB(geom), COALESCE(properties, '{}'), created_at,
		       ST_Distance(geom, ST_SetSRID(ST_MakePoint($1, $2), $3)) AS distance
		FROM features
		WHERE srid = $3
		ORDER BY geom <-> ST_SetSRID(ST_MakePoint($1, $2), $3)
		LIMIT $4
	`, lon, lat, int64(srid), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.FeatureRow
	for rows.Next() {
		var (
			row  ports.FeatureRow
			sr   int64
			geom Geometry
			dist float64
		)
		if err := rows.Scan(
			&row.Feature.ID, &row.Feature.Name, &sr, &geom,
			&row.Feature.Properties, &row.Feature.CreatedAt, &dist,
		); err != nil {
			return nil, err
		}
		row.Feature.SRID = uint32(sr)
		row.Feature.Distance = &dist
		row.EWKB = geom
		out = append(out, row)
	}
	return out, rows.Err()
}

// List returns a page of features ordered by creation time, newest first.
func (r *FeatureRepo) List(ctx context.Context, offset, limit int) ([]ports.FeatureRow, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM features`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, srid, ST_AsEWKB(geom), COALESCE(properties, '{}'), created_at
		FROM features
		ORDER BY created_at DESC, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ports.FeatureRow
	for rows.Next() {
		var (
			row  ports.FeatureRow
			sr   int64
			geom Geometry
		)
		if err := rows.Scan(
			&row.Feature.ID, &row.Feature.Name, &sr, &geom,
			&row.Feature.Properties, &row.Feature.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		row.Feature.SRID = uint32(sr)
		row.EWKB = geom
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// Delete removes a feature by ID.
func (r *FeatureRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("feature %s: %w", id, ports.ErrNotFound)
	}
	return nil
}

// Ping checks connectivity.
func (r *FeatureRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
