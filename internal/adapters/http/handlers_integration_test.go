//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	handler "github.com/samirrijal/geostore/internal/adapters/http"
	"github.com/samirrijal/geostore/internal/adapters/postgres"
	"github.com/samirrijal/geostore/internal/core/usecases"
	"github.com/samirrijal/geostore/internal/pkg/config"
)

// setupTestDB connects to the PostGIS database named by GEOSTORE_DATABASE_*.
// The schema from cmd/migrate must already be applied.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	cfg, err := config.Load("geostore-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

// setupTestDeps creates dependencies with a real DB, no cache and no NATS.
func setupTestDeps(db *postgres.DB) *handler.Dependencies {
	return &handler.Dependencies{
		Features: usecases.NewFeatureService(postgres.NewFeatureRepo(db), nil, nil, usecases.FeatureServiceConfig{}),
		Codec:    usecases.NewCodecService(0),
		DB:       db,
	}
}

func TestFeatureLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	db := setupTestDB(t)
	app := setupApp(setupTestDeps(db))

	created := doJSON(t, app, "POST", "/v1/features", `{
		"name": "integration line",
		"geometry": {"type": "LineString", "coordinates": [[-2.93, 43.26, 10], [-2.92, 43.27, 12]]}
	}`)
	if created.Status != 201 {
		t.Fatalf("create: expected 201, got %d: %s", created.Status, created.Body)
	}
	var f handler.FeatureResponse
	if err := json.Unmarshal(created.Body, &f); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = postgres.NewFeatureRepo(db).Delete(context.Background(), f.ID) })
	if f.Dimension != "Z" {
		t.Errorf("expected Z dimension, got %s", f.Dimension)
	}

	got := doJSON(t, app, "GET", "/v1/features/"+f.ID, "")
	if got.Status != 200 {
		t.Fatalf("get: expected 200, got %d: %s", got.Status, got.Body)
	}
	var fetched handler.FeatureResponse
	json.Unmarshal(got.Body, &fetched)
	if fetched.EWKB != f.EWKB {
		t.Errorf("EWKB changed through PostGIS: %s != %s", fetched.EWKB, f.EWKB)
	}

	nearest := doJSON(t, app, "GET", "/v1/features/nearest?lon=-2.93&lat=43.26&limit=1", "")
	if nearest.Status != 200 {
		t.Fatalf("nearest: expected 200, got %d: %s", nearest.Status, nearest.Body)
	}

	if del := doJSON(t, app, "DELETE", "/v1/features/"+f.ID, ""); del.Status != 204 {
		t.Fatalf("delete: expected 204, got %d", del.Status)
	}
	if again := doJSON(t, app, "GET", "/v1/features/"+f.ID, ""); again.Status != 404 {
		t.Errorf("expected 404 after delete, got %d", again.Status)
	}
}

func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	app := setupApp(setupTestDeps(setupTestDB(t)))
	if resp := doJSON(t, app, "GET", "/v1/ready", ""); resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
}
