package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samirrijal/geostore/internal/adapters/geojson"
	natsadapter "github.com/samirrijal/geostore/internal/adapters/nats"
	"github.com/samirrijal/geostore/internal/adapters/postgres"
	"github.com/samirrijal/geostore/internal/core/ports"
	"github.com/samirrijal/geostore/internal/core/usecases"
	"github.com/samirrijal/geostore/internal/pkg/config"
	"github.com/samirrijal/geostore/internal/pkg/logging"
)

// maxInFlight bounds concurrent inserts.
const maxInFlight = 4

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: ingestor <features.geojson> [srid]")
	}
	path := os.Args[1]

	cfg, err := config.Load("geostore-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	srid := cfg.Codec.DefaultSRID
	if len(os.Args) > 2 {
		v, err := strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil || v == 0 {
			log.Fatalf("invalid srid %q", os.Args[2])
		}
		srid = uint32(v)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	features, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), maxInFlight)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, ingesting without events", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	svc := usecases.NewFeatureService(postgres.NewFeatureRepo(db), nil, publisher, usecases.FeatureServiceConfig{
		DefaultSRID: cfg.Codec.DefaultSRID,
	})

	slog.Info("ingesting", "file", path, "features", len(features), "srid", srid)
	start := time.Now()

	var (
		wg     sync.WaitGroup
		stored atomic.Int64
		failed atomic.Int64
		sem    = make(chan struct{}, maxInFlight)
	)
	for i, f := range features {
		wg.Add(1)
		go func(i int, f geojson.Feature) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			created, err := svc.Create(ctx, usecases.CreateFeatureInput{
				Name:       featureName(i, f),
				SRID:       srid,
				Geometry:   f.Geometry,
				Properties: f.Properties,
			})
			if err != nil {
				failed.Add(1)
				slog.Error("feature rejected", "index", i, "source_id", f.ID, "error", err)
				return
			}
			stored.Add(1)
			slog.Debug("feature stored", "index", i, "id", created.ID, "type", f.Geometry.Type().String())
		}(i, f)
	}
	wg.Wait()

	slog.Info("ingestion complete",
		"stored", stored.Load(), "failed", failed.Load(), "elapsed", time.Since(start).String())
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

// featureName prefers properties.name, then the GeoJSON id.
func featureName(i int, f geojson.Feature) string {
	if name, ok := f.Properties["name"].(string); ok && name != "" {
		return name
	}
	if f.ID != "" {
		return f.ID
	}
	return fmt.Sprintf("feature-%d", i+1)
}
