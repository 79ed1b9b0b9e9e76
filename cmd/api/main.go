package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/geostore/internal/adapters/http"
	natsadapter "github.com/samirrijal/geostore/internal/adapters/nats"
	"github.com/samirrijal/geostore/internal/adapters/postgres"
	"github.com/samirrijal/geostore/internal/adapters/valkey"
	"github.com/samirrijal/geostore/internal/core/ports"
	"github.com/samirrijal/geostore/internal/core/usecases"
	"github.com/samirrijal/geostore/internal/pkg/config"
	"github.com/samirrijal/geostore/internal/pkg/logging"
	"github.com/samirrijal/geostore/internal/pkg/metrics"
	"github.com/samirrijal/geostore/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geostore-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if v, err := db.PostGISVersion(ctx); err != nil {
		slog.Warn("postgis not available, run migrate up", "error", err)
	} else {
		slog.Info("connected to database", "postgis", v)
	}
	go reportPoolStats(ctx, db)

	// Cache and events are optional; the store works without them.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Separate core connection for the WebSocket relay.
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Drain()
	}

	featureSvc := usecases.NewFeatureService(postgres.NewFeatureRepo(db), cacheSvc, publisher, usecases.FeatureServiceConfig{
		DefaultSRID:     cfg.Codec.DefaultSRID,
		CacheTTLSeconds: cfg.Codec.CacheTTLSeconds,
	})

	deps := &http.Dependencies{
		Features:         featureSvc,
		Codec:            usecases.NewCodecService(cfg.Codec.DefaultSRID),
		NATS:             natsConn,
		DB:               db,
		Cache:            cache,
		MaxDecimalDigits: cfg.Codec.MaxDecimalDigits,
		DocsPath:         cfg.Server.DocsPath,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Codec.MaxBodyBytes,
		AppName:      "geostore",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "default_srid", cfg.Codec.DefaultSRID)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the connection pool gauges until ctx ends.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
