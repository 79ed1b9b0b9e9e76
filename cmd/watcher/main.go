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

	natsadapter "github.com/samirrijal/geostore/internal/adapters/nats"
	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/pkg/config"
	"github.com/samirrijal/geostore/internal/pkg/logging"
	"github.com/samirrijal/geostore/internal/pkg/metrics"
)

func main() {
	cfg, err := config.Load("geostore-watcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	logger := slog.Default().With("component", "watcher")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.Durable)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeFeatureEvents(ctx, func(ctx context.Context, event *domain.FeatureEvent) error {
		return handleEvent(ctx, logger, event)
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	logger.Info("watching feature events", "subject", natsadapter.SubjectAll, "durable", cfg.NATS.Durable)

	// Metrics only.
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", metrics.Handler())
	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			slog.Error("metrics server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down watcher")
	cancel()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		slog.Error("metrics server shutdown", "error", err)
	}
}
