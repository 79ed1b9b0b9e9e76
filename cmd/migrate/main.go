package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samirrijal/geostore/internal/adapters/postgres"
	"github.com/samirrijal/geostore/internal/pkg/config"
	"github.com/samirrijal/geostore/internal/pkg/logging"
)

// upFiles are applied in order; each must be idempotent.
var upFiles = []string{
	"001_init_extensions.sql",
	"002_features.sql",
}

// downFiles undo upFiles in reverse. Extensions are left installed.
var downFiles = []string{
	"002_features.down.sql",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down> [dir]")
	}
	dir := "migrations"
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	cfg, err := config.Load("geostore-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var files []string
	switch os.Args[1] {
	case "up":
		files = upFiles
	case "down":
		files = downFiles
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}

	for _, f := range files {
		path := filepath.Join(dir, f)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", path, err)
		}
		slog.Info("applied", "file", path)
	}

	attrs := []any{"direction", os.Args[1], "files", len(files)}
	if v, err := db.PostGISVersion(ctx); err == nil {
		attrs = append(attrs, "postgis", v)
	}
	slog.Info("migrations complete", attrs...)
}
