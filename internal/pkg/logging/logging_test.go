package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/samirrijal/geostore/internal/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("decoded", "srid", 4326)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if rec["msg"] != "decoded" || rec["srid"] != float64(4326) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logging.New(&buf, "debug", "text").Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, "info", "json").With("request_id", "abc")
	ctx := logging.WithLogger(context.Background(), l)

	logging.FromContext(ctx).Info("x")
	if !strings.Contains(buf.String(), `"request_id":"abc"`) {
		t.Errorf("expected request id in output, got %q", buf.String())
	}
	if logging.FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger without one in context")
	}
}
