package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/samirrijal/geostore/internal/pkg/metrics"
)

func TestObserveCodec(t *testing.T) {
	ok := metrics.CodecOperations.WithLabelValues("decode", "Polygon", "ok")
	failed := metrics.CodecOperations.WithLabelValues("decode", "unknown", "error")
	beforeOK, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	metrics.ObserveCodec("decode", "Polygon", 93, nil)
	metrics.ObserveCodec("decode", "unknown", 0, errors.New("truncated"))

	if got := testutil.ToFloat64(ok) - beforeOK; got != 1 {
		t.Errorf("expected 1 ok decode, got %v", got)
	}
	if got := testutil.ToFloat64(failed) - beforeFailed; got != 1 {
		t.Errorf("expected 1 failed decode, got %v", got)
	}
}

type poolStat struct{ acquired, idle, total int32 }

func (p poolStat) AcquiredConns() int32 { return p.acquired }
func (p poolStat) IdleConns() int32     { return p.idle }
func (p poolStat) TotalConns() int32    { return p.total }

func TestUpdateDBPoolMetrics(t *testing.T) {
	metrics.UpdateDBPoolMetrics(poolStat{acquired: 3, idle: 7, total: 10})

	if got := testutil.ToFloat64(metrics.DBPoolConnsAcquired); got != 3 {
		t.Errorf("acquired = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.DBPoolConnsIdle); got != 7 {
		t.Errorf("idle = %v, want 7", got)
	}
	if got := testutil.ToFloat64(metrics.DBPoolConnsOpen); got != 10 {
		t.Errorf("open = %v, want 10", got)
	}
}

func TestHandler_ExposesCodecMetrics(t *testing.T) {
	metrics.ObserveCodec("encode", "Point", 25, nil)

	app := fiber.New()
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "geostore_codec_operations_total") {
		t.Error("expected geostore_codec_operations_total in /metrics output")
	}
}
