package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geostore",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geostore",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geostore",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Codec metrics
	CodecOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geostore",
		Subsystem: "codec",
		Name:      "operations_total",
		Help:      "EWKB encode/decode operations by geometry type and result",
	}, []string{"op", "type", "result"})

	CodecPayloadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geostore",
		Subsystem: "codec",
		Name:      "payload_bytes",
		Help:      "Size of EWKB payloads handled by the codec",
		Buckets:   prometheus.ExponentialBuckets(21, 4, 8),
	}, []string{"op"})

	SRIDMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geostore",
		Subsystem: "codec",
		Name:      "srid_mismatches_total",
		Help:      "Decodes rejected because the embedded SRID differed from the expected one",
	})

	// Event metrics
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geostore",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Feature events published to NATS",
	}, []string{"kind"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geostore",
		Subsystem: "events",
		Name:      "consumed_total",
		Help:      "Feature events consumed from NATS by result",
	}, []string{"kind", "result"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geostore",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geostore",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geostore",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geostore",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geostore",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geostore",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// ObserveCodec records one codec call. typ is the geometry type name, or
// "unknown" when decoding failed before the header was understood.
func ObserveCodec(op, typ string, size int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CodecOperations.WithLabelValues(op, typ, result).Inc()
	if size > 0 {
		CodecPayloadBytes.WithLabelValues(op).Observe(float64(size))
	}
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the gauges need.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies pool statistics into the gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
