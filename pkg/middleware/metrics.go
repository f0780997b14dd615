package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strand-dev/strand/pkg/server"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "strand").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "strand",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for Strand.
type metrics struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	responseBytes     prometheus.Counter
	activeConnections prometheus.Gauge
	handlerPanics     prometheus.Counter
}

// globalMetrics is the singleton metrics instance, created on first call
// to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of dispatched requests",
			ConstLabels: config.ConstLabels,
		}, []string{"host", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Handler duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"host"}),

		responseBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "response_bytes_total",
			Help:        "Total bytes of response bodies produced by handlers",
			ConstLabels: config.ConstLabels,
		}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_connections",
			Help:        "Number of connections currently being handled",
			ConstLabels: config.ConstLabels,
		}),

		handlerPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handler_panics_total",
			Help:        "Total handler panics caught at the task boundary",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that records request metrics.
//
// Metrics collected:
//   - strand_requests_total: counter by host, method, status
//   - strand_request_duration_seconds: handler duration histogram by host
//   - strand_response_bytes_total: counter of handler body bytes
//   - strand_active_connections: gauge, fed via RecordConnOpen/Close
//   - strand_handler_panics_total: counter, fed via RecordPanic
//
// Example:
//
//	r := router.NewRouter()
//	r.Use(middleware.Prometheus(middleware.WithNamespace("myapp")))
func Prometheus(opts ...MetricsOption) server.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(next server.Handler) server.Handler {
		return func(ctx context.Context, conn *server.Connection) server.Result {
			host := conn.Request.Header.Get("Host")

			start := time.Now()
			result := next(ctx, conn)
			duration := time.Since(start).Seconds()

			m.requestDuration.WithLabelValues(host).Observe(duration)
			m.requestsTotal.WithLabelValues(
				host,
				conn.Request.Method,
				strconv.Itoa(result.Status()),
			).Inc()
			m.responseBytes.Add(float64(len(result.Bytes())))

			return result
		}
	}
}

// RecordConnOpen increments the active connection gauge. Wire it to
// server.Config.OnConnOpen.
func RecordConnOpen() {
	if globalMetrics != nil {
		globalMetrics.activeConnections.Inc()
	}
}

// RecordConnClose decrements the active connection gauge. Wire it to
// server.Config.OnConnClose.
func RecordConnClose() {
	if globalMetrics != nil {
		globalMetrics.activeConnections.Dec()
	}
}

// RecordPanic counts a handler panic caught at the task boundary.
func RecordPanic() {
	if globalMetrics != nil {
		globalMetrics.handlerPanics.Inc()
	}
}
