package middleware

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/strand-dev/strand/pkg/server"
)

func resetMetrics() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func TestPrometheus_RecordsRequests(t *testing.T) {
	resetMetrics()
	reg := prometheus.NewRegistry()

	handler := Prometheus(WithRegistry(reg))(func(ctx context.Context, conn *server.Connection) server.Result {
		return server.Body([]byte("hello"))
	})

	conn := testConn("a.example.com", "GET", "/")
	for i := 0; i < 3; i++ {
		if got := handler(context.Background(), conn); got.Status() != 200 {
			t.Fatalf("status = %d", got.Status())
		}
	}

	counter := globalMetrics.requestsTotal.WithLabelValues("a.example.com", "GET", "200")
	if got := testutil.ToFloat64(counter); got != 3 {
		t.Errorf("requests_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(globalMetrics.responseBytes); got != 15 {
		t.Errorf("response_bytes_total = %v, want 15", got)
	}
}

func TestPrometheus_StatusLabel(t *testing.T) {
	resetMetrics()
	reg := prometheus.NewRegistry()

	handler := Prometheus(WithRegistry(reg))(func(ctx context.Context, conn *server.Connection) server.Result {
		return server.NotFound()
	})
	handler(context.Background(), testConn("a.example.com", "GET", "/missing"))

	counter := globalMetrics.requestsTotal.WithLabelValues("a.example.com", "GET", "404")
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Errorf("requests_total{status=404} = %v, want 1", got)
	}
}

func TestConnectionGaugeHelpers(t *testing.T) {
	resetMetrics()
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))

	RecordConnOpen()
	RecordConnOpen()
	RecordConnClose()
	if got := testutil.ToFloat64(globalMetrics.activeConnections); got != 1 {
		t.Errorf("active_connections = %v, want 1", got)
	}

	RecordPanic()
	if got := testutil.ToFloat64(globalMetrics.handlerPanics); got != 1 {
		t.Errorf("handler_panics_total = %v, want 1", got)
	}
}

func TestPrometheus_SingletonIgnoresLaterOptions(t *testing.T) {
	resetMetrics()
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg), WithNamespace("first"))

	// A second construction reuses the existing metrics set.
	Prometheus(WithNamespace("second"))

	names, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, mf := range names {
		if got := mf.GetName(); len(got) < len("first_") || got[:len("first_")] != "first_" {
			t.Errorf("metric %q not under the first namespace", got)
		}
	}
}
