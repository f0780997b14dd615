package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strand-dev/strand/pkg/server"
)

// Default tracer name for Strand applications.
const defaultTracerName = "strand"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "strand").
	TracerName string

	// Filter determines which requests to trace. Return true to trace,
	// false to skip. If nil, all requests are traced.
	Filter func(conn *server.Connection) bool

	// AttributeExtractor extracts custom attributes from the connection,
	// called for each traced request.
	AttributeExtractor func(conn *server.Connection) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(conn *server.Connection) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(conn *server.Connection) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OTel creates middleware that starts one span per dispatched request,
// named "METHOD path", with standard HTTP attributes. Responses with a
// 5xx status mark the span as errored.
func OTel(opts ...OTelOption) server.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(next server.Handler) server.Handler {
		return func(ctx context.Context, conn *server.Connection) server.Result {
			if config.Filter != nil && !config.Filter(conn) {
				return next(ctx, conn)
			}

			req := conn.Request
			ctx, span := config.tracer.Start(ctx, req.Method+" "+req.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", req.Method),
					attribute.String("http.host", req.Header.Get("Host")),
					attribute.String("http.target", req.RawPath),
				),
			)
			defer span.End()

			if config.AttributeExtractor != nil {
				span.SetAttributes(config.AttributeExtractor(conn)...)
			}

			result := next(ctx, conn)

			status := result.Status()
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= 500 {
				span.SetStatus(codes.Error, "handler returned server error")
			}

			return result
		}
	}
}
