// Package middleware provides handler middleware for Strand servers:
// Prometheus metrics (with a text-exposition handler served through the
// core server itself), OpenTelemetry tracing, and a global fixed-window
// rate limiter.
//
// Middleware is registered on the router and wraps every resolved
// handler:
//
//	r := router.NewRouter()
//	r.Use(middleware.Prometheus())
//	r.Use(middleware.OTel())
package middleware
