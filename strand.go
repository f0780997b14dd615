// Package strand provides the public API for the Strand server.
//
// This is the recommended import for most applications:
//
//	import "github.com/strand-dev/strand"
//
// Usage:
//
//	d := strand.NewDomain(strand.Exact("a.example.com"))
//	d.HandleFunc("/ping", func(ctx context.Context, conn *strand.Connection) strand.Result {
//	    return strand.Body([]byte("pong"))
//	})
//
//	r := strand.NewRouter()
//	r.AddDomain(d)
//
//	srv := strand.NewServer(&strand.Config{Name: "example", GzipLevel: 6})
//	srv.SetRouter(r)
//	srv.Run(context.Background(), "localhost:8080")
package strand

import (
	"github.com/strand-dev/strand/pkg/router"
	"github.com/strand-dev/strand/pkg/server"
)

// Server types (re-export from pkg/server).
type (
	// Server is the multi-domain HTTP server.
	Server = server.Server

	// Config configures a Server.
	Config = server.Config

	// Connection is one accepted socket with its parsed request and
	// response state.
	Connection = server.Connection

	// Handler processes one connection.
	Handler = server.Handler

	// Middleware wraps a Handler.
	Middleware = server.Middleware

	// Result is a handler's tagged return value.
	Result = server.Result

	// Task is a long-lived background job tied to the server lifecycle.
	Task = server.Task

	// State is the server lifecycle state.
	State = server.State
)

// Lifecycle states.
const (
	StateIdle         = server.StateIdle
	StateListening    = server.StateListening
	StateShuttingDown = server.StateShuttingDown
	StateStopped      = server.StateStopped
)

// NewServer creates a Server, filling defaults for unset config fields.
func NewServer(config *Config) *Server {
	return server.New(config)
}

// DefaultConfig returns a Config with sensible defaults.
var DefaultConfig = server.DefaultConfig

// Handler results.
var (
	// Body returns a Result sent with status 200.
	Body = server.Body

	// BodyWithStatus returns a Result with an explicit status.
	BodyWithStatus = server.BodyWithStatus

	// NotFound returns the Result mapping to the fixed 404 response.
	NotFound = server.NotFound
)

// Routing types (re-export from pkg/router).
type (
	// Router maps hostnames to Domains and resolves handlers.
	Router = router.Router

	// Domain is a routing scope keyed by requested hostname.
	Domain = router.Domain

	// Route is a (path matcher, methods, handler) triple.
	Route = router.Route

	// RouteMap is an ordered collection of routes.
	RouteMap = router.RouteMap

	// Matcher accepts or rejects a hostname or path.
	Matcher = router.Matcher
)

// Router constructors.
var (
	NewRouter   = router.NewRouter
	NewDomain   = router.NewDomain
	NewRouteMap = router.NewRouteMap
)

// Matcher constructors.
var (
	// Exact matches one string exactly.
	Exact = router.Exact

	// OneOf matches membership in a fixed set.
	OneOf = router.OneOf

	// Pattern matches a compiled regular expression.
	Pattern = router.Pattern
)
