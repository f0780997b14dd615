package server

import (
	"context"
	"log/slog"
	"time"
)

// Config holds configuration for a Server. All fields are optional;
// New fills in defaults for anything unset. There is no package-level
// mutable state: every knob lives here and is owned by the caller.
type Config struct {
	// Name identifies the server in logs.
	// Default: "strand".
	Name string

	// MaxConns bounds the number of connections handled concurrently.
	// Accepted connections beyond the bound wait their turn, mirroring
	// the OS accept queue. Default: 128.
	MaxConns int

	// GzipLevel is the gzip compression level (0-9). 0 disables
	// compression. Default: 0.
	GzipLevel int

	// Debug enables per-request timing logs.
	Debug bool

	// ShutdownTimeout bounds how long in-flight handlers may run after
	// a shutdown request before being force-cancelled.
	// Default: 5 seconds.
	ShutdownTimeout time.Duration

	// EnableRestart makes SIGUSR1 request a shutdown-then-restart.
	EnableRestart bool

	// RestartFunc is invoked after the server reaches Stopped when a
	// restart was requested. Default: re-exec the current binary with
	// its original arguments.
	RestartFunc func() error

	// BeforeServing runs once after the listener is bound, before the
	// first connection is accepted. An error aborts startup.
	BeforeServing func(ctx context.Context) error

	// AfterServing runs once after all in-flight work has settled,
	// before the server reports Stopped.
	AfterServing func(ctx context.Context) error

	// OnConnOpen and OnConnClose are invoked per accepted connection.
	// Intended for metrics gauges.
	OnConnOpen  func()
	OnConnClose func()

	// OnPanic is invoked whenever a handler panic is recovered.
	// Intended for metrics counters.
	OnPanic func()

	// Logger is the server logger.
	// Default: slog.Default() with a component attribute.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:            "strand",
		MaxConns:        128,
		ShutdownTimeout: 5 * time.Second,
	}
}

// WithDebug enables debug logging and returns the config.
func (c *Config) WithDebug() *Config {
	c.Debug = true
	return c
}

// WithGzip sets the gzip level and returns the config.
func (c *Config) WithGzip(level int) *Config {
	c.GzipLevel = level
	return c
}

// State is the server lifecycle state. Transitions are linear:
// Idle → Listening → ShuttingDown → Stopped, with no re-entry.
type State int32

const (
	StateIdle State = iota
	StateListening
	StateShuttingDown
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
