// Package config loads and validates strand.json, the configuration
// file consumed by the strand CLI's serve command.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/strand-dev/strand/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "strand.json"

	// DefaultListen is the default listen address.
	DefaultListen = "localhost:8080"

	// DefaultShutdownTimeout is the default graceful-shutdown bound in
	// seconds.
	DefaultShutdownTimeout = 5
)

// Config represents the complete strand.json configuration.
type Config struct {
	// Name is the server name used in logs.
	Name string `json:"name,omitempty"`

	// Listen is the bind address: "host:port" or a Unix socket path.
	Listen string `json:"listen,omitempty"`

	// MaxConns bounds concurrently handled connections.
	MaxConns int `json:"max_conns,omitempty"`

	// GzipLevel is the gzip compression level (0-9, 0 disables).
	GzipLevel int `json:"gzip_level,omitempty"`

	// Debug enables per-request timing logs.
	Debug bool `json:"debug,omitempty"`

	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds,omitempty"`

	// EnableRestart makes SIGUSR1 restart the process.
	EnableRestart bool `json:"enable_restart,omitempty"`

	// Metrics configures the built-in metrics route.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Domains is the routing table served by the serve command.
	Domains []DomainConfig `json:"domains,omitempty"`
}

// MetricsConfig configures the Prometheus exposition route.
type MetricsConfig struct {
	// Enabled mounts the metrics route on every domain.
	Enabled bool `json:"enabled,omitempty"`

	// Path is the metrics route path (default "/metrics").
	Path string `json:"path,omitempty"`
}

// DomainConfig declares one domain and its static routes.
type DomainConfig struct {
	// Hostnames are the hostnames the domain answers for. A single
	// entry is an exact matcher; several form a set.
	Hostnames []string `json:"hostnames"`

	// Routes are the domain's endpoints.
	Routes []RouteConfig `json:"routes"`
}

// RouteConfig declares one static endpoint.
type RouteConfig struct {
	// Path is the exact route path.
	Path string `json:"path"`

	// Methods are the allowed methods (default ["GET"]).
	Methods []string `json:"methods,omitempty"`

	// Status is the response status (default 200).
	Status int `json:"status,omitempty"`

	// Body is the literal response body. Mutually exclusive with File.
	Body string `json:"body,omitempty"`

	// File is a path whose contents are served as the body.
	File string `json:"file,omitempty"`

	// ContentType sets the response Content-Type header.
	ContentType string `json:"content_type,omitempty"`
}

// Load reads and validates the config at path. An empty path loads
// ConfigFileName from the working directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E401").WithDetailf("path %q", path)
		}
		return nil, errors.FromError(err, "E401")
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E402").Wrap(err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "strand"
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.ShutdownTimeoutSeconds == 0 {
		c.ShutdownTimeoutSeconds = DefaultShutdownTimeout
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	for i := range c.Domains {
		for j := range c.Domains[i].Routes {
			route := &c.Domains[i].Routes[j]
			if len(route.Methods) == 0 {
				route.Methods = []string{"GET"}
			}
			if route.Status == 0 {
				route.Status = 200
			}
		}
	}
}

// Validate checks the configuration for structural mistakes.
func (c *Config) Validate() error {
	if c.GzipLevel < 0 || c.GzipLevel > 9 {
		return errors.New("E403").WithDetailf("gzip_level %d is outside 0-9", c.GzipLevel)
	}
	if c.ShutdownTimeoutSeconds < 0 {
		return errors.New("E403").WithDetail("shutdown_timeout_seconds is negative")
	}
	for _, domain := range c.Domains {
		if len(domain.Hostnames) == 0 {
			return errors.New("E403").WithDetail("domain with no hostnames")
		}
		for _, route := range domain.Routes {
			if route.Path == "" {
				return errors.New("E403").WithDetailf("domain %q route with no path", domain.Hostnames[0])
			}
			if route.Body != "" && route.File != "" {
				return errors.New("E403").WithDetailf("route %q sets both body and file", route.Path)
			}
		}
	}
	return nil
}

// ShutdownTimeout returns the configured timeout as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
