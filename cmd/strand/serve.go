package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/strand-dev/strand/internal/config"
	"github.com/strand-dev/strand/internal/errors"
	"github.com/strand-dev/strand/pkg/middleware"
	"github.com/strand-dev/strand/pkg/router"
	"github.com/strand-dev/strand/pkg/server"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a server from a strand.json routing table",
		Long: `Serve starts a Strand server whose domains and routes come from a
strand.json file. Each configured route answers with a literal body or
the contents of a file; when metrics are enabled a Prometheus
exposition route is mounted on every domain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to strand.json")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	r := router.NewRouter()
	if cfg.Metrics.Enabled {
		r.Use(middleware.Prometheus(middleware.WithNamespace(cfg.Name)))
	}

	for _, dc := range cfg.Domains {
		domain, err := buildDomain(cfg, dc)
		if err != nil {
			return err
		}
		r.AddDomain(domain)
	}

	srv := server.New(&server.Config{
		Name:            cfg.Name,
		MaxConns:        cfg.MaxConns,
		GzipLevel:       cfg.GzipLevel,
		Debug:           cfg.Debug,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		EnableRestart:   cfg.EnableRestart,
		OnConnOpen:      middleware.RecordConnOpen,
		OnConnClose:     middleware.RecordConnClose,
		OnPanic:         middleware.RecordPanic,
	})
	srv.SetRouter(r)

	info("serving %d domain(s) @ %s", len(cfg.Domains), cfg.Listen)
	return srv.Run(ctx, cfg.Listen)
}

func buildDomain(cfg *config.Config, dc config.DomainConfig) (*router.Domain, error) {
	var matcher router.Matcher
	if len(dc.Hostnames) == 1 {
		matcher = router.Exact(dc.Hostnames[0])
	} else {
		matcher = router.OneOf(dc.Hostnames...)
	}

	domain := router.NewDomain(matcher)
	for _, rc := range dc.Routes {
		handler, err := buildHandler(rc)
		if err != nil {
			return nil, err
		}
		if err := domain.Handle(router.Exact(rc.Path), rc.Methods, handler); err != nil {
			return nil, err
		}
	}

	if cfg.Metrics.Enabled {
		err := domain.Handle(
			router.Exact(cfg.Metrics.Path),
			[]string{"GET"},
			middleware.Exposition(nil),
		)
		if err != nil {
			return nil, err
		}
	}

	return domain, nil
}

func buildHandler(rc config.RouteConfig) (server.Handler, error) {
	body := []byte(rc.Body)
	if rc.File != "" {
		data, err := os.ReadFile(rc.File)
		if err != nil {
			return nil, errors.New("E403").
				WithDetailf("route %q: reading %q", rc.Path, rc.File).
				Wrap(err)
		}
		body = data
	}

	status := rc.Status
	contentType := rc.ContentType
	return func(ctx context.Context, conn *server.Connection) server.Result {
		if contentType != "" {
			conn.SetHeader("Content-Type", contentType)
		}
		return server.BodyWithStatus(status, body)
	}, nil
}
