package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/internal/config"
	"github.com/goliatone/go-reportform/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web portal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			deps, cleanup, err := a.serverDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			srv, err := server.New(deps)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serverDeps connects the optional redis backend. Rate limiting falls back
// to disabled when redis cannot be reached; a redis session store cannot.
func (a *app) serverDeps() (server.Deps, func(), error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := server.Deps{
		Config:   a.cfg,
		Logger:   a.logger,
		Reports:  a.reports,
		Training: a.training,
		Registry: registry,
	}
	cleanup := func() {}

	needRedis := a.cfg.Server.SessionStore == config.StoreRedis || a.cfg.Server.RateLimit.Enabled
	if !needRedis {
		return deps, cleanup, nil
	}
	client, err := server.NewRedisClient(a.cfg.Redis, a.logger)
	if err != nil {
		if a.cfg.Server.SessionStore == config.StoreRedis {
			return deps, cleanup, err
		}
		a.logger.Warn("rate limiting disabled, redis unavailable", zap.Error(err))
		return deps, cleanup, nil
	}
	cleanup = func() { _ = client.Close() }

	if a.cfg.Server.SessionStore == config.StoreRedis {
		deps.Sessions = server.NewRedisStore(client, a.cfg.Server.SessionTTL)
	}
	if a.cfg.Server.RateLimit.Enabled {
		deps.Limiter = client
	}
	return deps, cleanup, nil
}
