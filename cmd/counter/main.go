// Command counter is a demo server that counts visits per session.
//
// Configuration comes from the environment (or a .env file); at minimum
// SESSION_SECRET_KEY must hold 32 or more bytes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/serversession/core/config"
	"github.com/dmitrymomot/serversession/core/cookie"
	"github.com/dmitrymomot/serversession/core/logger"
	"github.com/dmitrymomot/serversession/core/server"
	"github.com/dmitrymomot/serversession/core/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg) // panic on error

	log := logger.New(logger.WithProduction(cfg.AppName))
	if cfg.Debug {
		log = logger.New(logger.WithDevelopment(cfg.AppName))
	}

	codec, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		log.Error("Failed to create session cookie codec", logger.Component("session.cookie"), logger.Error(err))
		os.Exit(1)
	}

	store := session.NewMemoryStoreFromConfig(cfg.Session, session.WithLogger(log))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		session.NewCollector(store, cfg.AppName),
	)

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		log.Error("Failed to create server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(store.Run(ctx))
	eg.Go(srv.Run(ctx, routes(log, store, codec, registry)))

	if err := eg.Wait(); err != nil {
		log.Error("Application failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped")
}
