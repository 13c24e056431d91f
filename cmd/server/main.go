// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cinemind/internal/api"
	"github.com/tomtom215/cinemind/internal/config"
	"github.com/tomtom215/cinemind/internal/logging"
	"github.com/tomtom215/cinemind/internal/supervisor"
	"github.com/tomtom215/cinemind/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingConfig())

	logging.Info().
		Str("version", api.Version).
		Str("model", cfg.ModelPath()).
		Str("content", cfg.ContentPath()).
		Msg("Starting Cinemind")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := initRecommend(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	store, closeCatalog := initCatalog(cfg)
	defer closeCatalog()
	var lookup api.CatalogLookup
	if store != nil {
		lookup = store
		components.Engine.SetSeedTextSource(store)
	}

	handler := api.NewHandler(components.Engine, lookup, api.HandlerConfig{
		DefaultN:       cfg.Serving.DefaultN,
		RatingMin:      cfg.Serving.RatingMin,
		RatingMax:      cfg.Serving.RatingMax,
		RequestTimeout: cfg.Server.Timeout,
	})

	mwConfig := api.DefaultChiMiddlewareConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	}
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Server.RateLimitDisabled
	mwConfig.AdminToken = cfg.Server.AdminToken
	if mwConfig.AdminToken == "" {
		logging.Info().Msg("ADMIN_TOKEN not set, admin endpoints disabled")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, mwConfig).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logging.Logger()))
	if components.Watcher != nil {
		tree.AddModelService(components.Watcher)
	}

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Cinemind stopped")
}
