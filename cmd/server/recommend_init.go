// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/tomtom215/cinemind/internal/catalog"
	"github.com/tomtom215/cinemind/internal/config"
	"github.com/tomtom215/cinemind/internal/logging"
	"github.com/tomtom215/cinemind/internal/recommend"
	"github.com/tomtom215/cinemind/internal/recommend/reranking"
	"github.com/tomtom215/cinemind/internal/recommend/storage"
	"github.com/tomtom215/cinemind/internal/supervisor/services"
)

const initialLoadTimeout = 5 * time.Minute

// RecommendComponents holds the serving engine and its reload watcher.
type RecommendComponents struct {
	Engine  *recommend.Engine
	Watcher *services.ArtifactWatchService // nil when WATCH_ARTIFACTS=false
}

// initRecommend builds the engine and performs the initial artifact load.
// A failed initial load is logged, not returned: the server starts
// unready and recovers on the next successful reload.
func initRecommend(ctx context.Context, cfg *config.Config) (*RecommendComponents, error) {
	logger := logging.With().Str("component", "engine").Logger()

	loader := storage.NewLoader(cfg.ModelPath(), cfg.ContentPath())
	engine, err := recommend.NewEngine(cfg.RecommendConfig(), loader, logger)
	if err != nil {
		return nil, err
	}
	engine.SetDiversifier(reranking.NewMMR(cfg.Serving.DiversityLambda))

	loadCtx, cancel := context.WithTimeout(ctx, initialLoadTimeout)
	defer cancel()
	if err := engine.Reload(loadCtx); err != nil {
		logger.Warn().Err(err).Msg("Initial artifact load failed, serving unavailable until reload")
	}

	components := &RecommendComponents{Engine: engine}
	if cfg.Serving.WatchArtifacts {
		components.Watcher = services.NewArtifactWatchService(engine, services.ArtifactWatchConfig{
			Paths:    loader.Paths(),
			Debounce: cfg.Serving.ReloadDebounce,
		}, logging.Logger())
	}
	return components, nil
}

// initCatalog opens the catalog store read-only for response enrichment
// and seed text. The store is nil when none is configured or it cannot be
// opened; responses then carry ids and scores only.
func initCatalog(cfg *config.Config) (*catalog.Store, func()) {
	noop := func() {}
	path := cfg.Catalog.StorePath
	if path == "" {
		return nil, noop
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logging.Info().Str("path", path).Msg("Catalog store not found, responses will not be enriched")
		return nil, noop
	}

	store, err := catalog.OpenStoreReadOnly(path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to open catalog store, responses will not be enriched")
		return nil, noop
	}
	if n, err := store.Count(); err == nil {
		logging.Info().Int("records", n).Str("path", path).Msg("Catalog store opened")
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog store")
		}
	}
}
