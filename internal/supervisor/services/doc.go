// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

/*
Package services provides suture.Service wrappers for the serving process.

Each wrapper translates a component's lifecycle into suture's
context-aware Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server (or any HTTPServer) with graceful shutdown
  - http.ErrServerClosed is treated as a clean stop

Artifact Watcher (ArtifactWatchService):
  - Watches the model and content artifact files via koanf's file provider
  - Debounces bursts of events into one Engine.Reload call
  - A failed reload keeps the current snapshot; a failed watch returns an
    error so the supervisor restarts the service

# Usage

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout, logger))
	tree.AddModelService(services.NewArtifactWatchService(engine, services.ArtifactWatchConfig{
	    Paths:    []string{cfg.ModelPath(), cfg.ContentPath()},
	    Debounce: cfg.Serving.ReloadDebounce,
	}, logger))
*/
package services
