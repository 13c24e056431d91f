// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

/*
Package supervisor provides process supervision for the serving process
using suture v4.

# Tree

	RootSupervisor ("cinemind")
	├── ModelSupervisor ("model-layer")
	│   └── ArtifactWatchService (if WATCH_ARTIFACTS)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a watcher stuck in restart
backoff never interrupts the HTTP server.

# Logging

Supervisor events (service panics, restarts, backoff) are routed through
sutureslog into a *slog.Logger. The server wires that logger to zerolog
with logging.NewSlogLogger so every event lands in the same structured
stream as the rest of the process.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, timeout, logger))
	tree.AddModelService(services.NewArtifactWatchService(engine, watchCfg, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
