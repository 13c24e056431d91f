// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

/*
Package main is the entry point for the Cinemind serving process.

The server loads the CF model and content artifacts written by cmd/train,
serves recommendations over HTTP, and swaps in new artifacts atomically
when they change on disk or when POST /api/v1/admin/reload is called.

# Application Architecture

	RootSupervisor ("cinemind")
	├── ModelSupervisor ("model-layer")
	│   └── Artifact watcher (WATCH_ARTIFACTS=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON/console output
 3. Engine: artifact loader, MMR diversifier, initial load
 4. Catalog: read-only BadgerDB store for response enrichment (optional)
 5. HTTP: chi router with request ID, metrics, access log, CORS, rate limit
 6. Supervisor tree: suture v4

A missing or corrupt artifact at startup is not fatal. The process starts,
/health/ready reports 503 and recommendation endpoints return
SERVICE_UNAVAILABLE until a reload succeeds.

# Configuration

	MLR_ARTIFACTS_DIR=artifacts    # directory of model.gob and content.gob
	MLR_MODEL_FILE=model.gob
	MLR_CONTENT_FILE=content.gob
	HYBRID_CF_WEIGHT=0.7
	HYBRID_CONTENT_WEIGHT=0.3
	UNKNOWN_USER_FALLBACK=false    # global-mean ranking for unknown users
	WATCH_ARTIFACTS=true
	CATALOG_STORE_PATH=data/catalog
	HTTP_PORT=8000
	ADMIN_TOKEN=<token>            # enables /api/v1/admin
	LOG_LEVEL=info
	LOG_FORMAT=json

See package config for the full list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests before the process exits.
*/
package main
