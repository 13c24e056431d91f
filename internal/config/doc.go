// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

/*
Package config provides centralized configuration management for Cinemind.

Configuration is assembled by Koanf v2 from three layers, each overriding
the previous one:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, then config.yaml, config.yml,
    /etc/cinemind/config.yaml, /etc/cinemind/config.yml)
 3. Environment variables listed below

The result is validated before Load returns it. Conversion helpers turn
the loaded Config into the settings structs of the packages it drives
(recommend.Config, database.Config, catalog.ClientConfig and
logging.Config).

# Environment Variables

Data and artifacts:
  - MLR_DATA_DIR: Directory holding ratings.csv, links.csv, movies.csv (default: data)
  - MLR_ARTIFACTS_DIR: Directory holding trained artifacts (default: artifacts)
  - MLR_MODEL_FILE: CF model file name (default: cf_model.bin)
  - MLR_CONTENT_FILE: Content space file name (default: content_space.bin)
  - MLR_RATINGS_FILE: Ratings file (default: ratings.csv, falling back to rating.csv)
  - MLR_LINKS_FILE, MLR_MOVIES_FILE: MovieLens links and movies files

Training:
  - MLR_SVD_RANK: Requested latent rank (default: 50)
  - MLR_MIN_RATINGS_PER_USER: Users with fewer ratings are dropped (default: 3)
  - MLR_CENTERING: none, global or user (default: user)
  - MLR_CONTENT_MIN_DF: Minimum document frequency for a term (default: 2)
  - MLR_CONTENT_MAX_FEATURES: Vocabulary cap, 0 for no cap (default: 50000)

Hybrid and serving:
  - HYBRID_CF_WEIGHT, HYBRID_CONTENT_WEIGHT: Blend weights (default: 0.7, 0.3)
  - HYBRID_CANDIDATE_K: CF candidates considered per user (default: 200)
  - SEED_HYBRID_CANDIDATE_K: Content candidates considered per seed query (default: 200)
  - UNKNOWN_USER_FALLBACK: Score unknown users with the global mean (default: false)
  - EXCLUDE_RATED: Drop items the user already rated (default: true)
  - DEFAULT_N, MAX_N: Result size default and ceiling (default: 10, 100)
  - DIVERSITY_LAMBDA: MMR relevance weight, 1.0 disables reranking (default: 1.0)
  - RATING_MIN, RATING_MAX: Display clip range for predicted ratings (default: 0.5, 5.0)
  - CACHE_ENABLED, CACHE_TTL, CACHE_MAX_ENTRIES: Result cache (default: true, 5m, 10000)
  - WATCH_ARTIFACTS: Reload when artifact files change (default: true)
  - ARTIFACT_RELOAD_DEBOUNCE: Quiet period before reloading (default: 2s)

Catalog ingestion:
  - TMDB_API_KEY or CATALOG_API_KEY: Metadata API key
  - CATALOG_BASE_URL: Metadata API base URL (default: https://api.themoviedb.org/3)
  - CATALOG_STORE_PATH: Badger directory for catalog records (default: data/catalog)
  - CATALOG_REQUESTS_PER_SECOND: Client rate limit (default: 4)
  - CATALOG_MAX_RETRIES: Retries on HTTP 429 (default: 5)
  - CATALOG_WORKERS: Concurrent fetches (default: 4)
  - CATALOG_FALLBACK: Store title/genre records when no metadata is found (default: true)

Database:
  - DUCKDB_PATH: DuckDB database used to read CSV files (default: :memory:)
  - DUCKDB_THREADS: Worker threads, 0 for NumCPU (default: 0)
  - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)
  - DUCKDB_QUERY_TIMEOUT: Deadline for scans without one, 0 for none (default: 0)

HTTP server:
  - HTTP_HOST, HTTP_PORT: Bind address (default: 0.0.0.0:8000)
  - HTTP_TIMEOUT: Request timeout (default: 30s)
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: Per-IP limit (default: 100 per 1m)
  - DISABLE_RATE_LIMIT: Turn the limiter off (default: false)
  - ADMIN_TOKEN: Bearer token required by /api/v1/admin endpoints

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file and line (default: false)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	loader := storage.NewLoader(cfg.ModelPath(), cfg.ContentPath())
	engine, err := recommend.NewEngine(cfg.RecommendConfig(), loader, logger)
*/
package config
