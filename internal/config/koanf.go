// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinemind/config.yaml",
	"/etc/cinemind/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			DataDir:      "data",
			ArtifactsDir: "artifacts",
			ModelFile:    "cf_model.bin",
			ContentFile:  "content_space.bin",
			RatingsFile:  "",
			LinksFile:    "links.csv",
			MoviesFile:   "movies.csv",
		},
		Training: TrainingConfig{
			Rank:              50,
			MinRatingsPerUser: 3,
			Centering:         "user",
		},
		Content: ContentConfig{
			MinDF:       2,
			MaxFeatures: 50000,
		},
		Hybrid: HybridConfig{
			CFWeight:       0.7,
			ContentWeight:  0.3,
			CandidateK:     200,
			SeedCandidateK: 200,
		},
		Serving: ServingConfig{
			UnknownUserFallback: false,
			ExcludeRated:        true,
			DefaultN:            10,
			MaxN:                100,
			DiversityLambda:     1.0, // 1.0 disables MMR
			RatingMin:           0.5,
			RatingMax:           5.0,
			CacheEnabled:        true,
			CacheTTL:            5 * time.Minute,
			CacheMaxEntries:     10000,
			WatchArtifacts:      true,
			ReloadDebounce:      2 * time.Second,
		},
		Catalog: CatalogConfig{
			APIKey:            "",
			BaseURL:           "https://api.themoviedb.org/3",
			StorePath:         "data/catalog",
			RequestsPerSecond: 4,
			MaxRetries:        5,
			Workers:           4,
			Fallback:          true,
		},
		Database: DatabaseConfig{
			Path:         ":memory:",
			Threads:      0, // 0 = use runtime.NumCPU()
			MaxMemory:    "2GB",
			QueryTimeout: 0,
		},
		Server: ServerConfig{
			Port:              8000,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so unrelated environment never leaks in.
var envMappings = map[string]string{
	// Data and artifact locations
	"mlr_data_dir":      "data.data_dir",
	"mlr_artifacts_dir": "data.artifacts_dir",
	"mlr_model_file":    "data.model_file",
	"mlr_content_file":  "data.content_file",
	"mlr_ratings_file":  "data.ratings_file",
	"mlr_links_file":    "data.links_file",
	"mlr_movies_file":   "data.movies_file",

	// Training
	"mlr_svd_rank":             "training.rank",
	"mlr_min_ratings_per_user": "training.min_ratings_per_user",
	"mlr_centering":            "training.centering",

	// Content
	"mlr_content_min_df":       "content.min_df",
	"mlr_content_max_features": "content.max_features",

	// Hybrid
	"hybrid_cf_weight":        "hybrid.cf_weight",
	"hybrid_content_weight":   "hybrid.content_weight",
	"hybrid_candidate_k":      "hybrid.candidate_k",
	"seed_hybrid_candidate_k": "hybrid.seed_candidate_k",

	// Serving
	"unknown_user_fallback":    "serving.unknown_user_fallback",
	"exclude_rated":            "serving.exclude_rated",
	"default_n":                "serving.default_n",
	"max_n":                    "serving.max_n",
	"diversity_lambda":         "serving.diversity_lambda",
	"rating_min":               "serving.rating_min",
	"rating_max":               "serving.rating_max",
	"cache_enabled":            "serving.cache_enabled",
	"cache_ttl":                "serving.cache_ttl",
	"cache_max_entries":        "serving.cache_max_entries",
	"watch_artifacts":          "serving.watch_artifacts",
	"artifact_reload_debounce": "serving.reload_debounce",

	// Catalog
	"catalog_api_key":             "catalog.api_key",
	"tmdb_api_key":                "catalog.api_key",
	"catalog_base_url":            "catalog.base_url",
	"catalog_store_path":          "catalog.store_path",
	"catalog_requests_per_second": "catalog.requests_per_second",
	"catalog_max_retries":         "catalog.max_retries",
	"catalog_workers":             "catalog.workers",
	"catalog_fallback":            "catalog.fallback",

	// Database
	"duckdb_path":          "database.path",
	"duckdb_threads":       "database.threads",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_query_timeout": "database.query_timeout",

	// Server
	"http_port":           "server.port",
	"http_host":           "server.host",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",
	"admin_token":         "server.admin_token",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - MLR_SVD_RANK -> training.rank
//   - HYBRID_CF_WEIGHT -> hybrid.cf_weight
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
