// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package config

import (
	"time"

	"github.com/tomtom215/cinemind/internal/catalog"
	"github.com/tomtom215/cinemind/internal/database"
	"github.com/tomtom215/cinemind/internal/logging"
	"github.com/tomtom215/cinemind/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: Override any mapped setting
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Data     DataConfig     `koanf:"data"`
	Training TrainingConfig `koanf:"training"`
	Content  ContentConfig  `koanf:"content"`
	Hybrid   HybridConfig   `koanf:"hybrid"`
	Serving  ServingConfig  `koanf:"serving"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DataConfig locates input files and artifacts. Relative file names
// resolve against DataDir (inputs) or ArtifactsDir (artifacts).
type DataConfig struct {
	DataDir      string `koanf:"data_dir"`
	ArtifactsDir string `koanf:"artifacts_dir"`
	ModelFile    string `koanf:"model_file"`
	ContentFile  string `koanf:"content_file"`
	RatingsFile  string `koanf:"ratings_file"` // empty: ratings.csv, falling back to rating.csv
	LinksFile    string `koanf:"links_file"`
	MoviesFile   string `koanf:"movies_file"`
}

// TrainingConfig holds latent factor training parameters.
type TrainingConfig struct {
	Rank              int    `koanf:"rank"`
	MinRatingsPerUser int    `koanf:"min_ratings_per_user"`
	Centering         string `koanf:"centering"` // none, global, user
}

// ContentConfig holds TF-IDF parameters.
type ContentConfig struct {
	MinDF       int `koanf:"min_df"`
	MaxFeatures int `koanf:"max_features"`
}

// HybridConfig holds blend parameters.
type HybridConfig struct {
	CFWeight       float64 `koanf:"cf_weight"`
	ContentWeight  float64 `koanf:"content_weight"`
	CandidateK     int     `koanf:"candidate_k"`
	SeedCandidateK int     `koanf:"seed_candidate_k"`
}

// ServingConfig holds request-time policy for the serving process.
type ServingConfig struct {
	UnknownUserFallback bool          `koanf:"unknown_user_fallback"`
	ExcludeRated        bool          `koanf:"exclude_rated"`
	DefaultN            int           `koanf:"default_n"`
	MaxN                int           `koanf:"max_n"`
	DiversityLambda     float64       `koanf:"diversity_lambda"`
	RatingMin           float64       `koanf:"rating_min"` // display_score clip bounds
	RatingMax           float64       `koanf:"rating_max"`
	CacheEnabled        bool          `koanf:"cache_enabled"`
	CacheTTL            time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries     int           `koanf:"cache_max_entries"`
	WatchArtifacts      bool          `koanf:"watch_artifacts"` // reload when an artifact file changes
	ReloadDebounce      time.Duration `koanf:"reload_debounce"`
}

// CatalogConfig holds metadata client and store settings.
type CatalogConfig struct {
	APIKey            string  `koanf:"api_key"`
	BaseURL           string  `koanf:"base_url"`
	StorePath         string  `koanf:"store_path"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	MaxRetries        int     `koanf:"max_retries"`
	Workers           int     `koanf:"workers"`
	Fallback          bool    `koanf:"fallback"` // build records from the movies file when no metadata is available
}

// DatabaseConfig holds DuckDB settings for reading the training files.
type DatabaseConfig struct {
	Path         string        `koanf:"path"`
	Threads      int           `koanf:"threads"`
	MaxMemory    string        `koanf:"max_memory"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int           `koanf:"port"`
	Host              string        `koanf:"host"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	AdminToken        string        `koanf:"admin_token"` // required by /admin endpoints when set
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig converts the training and serving sections into the
// engine configuration.
func (c *Config) RecommendConfig() *recommend.Config {
	return &recommend.Config{
		Training: recommend.TrainingConfig{
			Rank:              c.Training.Rank,
			MinRatingsPerUser: c.Training.MinRatingsPerUser,
			Centering:         recommend.Centering(c.Training.Centering),
		},
		Content: recommend.ContentConfig{
			MinDF:       c.Content.MinDF,
			MaxFeatures: c.Content.MaxFeatures,
		},
		Hybrid: recommend.HybridConfig{
			CFWeight:       c.Hybrid.CFWeight,
			ContentWeight:  c.Hybrid.ContentWeight,
			CandidateK:     c.Hybrid.CandidateK,
			SeedCandidateK: c.Hybrid.SeedCandidateK,
		},
		Serving: recommend.ServingConfig{
			UnknownUserFallback: c.Serving.UnknownUserFallback,
			ExcludeRated:        c.Serving.ExcludeRated,
			DefaultN:            c.Serving.DefaultN,
			MaxN:                c.Serving.MaxN,
			DiversityLambda:     c.Serving.DiversityLambda,
		},
		Cache: recommend.CacheConfig{
			Enabled:    c.Serving.CacheEnabled,
			TTL:        c.Serving.CacheTTL,
			MaxEntries: c.Serving.CacheMaxEntries,
		},
	}
}

// DatabaseConfig returns the DuckDB connection settings.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Path:         c.Database.Path,
		Threads:      c.Database.Threads,
		MaxMemory:    c.Database.MaxMemory,
		QueryTimeout: c.Database.QueryTimeout,
	}
}

// CatalogClientConfig returns the metadata client settings.
func (c *Config) CatalogClientConfig() catalog.ClientConfig {
	cfg := catalog.DefaultClientConfig()
	cfg.APIKey = c.Catalog.APIKey
	if c.Catalog.BaseURL != "" {
		cfg.BaseURL = c.Catalog.BaseURL
	}
	if c.Catalog.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = c.Catalog.RequestsPerSecond
		cfg.Burst = max(1, int(c.Catalog.RequestsPerSecond))
	}
	cfg.MaxRetries = c.Catalog.MaxRetries
	return cfg
}

// LoggingConfig returns the logger settings.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
