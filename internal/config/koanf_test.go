// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cinemind/internal/recommend"
)

// isolate moves the test into an empty directory so no stray config file
// is picked up, and clears CONFIG_PATH.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Training.Rank != 50 {
		t.Errorf("Training.Rank = %d, want 50", cfg.Training.Rank)
	}
	if cfg.Training.MinRatingsPerUser != 3 {
		t.Errorf("Training.MinRatingsPerUser = %d, want 3", cfg.Training.MinRatingsPerUser)
	}
	if cfg.Data.DataDir != "data" {
		t.Errorf("Data.DataDir = %q, want data", cfg.Data.DataDir)
	}
	if cfg.Data.ArtifactsDir != "artifacts" {
		t.Errorf("Data.ArtifactsDir = %q, want artifacts", cfg.Data.ArtifactsDir)
	}
	if cfg.Hybrid.CFWeight != 0.7 || cfg.Hybrid.ContentWeight != 0.3 {
		t.Errorf("Hybrid weights = %v/%v, want 0.7/0.3", cfg.Hybrid.CFWeight, cfg.Hybrid.ContentWeight)
	}
	if cfg.Hybrid.CandidateK != 200 {
		t.Errorf("Hybrid.CandidateK = %d, want 200", cfg.Hybrid.CandidateK)
	}
	if cfg.Hybrid.SeedCandidateK != 200 {
		t.Errorf("Hybrid.SeedCandidateK = %d, want 200", cfg.Hybrid.SeedCandidateK)
	}
	if cfg.Serving.UnknownUserFallback {
		t.Error("Serving.UnknownUserFallback should be false by default")
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB", cfg.Database.MaxMemory)
	}
	if cfg.Database.QueryTimeout != 0 {
		t.Errorf("Database.QueryTimeout = %v, want 0 (no default deadline)", cfg.Database.QueryTimeout)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}
}

// TestEnvTransformFunc verifies env var to config path transformation
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"MLR_SVD_RANK", "training.rank"},
		{"MLR_MIN_RATINGS_PER_USER", "training.min_ratings_per_user"},
		{"MLR_DATA_DIR", "data.data_dir"},
		{"MLR_RATINGS_FILE", "data.ratings_file"},
		{"HYBRID_CF_WEIGHT", "hybrid.cf_weight"},
		{"SEED_HYBRID_CANDIDATE_K", "hybrid.seed_candidate_k"},
		{"TMDB_API_KEY", "catalog.api_key"},
		{"CATALOG_API_KEY", "catalog.api_key"},
		{"HTTP_PORT", "server.port"},
		{"DISABLE_RATE_LIMIT", "server.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
		{"UNKNOWN_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := isolate(t)

	t.Run("no config file exists", func(t *testing.T) {
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("test: true"), 0o644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0o644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)
		t.Setenv(ConfigPathEnvVar, customPath)

		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")

		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadEnvVars tests loading configuration from environment variables
func TestLoadEnvVars(t *testing.T) {
	isolate(t)

	t.Setenv("MLR_SVD_RANK", "20")
	t.Setenv("MLR_MIN_RATINGS_PER_USER", "5")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("UNKNOWN_USER_FALLBACK", "true")
	t.Setenv("HYBRID_CF_WEIGHT", "0.5")
	t.Setenv("DUCKDB_QUERY_TIMEOUT", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Training.Rank != 20 {
		t.Errorf("Training.Rank = %d, want 20", cfg.Training.Rank)
	}
	if cfg.Training.MinRatingsPerUser != 5 {
		t.Errorf("Training.MinRatingsPerUser = %d, want 5", cfg.Training.MinRatingsPerUser)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Serving.CacheTTL != 30*time.Second {
		t.Errorf("Serving.CacheTTL = %v, want 30s", cfg.Serving.CacheTTL)
	}
	if !cfg.Serving.UnknownUserFallback {
		t.Error("Serving.UnknownUserFallback = false, want true")
	}
	if cfg.Hybrid.CFWeight != 0.5 {
		t.Errorf("Hybrid.CFWeight = %v, want 0.5", cfg.Hybrid.CFWeight)
	}
	if got := cfg.DatabaseConfig().QueryTimeout; got != 2*time.Minute {
		t.Errorf("DatabaseConfig().QueryTimeout = %v, want 2m", got)
	}

	// Defaults are still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Hybrid.ContentWeight != 0.3 {
		t.Errorf("Hybrid.ContentWeight = %v, want 0.3 (default)", cfg.Hybrid.ContentWeight)
	}
}

const testConfigYAML = `
data:
  data_dir: /srv/movielens
  artifacts_dir: /srv/artifacts
training:
  rank: 32
  centering: global
serving:
  default_n: 20
  cache_ttl: 10m
server:
  port: 8181
  cors_origins:
    - https://a.example
    - https://b.example
database:
  path: /srv/cinemind.duckdb
`

// TestLoadConfigFile tests loading configuration from a YAML file
func TestLoadConfigFile(t *testing.T) {
	tmpDir := isolate(t)

	configPath := filepath.Join(tmpDir, "cinemind.yaml")
	if err := os.WriteFile(configPath, []byte(testConfigYAML), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.DataDir != "/srv/movielens" {
		t.Errorf("Data.DataDir = %q, want /srv/movielens", cfg.Data.DataDir)
	}
	if cfg.Training.Rank != 32 {
		t.Errorf("Training.Rank = %d, want 32", cfg.Training.Rank)
	}
	if cfg.Training.Centering != "global" {
		t.Errorf("Training.Centering = %q, want global", cfg.Training.Centering)
	}
	if cfg.Serving.DefaultN != 20 {
		t.Errorf("Serving.DefaultN = %d, want 20", cfg.Serving.DefaultN)
	}
	if cfg.Serving.CacheTTL != 10*time.Minute {
		t.Errorf("Serving.CacheTTL = %v, want 10m", cfg.Serving.CacheTTL)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
	wantOrigins := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, wantOrigins) {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, wantOrigins)
	}
	if cfg.ModelPath() != "/srv/artifacts/cf_model.bin" {
		t.Errorf("ModelPath() = %q, want /srv/artifacts/cf_model.bin", cfg.ModelPath())
	}
	// Unset sections keep their defaults
	if cfg.Training.MinRatingsPerUser != 3 {
		t.Errorf("Training.MinRatingsPerUser = %d, want 3 (default)", cfg.Training.MinRatingsPerUser)
	}
}

// TestLoadEnvOverridesFile tests that env vars take precedence over the file
func TestLoadEnvOverridesFile(t *testing.T) {
	tmpDir := isolate(t)

	configPath := filepath.Join(tmpDir, "cinemind.yaml")
	if err := os.WriteFile(configPath, []byte(testConfigYAML), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("MLR_SVD_RANK", "64")
	t.Setenv("DUCKDB_PATH", "/custom/db.duckdb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Training.Rank != 64 {
		t.Errorf("Training.Rank = %d, want 64 (env override)", cfg.Training.Rank)
	}
	if cfg.Database.Path != "/custom/db.duckdb" {
		t.Errorf("Database.Path = %q, want /custom/db.duckdb (env override)", cfg.Database.Path)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181 (from file)", cfg.Server.Port)
	}
}

// TestLoadCORSOriginsFromEnv verifies comma-separated slice parsing
func TestLoadCORSOriginsFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

// TestLoadValidation tests that invalid settings are rejected
func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		errMsg  string
	}{
		{"zero rank", map[string]string{"MLR_SVD_RANK": "0"}, "training.rank"},
		{"negative min ratings", map[string]string{"MLR_MIN_RATINGS_PER_USER": "-1"}, "min_ratings_per_user"},
		{"unknown centering", map[string]string{"MLR_CENTERING": "median"}, "centering"},
		{"zero min df", map[string]string{"MLR_CONTENT_MIN_DF": "0"}, "min_df"},
		{"negative weight", map[string]string{"HYBRID_CF_WEIGHT": "-0.1"}, "non-negative"},
		{"both weights zero", map[string]string{"HYBRID_CF_WEIGHT": "0", "HYBRID_CONTENT_WEIGHT": "0"}, "both be zero"},
		{"max_n below default_n", map[string]string{"DEFAULT_N": "50", "MAX_N": "10"}, "max_n"},
		{"lambda out of range", map[string]string{"DIVERSITY_LAMBDA": "1.5"}, "diversity_lambda"},
		{"inverted rating range", map[string]string{"RATING_MIN": "5", "RATING_MAX": "1"}, "RATING_MIN"},
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"unknown log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"zero workers", map[string]string{"CATALOG_WORKERS": "0"}, "CATALOG_WORKERS"},
		{"zero cache ttl", map[string]string{"CACHE_TTL": "0s"}, "cache.ttl"},
		{"negative query timeout", map[string]string{"DUCKDB_QUERY_TIMEOUT": "-1s"}, "DUCKDB_QUERY_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error containing %q, got nil", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.errMsg)
			}
		})
	}

	t.Run("disabled cache ignores ttl", func(t *testing.T) {
		isolate(t)
		t.Setenv("CACHE_ENABLED", "false")
		t.Setenv("CACHE_TTL", "0s")

		if _, err := Load(); err != nil {
			t.Errorf("Load() unexpected error = %v", err)
		}
	})
}

func TestPaths(t *testing.T) {
	t.Run("artifact paths join artifacts dir", func(t *testing.T) {
		cfg := defaultConfig()
		if got := cfg.ModelPath(); got != filepath.Join("artifacts", "cf_model.bin") {
			t.Errorf("ModelPath() = %q", got)
		}
		if got := cfg.ContentPath(); got != filepath.Join("artifacts", "content_space.bin") {
			t.Errorf("ContentPath() = %q", got)
		}
		if got := cfg.LinksPath(); got != filepath.Join("data", "links.csv") {
			t.Errorf("LinksPath() = %q", got)
		}
		if got := cfg.MoviesPath(); got != filepath.Join("data", "movies.csv") {
			t.Errorf("MoviesPath() = %q", got)
		}
	})

	t.Run("absolute file names are kept", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Data.ModelFile = "/models/cf.bin"
		cfg.Data.RatingsFile = "/ratings/all.csv"
		if got := cfg.ModelPath(); got != "/models/cf.bin" {
			t.Errorf("ModelPath() = %q, want /models/cf.bin", got)
		}
		if got := cfg.RatingsPath(); got != "/ratings/all.csv" {
			t.Errorf("RatingsPath() = %q, want /ratings/all.csv", got)
		}
	})

	t.Run("ratings file falls back to rating.csv", func(t *testing.T) {
		dir := t.TempDir()
		cfg := defaultConfig()
		cfg.Data.DataDir = dir

		preferred := filepath.Join(dir, "ratings.csv")
		fallback := filepath.Join(dir, "rating.csv")

		if got := cfg.RatingsPath(); got != preferred {
			t.Errorf("RatingsPath() with no files = %q, want %q", got, preferred)
		}

		if err := os.WriteFile(fallback, []byte("user_id,movie_id,rating\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := cfg.RatingsPath(); got != fallback {
			t.Errorf("RatingsPath() with rating.csv = %q, want %q", got, fallback)
		}

		if err := os.WriteFile(preferred, []byte("user_id,movie_id,rating\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := cfg.RatingsPath(); got != preferred {
			t.Errorf("RatingsPath() with both files = %q, want %q", got, preferred)
		}
	})
}

func TestRecommendConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Training.Centering = "global"
	cfg.Serving.CacheTTL = time.Minute

	rc := cfg.RecommendConfig()
	if rc.Training.Rank != 50 || rc.Training.MinRatingsPerUser != 3 {
		t.Errorf("Training = %+v, want rank 50 / min 3", rc.Training)
	}
	if rc.Training.Centering != recommend.CenterGlobal {
		t.Errorf("Training.Centering = %q, want %q", rc.Training.Centering, recommend.CenterGlobal)
	}
	if rc.Hybrid.CFWeight != 0.7 || rc.Hybrid.ContentWeight != 0.3 {
		t.Errorf("Hybrid = %+v", rc.Hybrid)
	}
	if !rc.Cache.Enabled || rc.Cache.TTL != time.Minute || rc.Cache.MaxEntries != 10000 {
		t.Errorf("Cache = %+v", rc.Cache)
	}
	if err := rc.Validate(); err != nil {
		t.Errorf("converted config should validate: %v", err)
	}
}

func TestCatalogClientConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Catalog.APIKey = "secret"
	cfg.Catalog.RequestsPerSecond = 10
	cfg.Catalog.MaxRetries = 2

	cc := cfg.CatalogClientConfig()
	if cc.APIKey != "secret" {
		t.Errorf("APIKey = %q, want secret", cc.APIKey)
	}
	if cc.RequestsPerSecond != 10 || cc.Burst != 10 {
		t.Errorf("rate = %v/%d, want 10/10", cc.RequestsPerSecond, cc.Burst)
	}
	if cc.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cc.MaxRetries)
	}
	if cc.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("BaseURL = %q", cc.BaseURL)
	}
}
