// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package config

import (
	"fmt"

	"github.com/tomtom215/cinemind/internal/logging"
)

// Validate checks that configuration values are present and in range.
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if c.Database.QueryTimeout < 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be non-negative, got %s", c.Database.QueryTimeout)
	}
	if err := c.validateServing(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}

	// Training, content, hybrid and cache rules live with the engine.
	if err := c.RecommendConfig().Validate(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateData() error {
	if c.Data.ArtifactsDir == "" {
		return fmt.Errorf("MLR_ARTIFACTS_DIR must not be empty")
	}
	if c.Data.ModelFile == "" {
		return fmt.Errorf("MLR_MODEL_FILE must not be empty")
	}
	if c.Data.ContentFile == "" {
		return fmt.Errorf("MLR_CONTENT_FILE must not be empty")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.RequestsPerSecond < 0 {
		return fmt.Errorf("CATALOG_REQUESTS_PER_SECOND must be non-negative, got %f", c.Catalog.RequestsPerSecond)
	}
	if c.Catalog.MaxRetries < 0 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must be non-negative, got %d", c.Catalog.MaxRetries)
	}
	if c.Catalog.Workers < 1 {
		return fmt.Errorf("CATALOG_WORKERS must be positive, got %d", c.Catalog.Workers)
	}
	return nil
}

func (c *Config) validateServing() error {
	if c.Serving.RatingMin >= c.Serving.RatingMax {
		return fmt.Errorf("RATING_MIN must be below RATING_MAX, got %f >= %f", c.Serving.RatingMin, c.Serving.RatingMax)
	}
	if c.Serving.ReloadDebounce < 0 {
		return fmt.Errorf("ARTIFACT_RELOAD_DEBOUNCE must be non-negative, got %v", c.Serving.ReloadDebounce)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Server.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
