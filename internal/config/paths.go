// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package config

import (
	"os"
	"path/filepath"
)

// Default ratings file names, in lookup order.
const (
	ratingsFileName         = "ratings.csv"
	ratingsFallbackFileName = "rating.csv"
)

// ModelPath returns the CF model artifact path.
func (c *Config) ModelPath() string {
	return resolve(c.Data.ArtifactsDir, c.Data.ModelFile)
}

// ContentPath returns the content space artifact path.
func (c *Config) ContentPath() string {
	return resolve(c.Data.ArtifactsDir, c.Data.ContentFile)
}

// RatingsPath returns the ratings file path. Without an explicit file it
// prefers ratings.csv, then rating.csv, and reports ratings.csv when
// neither exists so the error names the expected file.
func (c *Config) RatingsPath() string {
	if c.Data.RatingsFile != "" {
		return resolve(c.Data.DataDir, c.Data.RatingsFile)
	}
	preferred := filepath.Join(c.Data.DataDir, ratingsFileName)
	if fileExists(preferred) {
		return preferred
	}
	if fallback := filepath.Join(c.Data.DataDir, ratingsFallbackFileName); fileExists(fallback) {
		return fallback
	}
	return preferred
}

// LinksPath returns the links file path.
func (c *Config) LinksPath() string {
	return resolve(c.Data.DataDir, c.Data.LinksFile)
}

// MoviesPath returns the movies file path.
func (c *Config) MoviesPath() string {
	return resolve(c.Data.DataDir, c.Data.MoviesFile)
}

// resolve joins name onto dir unless name is absolute.
func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
