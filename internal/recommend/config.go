// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for training and serving.
type Config struct {
	// Training contains latent factor training parameters.
	Training TrainingConfig `json:"training"`

	// Content contains TF-IDF parameters.
	Content ContentConfig `json:"content"`

	// Hybrid contains blend parameters.
	Hybrid HybridConfig `json:"hybrid"`

	// Serving contains request-time policy.
	Serving ServingConfig `json:"serving"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`
}

// TrainingConfig contains latent factor training parameters.
type TrainingConfig struct {
	// Rank is the requested number of latent factors. It is clamped to
	// min(users, items) - 1 when the matrix is too small.
	// Default: 50.
	Rank int `json:"rank"`

	// MinRatingsPerUser drops users with fewer distinct rated items.
	// Default: 3.
	MinRatingsPerUser int `json:"min_ratings_per_user"`

	// Centering is the offset removed before factorization: none, global or user.
	// Default: user.
	Centering Centering `json:"centering"`
}

// ContentConfig contains TF-IDF parameters.
type ContentConfig struct {
	// MinDF drops terms that appear in fewer documents.
	// Default: 2.
	MinDF int `json:"min_df"`

	// MaxFeatures caps the vocabulary size by corpus frequency. 0 disables the cap.
	// Default: 50000.
	MaxFeatures int `json:"max_features"`
}

// HybridConfig contains blend parameters.
type HybridConfig struct {
	// CFWeight is the weight of the normalized CF score.
	// Default: 0.7.
	CFWeight float64 `json:"cf_weight"`

	// ContentWeight is the weight of the normalized content score.
	// Default: 0.3.
	ContentWeight float64 `json:"content_weight"`

	// CandidateK is the number of CF candidates re-scored by content for
	// user hybrid recommendations.
	// Default: 200.
	CandidateK int `json:"candidate_k"`

	// SeedCandidateK caps each signal list for seed hybrid recommendations.
	// Default: 500.
	SeedCandidateK int `json:"seed_candidate_k"`
}

// Weights returns the blend weights.
func (h HybridConfig) Weights() Weights {
	return Weights{CF: h.CFWeight, Content: h.ContentWeight}
}

// ServingConfig contains request-time policy.
type ServingConfig struct {
	// UnknownUserFallback returns the global mean for every item instead of
	// failing when a user is not in the model.
	// Default: false.
	UnknownUserFallback bool `json:"unknown_user_fallback"`

	// ExcludeRated removes already-rated items from user recommendations
	// unless the request overrides it.
	// Default: true.
	ExcludeRated bool `json:"exclude_rated"`

	// DefaultN is the number of recommendations when a request omits n.
	// Default: 10.
	DefaultN int `json:"default_n"`

	// MaxN is the largest n a request may ask for.
	// Default: 100.
	MaxN int `json:"max_n"`

	// DiversityLambda is the MMR relevance weight for seed results.
	// 1.0 disables diversity reranking.
	// Default: 1.0.
	DiversityLambda float64 `json:"diversity_lambda"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether responses are cached per snapshot.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Training: TrainingConfig{
			Rank:              50,
			MinRatingsPerUser: 3,
			Centering:         CenterUser,
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
			DiversityLambda:     1.0,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Training.Rank < 1 {
		return fmt.Errorf("training.rank must be positive, got %d", c.Training.Rank)
	}
	if c.Training.MinRatingsPerUser < 0 {
		return fmt.Errorf("training.min_ratings_per_user must be non-negative, got %d", c.Training.MinRatingsPerUser)
	}
	if !c.Training.Centering.Valid() {
		return fmt.Errorf("training.centering must be one of none, global, user, got %q", c.Training.Centering)
	}
	if c.Content.MinDF < 1 {
		return fmt.Errorf("content.min_df must be positive, got %d", c.Content.MinDF)
	}
	if c.Content.MaxFeatures < 0 {
		return fmt.Errorf("content.max_features must be non-negative, got %d", c.Content.MaxFeatures)
	}
	if c.Hybrid.CFWeight < 0 || c.Hybrid.ContentWeight < 0 {
		return fmt.Errorf("hybrid weights must be non-negative, got cf=%f content=%f", c.Hybrid.CFWeight, c.Hybrid.ContentWeight)
	}
	if c.Hybrid.CFWeight+c.Hybrid.ContentWeight == 0 {
		return fmt.Errorf("hybrid weights must not both be zero")
	}
	if c.Hybrid.CandidateK < 1 {
		return fmt.Errorf("hybrid.candidate_k must be positive, got %d", c.Hybrid.CandidateK)
	}
	if c.Hybrid.SeedCandidateK < 1 {
		return fmt.Errorf("hybrid.seed_candidate_k must be positive, got %d", c.Hybrid.SeedCandidateK)
	}
	if c.Serving.DefaultN < 1 {
		return fmt.Errorf("serving.default_n must be positive, got %d", c.Serving.DefaultN)
	}
	if c.Serving.MaxN < c.Serving.DefaultN {
		return fmt.Errorf("serving.max_n must be >= serving.default_n, got %d < %d", c.Serving.MaxN, c.Serving.DefaultN)
	}
	if c.Serving.DiversityLambda < 0 || c.Serving.DiversityLambda > 1 {
		return fmt.Errorf("serving.diversity_lambda must be in [0, 1], got %f", c.Serving.DiversityLambda)
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
