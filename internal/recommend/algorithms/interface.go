// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package algorithms

import (
	"context"

	"github.com/tomtom215/cinemind/internal/recommend"
)

// ModelTrainer fits a latent factor model to a rating matrix.
type ModelTrainer interface {
	Train(ctx context.Context, rm *RatingMatrix) (*recommend.Model, error)
}

// ContentBuilder builds a content space from item documents.
type ContentBuilder interface {
	Build(ctx context.Context, docs []Document) (*recommend.ContentSpace, error)
}

// ContextCancelled checks if the context has been cancelled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
