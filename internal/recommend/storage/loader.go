// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package storage

import (
	"context"
	"errors"

	"github.com/tomtom215/cinemind/internal/metrics"
	"github.com/tomtom215/cinemind/internal/recommend"
)

// Loader reads artifacts from fixed paths. It implements recommend.Loader.
type Loader struct {
	ModelPath   string
	ContentPath string
}

// NewLoader creates a loader for the given artifact paths.
func NewLoader(modelPath, contentPath string) *Loader {
	return &Loader{ModelPath: modelPath, ContentPath: contentPath}
}

// LoadModel loads the CF model.
func (l *Loader) LoadModel(ctx context.Context) (*recommend.Model, error) {
	m, err := LoadModel(ctx, l.ModelPath)
	metrics.RecordArtifactLoad(KindModel, loadResult(err))
	return m, err
}

// LoadContent loads the content space.
func (l *Loader) LoadContent(ctx context.Context) (*recommend.ContentSpace, error) {
	cs, err := LoadContent(ctx, l.ContentPath)
	metrics.RecordArtifactLoad(KindContent, loadResult(err))
	return cs, err
}

// Paths returns the artifact paths, for watching.
func (l *Loader) Paths() []string {
	return []string{l.ModelPath, l.ContentPath}
}

func loadResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recommend.ErrArtifactNotFound):
		return "not_found"
	case errors.Is(err, recommend.ErrCorruptArtifact):
		return "corrupt"
	default:
		return "error"
	}
}
