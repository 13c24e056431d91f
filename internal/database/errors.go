// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package database

import (
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/cinemind/internal/logging"
)

// ErrMissingColumn is returned when a CSV file lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

// ColumnError names the column and file that failed resolution.
type ColumnError struct {
	Path     string
	Column   string
	Accepted []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: column %q not found (accepted names: %v)", e.Path, e.Column, e.Accepted)
}

func (e *ColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
