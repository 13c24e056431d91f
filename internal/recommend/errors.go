// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrInsufficientData   = errors.New("insufficient data")
	ErrCorruptArtifact    = errors.New("corrupt artifact")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrUnknownUser        = errors.New("unknown user")
	ErrNoValidSeeds       = errors.New("no valid seeds")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// InsufficientDataError aborts a training run that has nothing usable left
// after filtering.
type InsufficientDataError struct {
	Reason     string
	MinRatings int
	Ratings    int
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s (ratings=%d, min_ratings_per_user=%d)",
		e.Reason, e.Ratings, e.MinRatings)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// CorruptArtifactError reports an artifact that exists but cannot be used:
// undecodable, checksum mismatch, unsupported schema or a broken invariant.
type CorruptArtifactError struct {
	Path   string
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *CorruptArtifactError) Error() string {
	msg := fmt.Sprintf("corrupt artifact %s: %s", e.Path, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *CorruptArtifactError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrCorruptArtifact.
func (e *CorruptArtifactError) Is(target error) bool {
	return target == ErrCorruptArtifact
}

// ArtifactNotFoundError reports a missing artifact file.
type ArtifactNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ArtifactNotFoundError) Error() string {
	return "artifact not found: " + e.Path
}

// Is reports whether target is ErrArtifactNotFound.
func (e *ArtifactNotFoundError) Is(target error) bool {
	return target == ErrArtifactNotFound
}

// UnknownUserError is returned when CF scoring is requested for a user that
// is not in the trained index and fallback is disabled.
type UnknownUserError struct {
	UserID string
}

// Error implements the error interface.
func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("unknown user %q", e.UserID)
}

// Is reports whether target is ErrUnknownUser.
func (e *UnknownUserError) Is(target error) bool {
	return target == ErrUnknownUser
}

// NoValidSeedsError is returned when none of the seed items exist in the
// content space.
type NoValidSeedsError struct {
	Seeds []string
}

// Error implements the error interface.
func (e *NoValidSeedsError) Error() string {
	const maxShown = 10
	shown := e.Seeds
	suffix := ""
	if len(shown) > maxShown {
		shown = shown[:maxShown]
		suffix = ", ..."
	}
	return fmt.Sprintf("no valid seeds among [%s%s]", strings.Join(shown, ", "), suffix)
}

// Is reports whether target is ErrNoValidSeeds.
func (e *NoValidSeedsError) Is(target error) bool {
	return target == ErrNoValidSeeds
}
