// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cinemind/internal/recommend"
)

// Error codes for API responses
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnknownUser        = "UNKNOWN_USER"
	ErrCodeNoValidSeeds       = "NO_VALID_SEEDS"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// engineErrorStatus maps an engine error to an HTTP status and error code.
func engineErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrUnknownUser):
		return http.StatusNotFound, ErrCodeUnknownUser
	case errors.Is(err, recommend.ErrNoValidSeeds):
		return http.StatusUnprocessableEntity, ErrCodeNoValidSeeds
	case errors.Is(err, recommend.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// respondEngineError writes the error response for a failed engine call.
// Only unexpected failures are logged at error level.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := engineErrorStatus(err)
	message := err.Error()
	var logged error
	if status == http.StatusInternalServerError {
		message = "Failed to generate recommendations"
		logged = err
	}
	respondError(w, r, status, code, message, logged)
}
