// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"user_id": "1", "items": [...]},
//	  "metadata": {
//	    "timestamp": "2026-10-17T12:00:00Z",
//	    "query_time_ms": 3,
//	    "cached": true
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "UNKNOWN_USER",
//	    "message": "user \"42\" is not in the model"
//	  },
//	  "metadata": {"timestamp": "2026-10-17T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Scoring time in milliseconds
//   - Cached: Whether the ranking was served from the result cache (omitted if false)
//   - RequestID: X-Request-ID of the request
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	Cached      bool      `json:"cached,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Error codes:
//   - VALIDATION_ERROR: Invalid request parameters (400)
//   - UNAUTHORIZED: Missing or wrong admin token (401)
//   - NOT_FOUND: Item not present in any artifact or the catalog (404)
//   - UNKNOWN_USER: User absent from the CF model (404)
//   - NO_VALID_SEEDS: None of the seeds is in the content space (422)
//   - SERVICE_UNAVAILABLE: Required artifact not loaded (503)
//   - INTERNAL_ERROR: Unexpected failure (500)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
