// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package validation provides request validation using go-playground/validator v10.
//
// A thread-safe singleton validator reports field names from json tags and
// registers the entityid rule for user and item identifiers. Failures come
// back as *RequestValidationError, which converts to the VALIDATION_ERROR
// payload the HTTP layer returns.
//
//	type seedRequest struct {
//	    SeedIDs []string `json:"seed_ids" validate:"required,min=1,max=50,dive,entityid"`
//	    N       int      `json:"n" validate:"omitempty,min=1,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
