// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package models defines the JSON shapes returned by the HTTP API: the
// response envelope and the recommendation, item and health payloads.
package models
