// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package cache provides a generic thread-safe LRU cache with TTL, used by
// the recommendation engine to memoize ranked lists per model snapshot.
package cache
