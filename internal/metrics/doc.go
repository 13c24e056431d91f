// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package metrics defines the Prometheus collectors for Cinemind.
//
// Collectors are registered on the default registry through promauto and
// exposed by the API at /metrics. Callers should prefer the Record*
// helpers over touching the vectors directly so label values stay
// consistent:
//
//	start := time.Now()
//	items, err := engine.RecommendForUser(ctx, req)
//	metrics.RecordRecommendation("user", outcome, time.Since(start))
package metrics
