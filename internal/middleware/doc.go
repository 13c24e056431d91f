// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: UUID-based request tracking, exposed through X-Request-ID
    and the logging context
  - PrometheusMetrics: request count and latency per chi route pattern
  - AccessLog: one structured log line per request

All middleware use the func(http.Handler) http.Handler shape so they plug
straight into chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

Route labels come from chi's RoutePattern, so /api/v1/items/42 and
/api/v1/items/7 share the label /api/v1/items/{itemID}. Requests that
match no route are labelled "unmatched".
*/
package middleware
