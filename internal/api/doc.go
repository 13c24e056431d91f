// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

/*
Package api provides the HTTP API of Cinemind.

Routes:

	GET  /health                                      snapshot status (always 200)
	GET  /health/live                                 liveness probe
	GET  /health/ready                                503 until an artifact is loaded
	GET  /metrics                                     Prometheus exposition
	GET  /api/v1/recommendations/users/{userID}       CF ranking (?n=10&exclude_rated=true)
	GET  /api/v1/recommendations/users/{userID}/hybrid
	POST /api/v1/recommendations/seeds                {"seed_ids":[...],"n":10,"mode":"content|hybrid","diversity":0..1}
	GET  /api/v1/users/{userID}/ratings               highest-rated items (?limit=6&min_rating=4)
	GET  /api/v1/items/{itemID}                       catalog record and artifact statistics
	POST /api/v1/admin/reload                         reload artifacts (Authorization: Bearer ADMIN_TOKEN)

Every response uses the models.APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":2,"cached":true}}
	{"status":"error","data":null,"error":{"code":"UNKNOWN_USER","message":"..."},"metadata":{...}}

Engine errors map to status codes as follows:

	UnknownUserError        404 UNKNOWN_USER
	NoValidSeedsError       422 NO_VALID_SEEDS
	artifact not loaded     503 SERVICE_UNAVAILABLE
	invalid parameters      400 VALIDATION_ERROR

CF results carry display_score, the predicted rating clipped to the
configured rating range; score stays unclipped.

Usage:

	handler := api.NewHandler(engine, catalogStore, api.HandlerConfig{DefaultN: 10})
	router := api.NewRouter(handler, &api.ChiMiddlewareConfig{...})
	srv := &http.Server{Addr: ":8000", Handler: router.Setup()}
*/
package api
