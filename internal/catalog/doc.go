// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package catalog holds movie metadata used to build content vectors and
// to enrich API responses.
//
// # Components
//
//   - Record: title, overview, genres, cast, director, keywords, year and
//     poster of one movie; ContentText renders the TF-IDF input.
//   - Client: TMDB-compatible metadata client. Requests are paced with a
//     token bucket (golang.org/x/time/rate), retried on HTTP 429 honoring
//     Retry-After, and guarded by a circuit breaker (sony/gobreaker).
//   - Store: BadgerDB store of records keyed by item id, plus the last
//     ingestion failure per item.
//   - Ingester: bounded parallel fetch-and-store over a target list.
//
// # Ingestion
//
// Items already stored are skipped unless Refresh is set. A failed fetch
// is recorded in the store and the run continues. With Fallback enabled,
// items without a catalog id (or whose fetch failed) get a record built
// from the local movies file instead.
//
// # Thread Safety
//
// Client, Store and Ingester are safe for concurrent use.
package catalog
