// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package database reads the offline training inputs through DuckDB.
//
// # Overview
//
// Training data arrives as MovieLens-style CSV files. Rather than parse
// them by hand, the package lets DuckDB's read_csv scan them, which keeps
// multi-million row files fast and gives SQL aggregates (SummarizeRatings)
// for free.
//
// Files:
//   - database.go: connection lifecycle and column resolution
//   - ratings.go: ratings file reader and summary
//   - catalog.go: links and movies readers used by catalog ingestion
//   - errors.go: column errors and close helpers
//
// # Column Names
//
// Header names are matched case-insensitively with underscores ignored,
// so both "user_id" and MovieLens "userId" resolve. A missing column
// yields a *ColumnError matching ErrMissingColumn.
//
// # Malformed Rows
//
// Every column is read as VARCHAR. Rows with a blank id or a rating that
// does not parse as a finite number are counted in RatingsResult.Skipped
// and dropped; they never fail the read.
//
// # Database Technology
//
// DuckDB via the CGO driver github.com/duckdb/duckdb-go/v2. The default
// configuration is in-memory; nothing is persisted.
package database
