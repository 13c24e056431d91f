// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/cinemind/internal/metrics"
	"github.com/tomtom215/cinemind/internal/recommend"
)

var ratingColumns = []columnSpec{
	{name: "user_id", accepted: []string{"user_id", "userId", "user"}},
	{name: "movie_id", accepted: []string{"movie_id", "movieId", "item_id", "itemId"}},
	{name: "rating", accepted: []string{"rating", "score"}},
}

// RatingsResult is the parsed content of a ratings file.
type RatingsResult struct {
	Ratings []recommend.Rating

	// Rows is the number of data rows read, Skipped the number dropped
	// because an id was blank or the rating did not parse as a finite number.
	Rows    int
	Skipped int
}

// ReadRatings reads a ratings CSV with a header row naming at least
// user_id, movie_id and rating (MovieLens camelCase headers also match).
// Extra columns such as timestamp are ignored. Rows come back in file order.
func (db *DB) ReadRatings(ctx context.Context, path string) (*RatingsResult, error) {
	start := time.Now()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cols, err := db.resolveColumns(ctx, path, ratingColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			trim(%s) AS user_id,
			trim(%s) AS movie_id,
			TRY_CAST(trim(%s) AS DOUBLE) AS rating
		FROM %s
	`, quoteIdent(cols["user_id"]), quoteIdent(cols["movie_id"]), quoteIdent(cols["rating"]), csvSource(path))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	result := &RatingsResult{}
	for rows.Next() {
		var (
			userID sql.NullString
			itemID sql.NullString
			value  sql.NullFloat64
		)
		if err := rows.Scan(&userID, &itemID, &value); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		result.Rows++

		if !userID.Valid || userID.String == "" || !itemID.Valid || itemID.String == "" ||
			!value.Valid || math.IsNaN(value.Float64) || math.IsInf(value.Float64, 0) {
			result.Skipped++
			continue
		}
		result.Ratings = append(result.Ratings, recommend.Rating{
			UserID: userID.String,
			ItemID: itemID.String,
			Value:  value.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	metrics.RecordDBQuery("read_ratings", time.Since(start), result.Rows)
	return result, nil
}

// RatingSummary holds aggregate statistics of a ratings file.
type RatingSummary struct {
	Ratings int
	Users   int
	Items   int
	Mean    float64
	Min     float64
	Max     float64
}

// SummarizeRatings aggregates a ratings file without materializing it.
// Rows skipped by ReadRatings are excluded here as well.
func (db *DB) SummarizeRatings(ctx context.Context, path string) (*RatingSummary, error) {
	start := time.Now()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cols, err := db.resolveColumns(ctx, path, ratingColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		WITH parsed AS (
			SELECT
				trim(%s) AS user_id,
				trim(%s) AS movie_id,
				TRY_CAST(trim(%s) AS DOUBLE) AS rating
			FROM %s
		)
		SELECT
			COUNT(*),
			COUNT(DISTINCT user_id),
			COUNT(DISTINCT movie_id),
			COALESCE(AVG(rating), 0),
			COALESCE(MIN(rating), 0),
			COALESCE(MAX(rating), 0)
		FROM parsed
		WHERE user_id IS NOT NULL AND user_id <> ''
		  AND movie_id IS NOT NULL AND movie_id <> ''
		  AND rating IS NOT NULL AND isfinite(rating)
	`, quoteIdent(cols["user_id"]), quoteIdent(cols["movie_id"]), quoteIdent(cols["rating"]), csvSource(path))

	var s RatingSummary
	if err := db.conn.QueryRowContext(ctx, query).Scan(&s.Ratings, &s.Users, &s.Items, &s.Mean, &s.Min, &s.Max); err != nil {
		return nil, fmt.Errorf("summarize ratings: %w", err)
	}

	metrics.RecordDBQuery("summarize_ratings", time.Since(start), 1)
	return &s, nil
}
