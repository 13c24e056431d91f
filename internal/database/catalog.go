// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinemind/internal/metrics"
)

// noGenres is the MovieLens placeholder for an empty genre list.
const noGenres = "(no genres listed)"

// Link maps a MovieLens movie id to external catalog ids.
type Link struct {
	MovieID string
	IMDbID  string
	TMDbID  int64 // zero when the file has no TMDB id
}

// Movie is one row of a MovieLens movies file.
type Movie struct {
	MovieID string
	Title   string
	Genres  []string
}

var linkColumns = []columnSpec{
	{name: "movie_id", accepted: []string{"movie_id", "movieId", "item_id"}},
	{name: "imdb_id", accepted: []string{"imdb_id", "imdbId"}},
	{name: "tmdb_id", accepted: []string{"tmdb_id", "tmdbId"}},
}

var movieColumns = []columnSpec{
	{name: "movie_id", accepted: []string{"movie_id", "movieId", "item_id"}},
	{name: "title", accepted: []string{"title"}},
	{name: "genres", accepted: []string{"genres", "genre"}},
}

// ReadLinks reads a MovieLens links file. Rows without a movie id are skipped;
// a blank or malformed tmdb id yields TMDbID zero.
func (db *DB) ReadLinks(ctx context.Context, path string) ([]Link, error) {
	start := time.Now()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cols, err := db.resolveColumns(ctx, path, linkColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			trim(%s) AS movie_id,
			COALESCE(trim(%s), '') AS imdb_id,
			COALESCE(TRY_CAST(trim(%s) AS BIGINT), 0) AS tmdb_id
		FROM %s
	`, quoteIdent(cols["movie_id"]), quoteIdent(cols["imdb_id"]), quoteIdent(cols["tmdb_id"]), csvSource(path))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var links []Link
	for rows.Next() {
		var (
			movieID sql.NullString
			link    Link
		)
		if err := rows.Scan(&movieID, &link.IMDbID, &link.TMDbID); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		if !movieID.Valid || movieID.String == "" {
			continue
		}
		link.MovieID = movieID.String
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	metrics.RecordDBQuery("read_links", time.Since(start), len(links))
	return links, nil
}

// ReadMovies reads a MovieLens movies file with pipe-separated genres.
func (db *DB) ReadMovies(ctx context.Context, path string) ([]Movie, error) {
	start := time.Now()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cols, err := db.resolveColumns(ctx, path, movieColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			trim(%s) AS movie_id,
			COALESCE(trim(%s), '') AS title,
			COALESCE(trim(%s), '') AS genres
		FROM %s
	`, quoteIdent(cols["movie_id"]), quoteIdent(cols["title"]), quoteIdent(cols["genres"]), csvSource(path))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var movies []Movie
	for rows.Next() {
		var (
			movieID sql.NullString
			title   string
			genres  string
		)
		if err := rows.Scan(&movieID, &title, &genres); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		if !movieID.Valid || movieID.String == "" {
			continue
		}
		movies = append(movies, Movie{
			MovieID: movieID.String,
			Title:   title,
			Genres:  splitGenres(genres),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	metrics.RecordDBQuery("read_movies", time.Since(start), len(movies))
	return movies, nil
}

func splitGenres(s string) []string {
	if s == "" || s == noGenres {
		return nil
	}
	parts := strings.Split(s, "|")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
