// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Record sources.
const (
	SourceTMDb      = "tmdb"
	SourceMovieLens = "movielens"
)

// Record is the catalog content stored per item.
type Record struct {
	MovieID     string    `json:"movie_id"`
	TMDbID      int64     `json:"tmdb_id,omitempty"`
	IMDbID      string    `json:"imdb_id,omitempty"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	Cast        []string  `json:"cast,omitempty"`
	Director    string    `json:"director,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	ReleaseYear int       `json:"release_year,omitempty"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// ContentText joins the descriptive fields into the lowercased text the
// TF-IDF builder consumes: title, genres, cast, director, keywords, overview.
// Empty fields are skipped.
func (r *Record) ContentText() string {
	parts := make([]string, 0, 6)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	add(r.Title)
	add(strings.Join(r.Genres, " "))
	add(strings.Join(r.Cast, " "))
	add(r.Director)
	add(strings.Join(r.Keywords, " "))
	add(r.Overview)
	return strings.ToLower(strings.Join(parts, " "))
}

// titleYear matches a trailing "(1995)" in MovieLens titles.
var titleYear = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)

// SplitTitleYear separates a MovieLens title from its trailing year.
// The year is zero when the title carries none.
func SplitTitleYear(title string) (string, int) {
	m := titleYear.FindStringSubmatchIndex(title)
	if m == nil {
		return strings.TrimSpace(title), 0
	}
	year, err := strconv.Atoi(title[m[2]:m[3]])
	if err != nil {
		return strings.TrimSpace(title), 0
	}
	return strings.TrimSpace(title[:m[0]]), year
}

// parseYear extracts the year of a YYYY-MM-DD release date.
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
