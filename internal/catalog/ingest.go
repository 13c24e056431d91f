// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinemind/internal/logging"
	"github.com/tomtom215/cinemind/internal/metrics"
)

// Ingestion outcomes.
const (
	OutcomeStored   = "stored"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomeFallback = "fallback"
)

// ErrNoResults is recorded when a title search finds no catalog entry.
var ErrNoResults = errors.New("no_results")

// Fetcher produces a catalog record for a movie with a known catalog id and
// resolves catalog ids for movies that only have a title.
type Fetcher interface {
	FetchRecord(ctx context.Context, movieID string, tmdbID int64) (*Record, error)
	Search(ctx context.Context, title string, year int) ([]SearchResult, error)
}

// Target is one item to ingest. Title and Genres come from the local
// movies file and back the fallback record.
type Target struct {
	MovieID string
	TMDbID  int64
	IMDbID  string
	Title   string
	Genres  []string
}

// IngestOptions controls an ingestion run.
type IngestOptions struct {
	// Workers bounds concurrent fetches. Values below 1 mean 1.
	Workers int

	// Refresh refetches items that already have a record.
	Refresh bool

	// Fallback stores a record built from Title and Genres when the item has
	// no catalog id, no fetcher is configured, or the fetch fails.
	Fallback bool
}

// IngestSummary counts the outcome of every target.
type IngestSummary struct {
	Total    int
	Stored   int
	Skipped  int
	Failed   int
	Fallback int
	Duration time.Duration
}

// Ingester fetches catalog records and writes them to a Store.
// Per-item failures are recorded and never abort the run.
type Ingester struct {
	fetcher Fetcher
	store   *Store
	logger  zerolog.Logger
}

// NewIngester creates an ingester. fetcher may be nil, in which case only
// fallback records are produced.
func NewIngester(fetcher Fetcher, store *Store) *Ingester {
	return &Ingester{
		fetcher: fetcher,
		store:   store,
		logger:  logging.With().Str("component", "catalog-ingest").Logger(),
	}
}

// Run ingests targets. It returns an error only for a cancelled context
// or a store failure.
func (in *Ingester) Run(ctx context.Context, targets []Target, opts IngestOptions) (*IngestSummary, error) {
	start := time.Now()
	var stored, skipped, failed, fallback atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))

	for _, t := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome, err := in.ingestOne(gctx, t, opts)
			if err != nil {
				return err
			}
			metrics.RecordIngest(outcome)
			switch outcome {
			case OutcomeStored:
				stored.Add(1)
			case OutcomeSkipped:
				skipped.Add(1)
			case OutcomeFallback:
				fallback.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := &IngestSummary{
		Total:    len(targets),
		Stored:   int(stored.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
		Fallback: int(fallback.Load()),
		Duration: time.Since(start),
	}
	in.logger.Info().
		Int("total", summary.Total).
		Int("stored", summary.Stored).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("fallback", summary.Fallback).
		Dur("duration", summary.Duration).
		Msg("Catalog ingestion finished")

	return summary, err
}

func (in *Ingester) ingestOne(ctx context.Context, t Target, opts IngestOptions) (string, error) {
	if !opts.Refresh {
		exists, err := in.store.Has(t.MovieID)
		if err != nil {
			return "", err
		}
		if exists {
			return OutcomeSkipped, nil
		}
	}

	var fetchErr error
	switch {
	case in.fetcher == nil:
		fetchErr = errors.New("no catalog client configured")
	case t.TMDbID <= 0 && t.Title == "":
		fetchErr = errors.New("no catalog id")
	default:
		tmdbID := t.TMDbID
		var err error
		if tmdbID <= 0 {
			tmdbID, err = in.resolve(ctx, t)
		}
		if err == nil {
			var rec *Record
			rec, err = in.fetcher.FetchRecord(ctx, t.MovieID, tmdbID)
			if err == nil {
				if rec.IMDbID == "" {
					rec.IMDbID = t.IMDbID
				}
				if err := in.store.Put(rec); err != nil {
					return "", fmt.Errorf("store %s: %w", t.MovieID, err)
				}
				return OutcomeStored, nil
			}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		fetchErr = err
		in.logger.Warn().Err(err).Str("movie_id", t.MovieID).Int64("tmdb_id", tmdbID).Msg("Catalog fetch failed")
	}

	if opts.Fallback && t.Title != "" {
		if err := in.store.Put(fallbackRecord(t)); err != nil {
			return "", fmt.Errorf("store %s: %w", t.MovieID, err)
		}
		return OutcomeFallback, nil
	}

	if err := in.store.RecordFailure(t.MovieID, t.TMDbID, fetchErr); err != nil {
		return "", fmt.Errorf("record failure for %s: %w", t.MovieID, err)
	}
	return OutcomeFailed, nil
}

// resolve finds the catalog id of an unlinked movie by title and year,
// taking the first search hit.
func (in *Ingester) resolve(ctx context.Context, t Target) (int64, error) {
	title, year := SplitTitleYear(t.Title)
	results, err := in.fetcher.Search(ctx, title, year)
	if err != nil {
		return 0, fmt.Errorf("search %q: %w", title, err)
	}
	if len(results) == 0 || results[0].ID <= 0 {
		return 0, ErrNoResults
	}
	return results[0].ID, nil
}

// fallbackRecord builds a record from the local movies file alone.
func fallbackRecord(t Target) *Record {
	title, year := SplitTitleYear(t.Title)
	return &Record{
		MovieID:     t.MovieID,
		TMDbID:      t.TMDbID,
		IMDbID:      t.IMDbID,
		Title:       title,
		Genres:      t.Genres,
		ReleaseYear: year,
		Source:      SourceMovieLens,
		FetchedAt:   time.Now().UTC(),
	}
}
