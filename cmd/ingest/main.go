// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Command ingest fills the catalog store with movie metadata.
//
// It joins the links file (movie id to TMDB/IMDb id) with the movies file
// (title and genres), fetches details for every linked movie from the
// metadata API and writes records to the BadgerDB catalog store. Without
// CATALOG_API_KEY (or TMDB_API_KEY) only fallback records built from the
// movies file are written, and only when CATALOG_FALLBACK is enabled.
//
// Usage:
//
//	ingest [-refresh] [-workers N] [-failures]
//
// -refresh refetches movies that already have a record. -failures lists
// the movies whose last fetch failed and exits.
//
// The store is opened for writing, so stop the server (which holds it
// read-only) before ingesting.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cinemind/internal/catalog"
	"github.com/tomtom215/cinemind/internal/config"
	"github.com/tomtom215/cinemind/internal/database"
	"github.com/tomtom215/cinemind/internal/logging"
)

func main() {
	refresh := flag.Bool("refresh", false, "refetch movies that already have a record")
	workers := flag.Int("workers", 0, "concurrent fetches (default CATALOG_WORKERS)")
	failures := flag.Bool("failures", false, "list recorded fetch failures and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingConfig())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := catalog.IngestOptions{
		Workers:  cfg.Catalog.Workers,
		Refresh:  *refresh,
		Fallback: cfg.Catalog.Fallback,
	}
	if *workers > 0 {
		opts.Workers = *workers
	}

	if err := run(ctx, cfg, opts, *failures); err != nil {
		logging.Error().Err(err).Msg("Ingestion failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts catalog.IngestOptions, listFailures bool) error {
	if cfg.Catalog.StorePath == "" {
		return errors.New("CATALOG_STORE_PATH is not set")
	}
	store, err := catalog.OpenStore(cfg.Catalog.StorePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog store")
		}
	}()

	if listFailures {
		return printFailures(ctx, store)
	}

	db, err := database.New(cfg.DatabaseConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	links, err := db.ReadLinks(ctx, cfg.LinksPath())
	if err != nil {
		return err
	}
	movies, err := db.ReadMovies(ctx, cfg.MoviesPath())
	if err != nil {
		logging.Warn().Err(err).Str("path", cfg.MoviesPath()).Msg("Movies file unavailable, fallback records disabled")
		movies = nil
		opts.Fallback = false
	}
	targets := buildTargets(links, movies)

	var fetcher catalog.Fetcher
	if cfg.Catalog.APIKey != "" {
		client, err := catalog.NewClient(cfg.CatalogClientConfig())
		if err != nil {
			return err
		}
		fetcher = client
	} else {
		logging.Warn().Msg("CATALOG_API_KEY not set, only fallback records will be written")
	}

	logging.Info().
		Int("targets", len(targets)).
		Int("workers", opts.Workers).
		Bool("refresh", opts.Refresh).
		Bool("fallback", opts.Fallback).
		Msg("Starting catalog ingestion")

	summary, err := catalog.NewIngester(fetcher, store).Run(ctx, targets, opts)
	if summary != nil {
		logging.Info().
			Int("total", summary.Total).
			Int("stored", summary.Stored).
			Int("skipped", summary.Skipped).
			Int("fallback", summary.Fallback).
			Int("failed", summary.Failed).
			Dur("duration", summary.Duration).
			Msg("Catalog ingestion finished")
	}
	return err
}

// buildTargets joins links with movies by movie id. Movies absent from the
// links file become targets without a catalog id so they can still get a
// fallback record. Links order comes first, then unlinked movies in file
// order.
func buildTargets(links []database.Link, movies []database.Movie) []catalog.Target {
	byID := make(map[string]database.Movie, len(movies))
	for _, m := range movies {
		byID[m.MovieID] = m
	}

	seen := make(map[string]struct{}, len(links))
	targets := make([]catalog.Target, 0, max(len(links), len(movies)))
	for _, l := range links {
		if _, dup := seen[l.MovieID]; dup {
			continue
		}
		seen[l.MovieID] = struct{}{}
		t := catalog.Target{MovieID: l.MovieID, TMDbID: l.TMDbID, IMDbID: l.IMDbID}
		if m, ok := byID[l.MovieID]; ok {
			t.Title = m.Title
			t.Genres = m.Genres
		}
		targets = append(targets, t)
	}
	for _, m := range movies {
		if _, ok := seen[m.MovieID]; ok {
			continue
		}
		seen[m.MovieID] = struct{}{}
		targets = append(targets, catalog.Target{MovieID: m.MovieID, Title: m.Title, Genres: m.Genres})
	}
	return targets
}

func printFailures(ctx context.Context, store *catalog.Store) error {
	failures, err := store.Failures(ctx)
	if err != nil {
		return err
	}
	for _, f := range failures {
		logging.Info().
			Str("movie_id", f.MovieID).
			Int64("tmdb_id", f.TMDbID).
			Str("reason", f.Reason).
			Int("attempts", f.Attempts).
			Time("last_at", f.LastAt).
			Msg("Fetch failure")
	}
	logging.Info().Int("count", len(failures)).Msg("Recorded fetch failures")
	return nil
}
