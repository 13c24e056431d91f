// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Command train builds the serving artifacts: the CF model from the
// ratings file and the content space from the catalog store.
//
// Usage:
//
//	train [-stage all|cf|content] [-summary] [-inspect]
//
// -summary prints aggregate statistics of the ratings file before
// training. -inspect prints the metadata of the current artifacts and
// exits without training.
//
// Inputs and outputs come from the usual configuration (config.yaml and
// environment), e.g. MLR_DATA_DIR, MLR_RATINGS_FILE, MLR_ARTIFACTS_DIR,
// MLR_SVD_RANK, MLR_MIN_RATINGS_PER_USER and CATALOG_STORE_PATH.
// Artifacts are written atomically; a running server reloads them when
// WATCH_ARTIFACTS is enabled.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cinemind/internal/catalog"
	"github.com/tomtom215/cinemind/internal/config"
	"github.com/tomtom215/cinemind/internal/database"
	"github.com/tomtom215/cinemind/internal/logging"
	"github.com/tomtom215/cinemind/internal/recommend"
	"github.com/tomtom215/cinemind/internal/recommend/storage"
	"github.com/tomtom215/cinemind/internal/recommend/training"
)

const stageAll = "all"

func main() {
	stage := flag.String("stage", stageAll, "stage to run: all, cf or content")
	summary := flag.Bool("summary", false, "print ratings file statistics before training")
	inspect := flag.Bool("inspect", false, "print artifact metadata and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingConfig())

	if *inspect {
		inspectArtifacts(cfg)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *stage, *summary); err != nil {
		logging.Error().Err(err).Msg("Training failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, stage string, summary bool) error {
	switch stage {
	case stageAll, training.StageCF, training.StageContent:
	default:
		return fmt.Errorf("unknown stage %q, want all, cf or content", stage)
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

	if summary && stage != training.StageContent {
		s, err := db.SummarizeRatings(ctx, cfg.RatingsPath())
		if err != nil {
			return fmt.Errorf("summarize ratings: %w", err)
		}
		logging.Info().
			Int("ratings", s.Ratings).
			Int("users", s.Users).
			Int("items", s.Items).
			Float64("mean", s.Mean).
			Float64("min", s.Min).
			Float64("max", s.Max).
			Str("path", cfg.RatingsPath()).
			Msg("Ratings summary")
	}

	var docs training.DocumentSource
	if stage != training.StageCF {
		store, err := openCatalog(cfg)
		switch {
		case err == nil:
			defer store.Close()
			docs = store
		case stage == training.StageContent:
			return err
		default:
			logging.Warn().Err(err).Msg("Catalog store unavailable, skipping content stage")
		}
	}

	job, err := training.NewJob(cfg.RecommendConfig(), training.Paths{
		Ratings: cfg.RatingsPath(),
		Model:   cfg.ModelPath(),
		Content: cfg.ContentPath(),
	}, db, docs)
	if err != nil {
		return err
	}

	switch stage {
	case training.StageCF:
		report, err := job.TrainModel(ctx)
		logModelReport(report)
		return err
	case training.StageContent:
		report, err := job.BuildContent(ctx)
		logContentReport(report)
		return err
	default:
		report, err := job.Run(ctx)
		if report != nil {
			logModelReport(report.Model)
			logContentReport(report.Content)
		}
		return err
	}
}

func openCatalog(cfg *config.Config) (*catalog.Store, error) {
	if cfg.Catalog.StorePath == "" {
		return nil, errors.New("CATALOG_STORE_PATH is not set")
	}
	return catalog.OpenStoreReadOnly(cfg.Catalog.StorePath)
}

func logModelReport(r *training.ModelReport) {
	if r == nil {
		return
	}
	logging.Info().
		Str("path", r.Path).
		Int("rows", r.Rows).
		Int("skipped_rows", r.SkippedRows).
		Int("users", r.Users).
		Int("items", r.Items).
		Int("ratings", r.Ratings).
		Int("dropped_users", r.DroppedUsers).
		Int("duplicates", r.Duplicates).
		Int("requested_rank", r.RequestedRank).
		Int("rank", r.Rank).
		Dur("duration", r.Duration).
		Msg("CF model written")
}

func logContentReport(r *training.ContentReport) {
	if r == nil {
		return
	}
	logging.Info().
		Str("path", r.Path).
		Int("documents", r.Documents).
		Int("terms", r.Terms).
		Int("empty_documents", r.EmptyDocs).
		Dur("duration", r.Duration).
		Msg("Content space written")
}

func inspectArtifacts(cfg *config.Config) {
	for _, path := range []string{cfg.ModelPath(), cfg.ContentPath()} {
		meta, err := storage.ReadMetadata(path)
		switch {
		case errors.Is(err, recommend.ErrArtifactNotFound):
			logging.Warn().Str("path", path).Msg("Artifact not found")
			continue
		case err != nil:
			logging.Error().Err(err).Str("path", path).Msg("Artifact unreadable")
			continue
		}
		logging.Info().
			Str("path", path).
			Str("kind", meta.Kind).
			Int("schema_version", meta.SchemaVersion).
			Time("built_at", meta.BuiltAt).
			Time("saved_at", meta.SavedAt).
			Int("rows", meta.Rows).
			Int("cols", meta.Cols).
			Int("rank", meta.Rank).
			Int64("size_bytes", meta.SizeBytes).
			Str("checksum", meta.Checksum).
			Msg("Artifact")
	}
}
