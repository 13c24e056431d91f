// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinemind/internal/catalog"
	"github.com/tomtom215/cinemind/internal/database"
	"github.com/tomtom215/cinemind/internal/logging"
	"github.com/tomtom215/cinemind/internal/metrics"
	"github.com/tomtom215/cinemind/internal/recommend"
	"github.com/tomtom215/cinemind/internal/recommend/algorithms"
	"github.com/tomtom215/cinemind/internal/recommend/storage"
)

// Stage names used in logs and metrics.
const (
	StageCF      = "cf"
	StageContent = "content"
)

// ErrNoDocumentSource is returned by BuildContent when the job has no catalog.
var ErrNoDocumentSource = errors.New("training: no document source configured")

// RatingSource reads a ratings file.
type RatingSource interface {
	ReadRatings(ctx context.Context, path string) (*database.RatingsResult, error)
}

// DocumentSource iterates catalog records.
type DocumentSource interface {
	Each(ctx context.Context, fn func(*catalog.Record) error) error
}

// Paths locates the job's input and outputs.
type Paths struct {
	Ratings string
	Model   string
	Content string
}

// ModelReport describes a CF training run.
type ModelReport struct {
	Path          string
	Rows          int
	SkippedRows   int
	Users         int
	Items         int
	Ratings       int
	DroppedUsers  int
	Duplicates    int
	RequestedRank int
	Rank          int
	Duration      time.Duration
}

// ContentReport describes a content build.
type ContentReport struct {
	Path      string
	Documents int
	Terms     int
	EmptyDocs int
	Duration  time.Duration
}

// Job trains the CF model and builds the content space, writing each
// artifact atomically. The serving process picks them up on reload.
type Job struct {
	paths   Paths
	config  *recommend.Config
	ratings RatingSource
	docs    DocumentSource
	trainer algorithms.ModelTrainer
	builder algorithms.ContentBuilder
	logger  zerolog.Logger
}

// NewJob creates a job. docs may be nil when only the CF stage runs.
func NewJob(cfg *recommend.Config, paths Paths, ratings RatingSource, docs DocumentSource) (*Job, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Job{
		paths:   paths,
		config:  cfg,
		ratings: ratings,
		docs:    docs,
		trainer: algorithms.NewSVDTrainer(algorithms.SVDConfig{
			Rank:      cfg.Training.Rank,
			Centering: cfg.Training.Centering,
		}),
		builder: algorithms.NewTFIDFBuilder(algorithms.TFIDFConfig{
			MinDF:       cfg.Content.MinDF,
			MaxFeatures: cfg.Content.MaxFeatures,
		}),
		logger: logging.With().Str("component", "training").Logger(),
	}, nil
}

// TrainModel reads ratings, builds the rating matrix, factorizes it and
// saves the model artifact.
func (j *Job) TrainModel(ctx context.Context) (report *ModelReport, err error) {
	start := time.Now()
	defer func() { metrics.RecordTraining(StageCF, time.Since(start), err) }()

	if j.ratings == nil {
		return nil, fmt.Errorf("train model: no rating source configured")
	}

	j.logger.Info().Str("ratings", j.paths.Ratings).Msg("Reading ratings")
	raw, err := j.ratings.ReadRatings(ctx, j.paths.Ratings)
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	rm, err := algorithms.BuildRatingMatrix(raw.Ratings, j.config.Training.MinRatingsPerUser)
	if err != nil {
		return nil, fmt.Errorf("build rating matrix: %w", err)
	}
	j.logger.Info().
		Int("users", len(rm.UserIDs)).
		Int("items", len(rm.ItemIDs)).
		Int("ratings", rm.NumRatings()).
		Int("dropped_users", rm.DroppedUsers).
		Int("skipped_rows", raw.Skipped).
		Msg("Rating matrix built")

	model, err := j.trainer.Train(ctx, rm)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	if err := storage.SaveModel(ctx, j.paths.Model, model); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}

	users, items := len(model.UserIDs), len(model.ItemIDs)
	metrics.RecordModelShape(users, items, model.Rank(), rm.NumRatings())

	report = &ModelReport{
		Path:          j.paths.Model,
		Rows:          raw.Rows,
		SkippedRows:   raw.Skipped,
		Users:         users,
		Items:         items,
		Ratings:       rm.NumRatings(),
		DroppedUsers:  rm.DroppedUsers,
		Duplicates:    rm.DuplicateRatings,
		RequestedRank: j.config.Training.Rank,
		Rank:          model.Rank(),
		Duration:      time.Since(start),
	}
	j.logger.Info().
		Str("path", report.Path).
		Int("rank", report.Rank).
		Int("requested_rank", report.RequestedRank).
		Dur("duration", report.Duration).
		Msg("CF model saved")
	return report, nil
}

// BuildContent vectorizes every catalog record and saves the content artifact.
func (j *Job) BuildContent(ctx context.Context) (report *ContentReport, err error) {
	start := time.Now()
	defer func() { metrics.RecordTraining(StageContent, time.Since(start), err) }()

	if j.docs == nil {
		return nil, ErrNoDocumentSource
	}

	docs, err := Documents(ctx, j.docs)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	j.logger.Info().Int("documents", len(docs)).Msg("Building content space")

	cs, err := j.builder.Build(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("build content space: %w", err)
	}

	if err := storage.SaveContent(ctx, j.paths.Content, cs); err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}
	metrics.RecordContentShape(cs.Len(), len(cs.Vocabulary))

	report = &ContentReport{
		Path:      j.paths.Content,
		Documents: cs.Len(),
		Terms:     len(cs.Vocabulary),
		EmptyDocs: cs.Meta.EmptyDocs,
		Duration:  time.Since(start),
	}
	j.logger.Info().
		Str("path", report.Path).
		Int("terms", report.Terms).
		Int("empty_docs", report.EmptyDocs).
		Dur("duration", report.Duration).
		Msg("Content space saved")
	return report, nil
}

// Report is the outcome of Run.
type Report struct {
	Model   *ModelReport
	Content *ContentReport
}

// Run executes the CF stage and, when a document source is configured,
// the content stage. A failed stage aborts the run; no later artifact is
// published.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	var report Report

	model, err := j.TrainModel(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("CF stage failed, aborting run")
		return &report, fmt.Errorf("%s stage: %w", StageCF, err)
	}
	report.Model = model

	if j.docs == nil {
		return &report, nil
	}
	if err := ctx.Err(); err != nil {
		return &report, fmt.Errorf("%s stage: %w", StageContent, err)
	}

	content, err := j.BuildContent(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("Content stage failed")
		return &report, fmt.Errorf("%s stage: %w", StageContent, err)
	}
	report.Content = content
	return &report, nil
}

// Documents converts catalog records into builder documents in iteration order.
func Documents(ctx context.Context, src DocumentSource) ([]algorithms.Document, error) {
	var docs []algorithms.Document
	err := src.Each(ctx, func(rec *catalog.Record) error {
		docs = append(docs, algorithms.Document{
			ItemID:    rec.MovieID,
			CatalogID: rec.TMDbID,
			Text:      rec.ContentText(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
