// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/cinemind/internal/catalog"
	"github.com/tomtom215/cinemind/internal/logging"
	"github.com/tomtom215/cinemind/internal/models"
	"github.com/tomtom215/cinemind/internal/recommend"
)

// Version is reported by the health endpoint. It is set at build time.
var Version = "dev"

// CatalogLookup resolves movie metadata for response enrichment.
// *catalog.Store implements it.
type CatalogLookup interface {
	Get(movieID string) (*catalog.Record, error)
}

// HandlerConfig holds request-time settings of the HTTP layer.
type HandlerConfig struct {
	DefaultN       int
	RatingMin      float64
	RatingMax      float64
	RequestTimeout time.Duration
}

// DefaultHandlerConfig returns the settings used when none are given.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		DefaultN:       10,
		RatingMin:      0.5,
		RatingMax:      5.0,
		RequestTimeout: 10 * time.Second,
	}
}

// Handler serves the recommendation API from an Engine.
type Handler struct {
	engine    *recommend.Engine
	catalog   CatalogLookup
	cfg       HandlerConfig
	startTime time.Time
}

// NewHandler creates a handler. lookup may be nil, in which case items
// are returned without titles or posters.
func NewHandler(engine *recommend.Engine, lookup CatalogLookup, cfg HandlerConfig) *Handler {
	def := DefaultHandlerConfig()
	if cfg.DefaultN <= 0 {
		cfg.DefaultN = def.DefaultN
	}
	if cfg.RatingMin >= cfg.RatingMax {
		cfg.RatingMin, cfg.RatingMax = def.RatingMin, def.RatingMax
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	return &Handler{
		engine:    engine,
		catalog:   lookup,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// requestContext bounds a handler's engine work.
func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.cfg.RequestTimeout)
}

// toItems converts a ranked list to response items. withDisplay adds the
// clipped predicted rating, which only makes sense for CF scores.
func (h *Handler) toItems(ctx context.Context, scored []recommend.ScoredItem, withDisplay bool) []models.RecommendedItem {
	items := make([]models.RecommendedItem, len(scored))
	for i, s := range scored {
		items[i] = models.RecommendedItem{
			ItemID:     s.ItemID,
			Rank:       i + 1,
			Score:      s.Score,
			Components: s.Components,
		}
		if withDisplay {
			display := clip(s.Score, h.cfg.RatingMin, h.cfg.RatingMax)
			items[i].DisplayScore = &display
		}
	}
	h.enrich(ctx, items)
	return items
}

// enrich fills catalog fields. Lookup failures other than a missing
// record are logged once and leave the remaining items untouched.
func (h *Handler) enrich(ctx context.Context, items []models.RecommendedItem) {
	if h.catalog == nil {
		return
	}
	for i := range items {
		rec, err := h.catalog.Get(items[i].ItemID)
		if err != nil {
			if !errors.Is(err, catalog.ErrRecordNotFound) {
				logging.Ctx(ctx).Warn().Err(err).Msg("catalog enrichment failed")
				return
			}
			continue
		}
		items[i].Title = rec.Title
		items[i].Year = rec.ReleaseYear
		items[i].Genres = rec.Genres
		items[i].PosterPath = rec.PosterPath
	}
}

func clip(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
