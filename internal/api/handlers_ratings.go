// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinemind/internal/models"
)

const (
	defaultRatingsLimit     = 6
	defaultRatingsMinRating = 4.0
)

type userRatingsRequest struct {
	UserID    string  `json:"user_id" validate:"required,entityid"`
	Limit     int     `json:"limit" validate:"min=1,max=40"`
	MinRating float64 `json:"min_rating" validate:"gte=0,lte=5"`
}

// UserRatings handles GET /api/v1/users/{userID}/ratings
// Returns the user's highest training ratings, enriched from the catalog.
func (h *Handler) UserRatings(w http.ResponseWriter, r *http.Request) {
	limit, ok := getIntParam(r, "limit", defaultRatingsLimit)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "limit must be an integer", nil)
		return
	}
	minRating, ok := getFloatParam(r, "min_rating", defaultRatingsMinRating)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "min_rating must be a number", nil)
		return
	}
	req := userRatingsRequest{UserID: chi.URLParam(r, "userID"), Limit: limit, MinRating: minRating}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	start := time.Now()
	snap := h.engine.Snapshot()
	if snap == nil || snap.Model == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "cf model not loaded", nil)
		return
	}
	if !snap.Model.HasUser(req.UserID) {
		respondError(w, r, http.StatusNotFound, ErrCodeUnknownUser, "user not in trained model", nil)
		return
	}
	ratings, ok := snap.Model.Ratings(req.UserID, req.MinRating, req.Limit)
	if !ok {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "model artifact carries no rating values, retrain to enable", nil)
		return
	}

	out := models.UserRatingList{
		UserID:          req.UserID,
		SnapshotVersion: snap.Version,
		Count:           len(ratings),
		Ratings:         make([]models.UserRatingItem, len(ratings)),
	}
	for i, rt := range ratings {
		out.Ratings[i] = models.UserRatingItem{ItemID: rt.ItemID, Rating: rt.Rating}
		if h.catalog == nil {
			continue
		}
		if rec, err := h.catalog.Get(rt.ItemID); err == nil {
			out.Ratings[i].Title = rec.Title
			out.Ratings[i].Year = rec.ReleaseYear
			out.Ratings[i].PosterPath = rec.PosterPath
		}
	}
	respondSuccess(w, r, out, time.Since(start), false)
}
