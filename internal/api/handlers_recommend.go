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
	"github.com/tomtom215/cinemind/internal/recommend"
)

// userRecommendRequest holds the validated inputs of the user endpoints.
type userRecommendRequest struct {
	UserID string `json:"user_id" validate:"required,entityid"`
	N      int    `json:"n" validate:"min=1,max=100"`
}

// seedRecommendRequest is the body of POST /recommendations/seeds.
type seedRecommendRequest struct {
	SeedIDs   []string `json:"seed_ids" validate:"required,min=1,max=50,dive,entityid"`
	N         int      `json:"n" validate:"omitempty,min=1,max=100"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=content hybrid"`
	Diversity *float64 `json:"diversity" validate:"omitempty,gte=0,lte=1"`
}

// parseUserRequest reads the path and query of a user endpoint. It writes
// the error response itself and reports whether the caller should go on.
func (h *Handler) parseUserRequest(w http.ResponseWriter, r *http.Request) (userRecommendRequest, bool) {
	n, ok := getIntParam(r, "n", h.cfg.DefaultN)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "n must be an integer", nil)
		return userRecommendRequest{}, false
	}
	req := userRecommendRequest{UserID: chi.URLParam(r, "userID"), N: n}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return userRecommendRequest{}, false
	}
	return req, true
}

// UserRecommendations handles GET /api/v1/recommendations/users/{userID}
// Returns collaborative-filtering recommendations for a user.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseUserRequest(w, r)
	if !ok {
		return
	}
	excludeRated, ok := getBoolParam(r, "exclude_rated")
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "exclude_rated must be a boolean", nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	start := time.Now()
	res, err := h.engine.RecommendForUser(ctx, recommend.UserRequest{
		UserID:       req.UserID,
		N:            req.N,
		ExcludeRated: excludeRated,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, models.RecommendationList{
		UserID:          req.UserID,
		Mode:            "cf",
		Fallback:        res.Fallback,
		SnapshotVersion: res.SnapshotVersion,
		Count:           len(res.Items),
		Items:           h.toItems(ctx, res.Items, true),
	}, time.Since(start), res.Cached)
}

// UserHybridRecommendations handles GET /api/v1/recommendations/users/{userID}/hybrid
// Returns CF candidates re-scored with content similarity to the user's rated items.
func (h *Handler) UserHybridRecommendations(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseUserRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	start := time.Now()
	res, err := h.engine.RecommendHybridForUser(ctx, recommend.UserRequest{
		UserID: req.UserID,
		N:      req.N,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, models.RecommendationList{
		UserID:          req.UserID,
		Mode:            string(recommend.ModeHybrid),
		Fallback:        res.Fallback,
		SnapshotVersion: res.SnapshotVersion,
		Count:           len(res.Items),
		Items:           h.toItems(ctx, res.Items, false),
	}, time.Since(start), res.Cached)
}

// SeedRecommendations handles POST /api/v1/recommendations/seeds
// Returns items similar to a set of seed items, optionally blended with CF.
func (h *Handler) SeedRecommendations(w http.ResponseWriter, r *http.Request) {
	var req seedRecommendRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}
	if req.N == 0 {
		req.N = h.cfg.DefaultN
	}
	mode := recommend.Mode(req.Mode)
	if mode == "" {
		mode = recommend.ModeContent
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	start := time.Now()
	res, err := h.engine.RecommendFromSeeds(ctx, recommend.SeedRequest{
		SeedIDs:   req.SeedIDs,
		N:         req.N,
		Mode:      mode,
		Diversity: req.Diversity,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, models.RecommendationList{
		SeedIDs:         req.SeedIDs,
		Mode:            string(mode),
		SnapshotVersion: res.SnapshotVersion,
		Count:           len(res.Items),
		Items:           h.toItems(ctx, res.Items, false),
	}, time.Since(start), res.Cached)
}
