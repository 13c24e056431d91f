// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinemind/internal/catalog"
	"github.com/tomtom215/cinemind/internal/models"
)

type itemRequest struct {
	ItemID string `json:"item_id" validate:"required,entityid"`
}

// Item handles GET /api/v1/items/{itemID}
// Returns the catalog record and the item's statistics in the loaded artifacts.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	req := itemRequest{ItemID: chi.URLParam(r, "itemID")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	start := time.Now()
	detail := models.ItemDetail{ItemID: req.ItemID}

	if snap := h.engine.Snapshot(); snap != nil {
		if snap.Model != nil {
			if mean, count, ok := snap.Model.ItemStats(req.ItemID); ok {
				detail.Stats.InModel = true
				detail.Stats.MeanRating = mean
				detail.Stats.RatingCount = count
			}
		}
		if snap.Content != nil {
			detail.Stats.InContent = snap.Content.Has(req.ItemID)
		}
	}

	if h.catalog != nil {
		rec, err := h.catalog.Get(req.ItemID)
		switch {
		case err == nil:
			detail.Catalog = rec
		case !errors.Is(err, catalog.ErrRecordNotFound):
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to read catalog", err)
			return
		}
	}

	if !detail.Stats.InModel && !detail.Stats.InContent && detail.Catalog == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "item not found", nil)
		return
	}

	respondSuccess(w, r, detail, time.Since(start), false)
}
