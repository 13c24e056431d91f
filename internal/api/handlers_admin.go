// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinemind/internal/logging"
	"github.com/tomtom215/cinemind/internal/models"
)

// Reload handles POST /api/v1/admin/reload
// Loads both artifacts from disk and swaps them in. On failure the previous
// snapshot keeps serving and the error is returned.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.engine.Reload(r.Context()); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, err.Error(), err)
		return
	}

	snap := h.engine.Snapshot()
	result := models.ReloadResult{
		SnapshotVersion: snap.Version,
		ModelLoaded:     snap.Model != nil,
		ContentLoaded:   snap.Content != nil,
		LoadedAt:        snap.LoadedAt.UTC(),
	}
	logging.Ctx(r.Context()).Info().
		Uint64("snapshot_version", result.SnapshotVersion).
		Msg("artifacts reloaded through admin endpoint")

	respondSuccess(w, r, result, time.Since(start), false)
}
