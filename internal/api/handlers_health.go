// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinemind/internal/models"
)

// Health handles GET /health
// Always answers 200 while the process runs; status reports whether both
// artifacts ("healthy"), one ("degraded") or none ("unavailable") are loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:  "unavailable",
		Version: Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if snap := h.engine.Snapshot(); snap != nil {
		loadedAt := snap.LoadedAt.UTC()
		health.SnapshotVersion = snap.Version
		health.LoadedAt = &loadedAt
		if snap.Model != nil {
			health.ModelLoaded = true
			health.Users = len(snap.Model.UserIDs)
			health.Items = len(snap.Model.ItemIDs)
		}
		if snap.Content != nil {
			health.ContentLoaded = true
			health.ContentItems = snap.Content.Len()
		}
	}

	switch {
	case health.ModelLoaded && health.ContentLoaded:
		health.Status = "healthy"
	case health.ModelLoaded || health.ContentLoaded:
		health.Status = "degraded"
	}

	respondSuccess(w, r, health, 0, false)
}

// HealthLive handles GET /health/live
// Returns 200 OK if the process is alive, regardless of artifacts.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]string{"status": "alive"}, 0, false)
}

// HealthReady handles GET /health/ready
// Returns 200 once a snapshot with at least one artifact is installed, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Ready() {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "no artifacts loaded", nil)
		return
	}
	respondSuccess(w, r, map[string]string{"status": "ready"}, 0, false)
}
