// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package models

import "time"

// RecommendedItem is one ranked entry in a recommendation response.
// Title, Year and PosterPath are filled from the catalog when a record exists.
type RecommendedItem struct {
	ItemID       string             `json:"item_id"`
	Rank         int                `json:"rank"`
	Score        float64            `json:"score"`
	DisplayScore *float64           `json:"display_score,omitempty"`
	Components   map[string]float64 `json:"components,omitempty"`
	Title        string             `json:"title,omitempty"`
	Year         int                `json:"year,omitempty"`
	Genres       []string           `json:"genres,omitempty"`
	PosterPath   string             `json:"poster_path,omitempty"`
}

// RecommendationList is the payload of every recommendation endpoint.
type RecommendationList struct {
	UserID          string            `json:"user_id,omitempty"`
	SeedIDs         []string          `json:"seed_ids,omitempty"`
	Mode            string            `json:"mode"`
	Fallback        bool              `json:"fallback,omitempty"`
	SnapshotVersion uint64            `json:"snapshot_version"`
	Count           int               `json:"count"`
	Items           []RecommendedItem `json:"items"`
}

// UserRatingItem is one observed rating in a user's history.
type UserRatingItem struct {
	ItemID     string  `json:"item_id"`
	Rating     float64 `json:"rating"`
	Title      string  `json:"title,omitempty"`
	Year       int     `json:"year,omitempty"`
	PosterPath string  `json:"poster_path,omitempty"`
}

// UserRatingList is the payload of the user ratings endpoint.
type UserRatingList struct {
	UserID          string           `json:"user_id"`
	SnapshotVersion uint64           `json:"snapshot_version"`
	Count           int              `json:"count"`
	Ratings         []UserRatingItem `json:"ratings"`
}

// ItemStats summarizes an item's presence in the loaded artifacts.
type ItemStats struct {
	InModel     bool    `json:"in_model"`
	InContent   bool    `json:"in_content"`
	MeanRating  float64 `json:"mean_rating,omitempty"`
	RatingCount int     `json:"rating_count"`
}

// ItemDetail is the payload of the item endpoint.
type ItemDetail struct {
	ItemID  string      `json:"item_id"`
	Stats   ItemStats   `json:"stats"`
	Catalog interface{} `json:"catalog,omitempty"`
}

// HealthStatus reports liveness and what the serving snapshot holds.
type HealthStatus struct {
	Status          string     `json:"status"`
	Version         string     `json:"version"`
	ModelLoaded     bool       `json:"model_loaded"`
	ContentLoaded   bool       `json:"content_loaded"`
	SnapshotVersion uint64     `json:"snapshot_version"`
	LoadedAt        *time.Time `json:"loaded_at,omitempty"`
	Users           int        `json:"users"`
	Items           int        `json:"items"`
	ContentItems    int        `json:"content_items"`
	Uptime          float64    `json:"uptime_seconds"`
}

// ReloadResult is the payload of the admin reload endpoint.
type ReloadResult struct {
	SnapshotVersion uint64    `json:"snapshot_version"`
	ModelLoaded     bool      `json:"model_loaded"`
	ContentLoaded   bool      `json:"content_loaded"`
	LoadedAt        time.Time `json:"loaded_at"`
}
