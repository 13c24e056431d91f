// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"cmp"
	"math"
	"slices"
)

// Rating is one observed (user, item, rating) triple. Ids are opaque.
type Rating struct {
	UserID string
	ItemID string
	Value  float64
}

// ScoredItem is one entry of a ranked list.
type ScoredItem struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`

	// Components holds the normalized per-signal scores of a blended item.
	Components map[string]float64 `json:"components,omitempty"`
}

// Mode selects the seed recommendation strategy.
type Mode string

// Seed recommendation modes.
const (
	ModeContent Mode = "content"
	ModeHybrid  Mode = "hybrid"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeContent || m == ModeHybrid
}

// Weights are the blend coefficients of the hybrid scorer.
type Weights struct {
	CF      float64 `json:"cf"`
	Content float64 `json:"content"`
}

// compareScored orders by score descending, then item id ascending.
func compareScored(a, b ScoredItem) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.ItemID, b.ItemID)
}

// SortScored sorts items in place into ranking order: score descending,
// ties by item id ascending.
func SortScored(items []ScoredItem) {
	slices.SortFunc(items, compareScored)
}

// TopN truncates a ranked list to n entries. n <= 0 keeps everything.
// A truncated result is copied so it does not pin the full ranking.
func TopN(items []ScoredItem, n int) []ScoredItem {
	if n <= 0 || len(items) <= n {
		return items
	}
	return slices.Clip(slices.Clone(items[:n]))
}

// finite maps NaN and infinities to zero so no ranked list ever carries them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
