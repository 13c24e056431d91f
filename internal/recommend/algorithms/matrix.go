// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package algorithms

import (
	"math"
	"slices"

	"github.com/tomtom215/cinemind/internal/recommend"
)

// RatingMatrix is the filtered user x item rating matrix. Row u belongs to
// UserIDs[u], column i to ItemIDs[i].
type RatingMatrix struct {
	Matrix     *recommend.SparseMatrix
	UserIDs    []string
	ItemIDs    []string
	GlobalMean float64
	ItemCounts []int

	// MinRatings is the threshold the matrix was filtered with.
	MinRatings int
	// DroppedUsers counts users below MinRatings.
	DroppedUsers int
	// SkippedRatings counts ratings with an empty id or a non-finite value.
	SkippedRatings int
	// DuplicateRatings counts repeated (user, item) pairs; the last one wins.
	DuplicateRatings int
}

// NumRatings returns the number of stored ratings.
func (rm *RatingMatrix) NumRatings() int {
	return rm.Matrix.NNZ()
}

// BuildRatingMatrix builds the rating matrix from raw ratings. Users with
// fewer than minRatings distinct rated items are dropped; minRatings <= 1
// keeps everyone. Users and items are indexed in first-seen order.
//
// Fails with recommend.InsufficientDataError when no user remains.
func BuildRatingMatrix(ratings []recommend.Rating, minRatings int) (*RatingMatrix, error) {
	rm := &RatingMatrix{MinRatings: minRatings}

	type userRatings struct {
		order  int
		values map[string]float64
	}
	users := make(map[string]*userRatings)
	var userOrder []string

	for _, r := range ratings {
		if r.UserID == "" || r.ItemID == "" || math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			rm.SkippedRatings++
			continue
		}
		ur, ok := users[r.UserID]
		if !ok {
			ur = &userRatings{order: len(userOrder), values: make(map[string]float64)}
			users[r.UserID] = ur
			userOrder = append(userOrder, r.UserID)
		}
		if _, dup := ur.values[r.ItemID]; dup {
			rm.DuplicateRatings++
		}
		ur.values[r.ItemID] = r.Value
	}

	userRow := make(map[string]int, len(userOrder))
	for _, id := range userOrder {
		if len(users[id].values) < minRatings {
			rm.DroppedUsers++
			continue
		}
		userRow[id] = len(rm.UserIDs)
		rm.UserIDs = append(rm.UserIDs, id)
	}
	if len(rm.UserIDs) == 0 {
		return nil, &recommend.InsufficientDataError{
			Reason:     "no users with enough ratings",
			MinRatings: minRatings,
			Ratings:    len(ratings),
		}
	}

	// Second pass over the input fixes item order by first appearance among
	// retained users.
	itemCol := make(map[string]int)
	for _, r := range ratings {
		if _, kept := userRow[r.UserID]; !kept || r.ItemID == "" || math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			continue
		}
		if _, ok := itemCol[r.ItemID]; ok {
			continue
		}
		itemCol[r.ItemID] = len(rm.ItemIDs)
		rm.ItemIDs = append(rm.ItemIDs, r.ItemID)
	}

	type entry struct {
		col int
		val float64
	}
	m := &recommend.SparseMatrix{
		Rows:   len(rm.UserIDs),
		Cols:   len(rm.ItemIDs),
		RowPtr: make([]int, 1, len(rm.UserIDs)+1),
	}
	rm.ItemCounts = make([]int, len(rm.ItemIDs))
	var sum float64
	for _, id := range rm.UserIDs {
		row := make([]entry, 0, len(users[id].values))
		for item, v := range users[id].values {
			row = append(row, entry{col: itemCol[item], val: v})
		}
		slices.SortFunc(row, func(a, b entry) int { return a.col - b.col })
		for _, e := range row {
			m.ColIdx = append(m.ColIdx, e.col)
			m.Values = append(m.Values, e.val)
			rm.ItemCounts[e.col]++
			sum += e.val
		}
		m.RowPtr = append(m.RowPtr, len(m.Values))
	}
	rm.Matrix = m
	rm.GlobalMean = sum / float64(len(m.Values))
	return rm, nil
}
