// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"io"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// newTestModel returns a rank 2 model:
//
//	u1 = [1 0], u2 = [0 1]
//	m1 = [3 0], m2 = [2 1], m3 = [1 2], m4 = [1 1]
//
// u1 rated m1, u2 rated m3.
func newTestModel(t *testing.T) *Model {
	t.Helper()
	m := &Model{
		UserFactors: mat.NewDense(2, 2, []float64{
			1, 0,
			0, 1,
		}),
		ItemFactors: mat.NewDense(4, 2, []float64{
			3, 0,
			2, 1,
			1, 2,
			1, 1,
		}),
		UserIDs:    []string{"u1", "u2"},
		ItemIDs:    []string{"m1", "m2", "m3", "m4"},
		GlobalMean: 3.5,
		RatedItems: [][]int{{0}, {2}},
		ItemMeans:  []float64{4, 3, 3.5, 2},
		ItemCounts: []int{1, 1, 1, 0},
		Meta:       ModelMetadata{Rank: 2, NumUsers: 2, NumItems: 4, NumRatings: 2},
	}
	if err := m.Index(); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	return m
}

// newTestContent returns a 3 term space:
//
//	m1 = a, m2 = b, m3 = 0.6a + 0.8b, m4 = c, m5 = (empty), m6 = a
func newTestContent(t *testing.T) *ContentSpace {
	t.Helper()
	cs := &ContentSpace{
		Vocabulary: map[string]int{"a": 0, "b": 1, "c": 2},
		Vectors: &SparseMatrix{
			Rows:   6,
			Cols:   3,
			RowPtr: []int{0, 1, 2, 4, 5, 5, 6},
			ColIdx: []int{0, 1, 0, 1, 2, 0},
			Values: []float64{1, 1, 0.6, 0.8, 1, 1},
		},
		ItemIDs:    []string{"m1", "m2", "m3", "m4", "m5", "m6"},
		CatalogIDs: []int64{101, 102, 103, 104, 0, 106},
	}
	if err := cs.Index(); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	return cs
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func itemIDs(items []ScoredItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ItemID
	}
	return ids
}

func scoreOf(items []ScoredItem, id string) (float64, bool) {
	for _, it := range items {
		if it.ItemID == id {
			return it.Score, true
		}
	}
	return 0, false
}
