// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"slices"

	"gonum.org/v1/gonum/floats"
)

// CFOptions refines collaborative filtering scoring.
type CFOptions struct {
	// Candidates restricts scoring to these items. Nil scores every item.
	Candidates []string

	// Filter, when set, drops items for which it returns false.
	Filter func(itemID string) bool

	// ExcludeRated drops items the user rated in the training data.
	ExcludeRated bool

	// Fallback scores an unknown user with GlobalMean for every candidate
	// instead of returning UnknownUserError.
	Fallback bool
}

// Score ranks items for userID by the dot product of the user's factor row
// with each item's factor row. Unknown users fail with UnknownUserError.
func (m *Model) Score(userID string, candidates []string) ([]ScoredItem, error) {
	return m.ScoreUser(userID, CFOptions{Candidates: candidates})
}

// ScoreUser is Score with options. The result is sorted by score
// descending, ties by item id ascending. Scores are not clipped.
func (m *Model) ScoreUser(userID string, opts CFOptions) ([]ScoredItem, error) {
	row, ok := m.userIndex[userID]
	if !ok {
		if !opts.Fallback {
			return nil, &UnknownUserError{UserID: userID}
		}
		return m.constantScores(opts, m.GlobalMean), nil
	}

	var rated []int
	if opts.ExcludeRated && m.RatedItems != nil {
		rated = m.RatedItems[row]
	}
	vec := m.UserFactors.RawRowView(row)
	offset := m.userOffset(row)

	rows := m.candidateRows(opts.Candidates)
	out := make([]ScoredItem, 0, len(rows))
	for _, i := range rows {
		if _, found := slices.BinarySearch(rated, i); found {
			continue
		}
		id := m.ItemIDs[i]
		if opts.Filter != nil && !opts.Filter(id) {
			continue
		}
		out = append(out, ScoredItem{
			ItemID: id,
			Score:  finite(offset + floats.Dot(vec, m.ItemFactors.RawRowView(i))),
		})
	}
	SortScored(out)
	return out, nil
}

// ScoreVector ranks items against an arbitrary vector in factor space,
// skipping ids in exclude.
func (m *Model) ScoreVector(vec []float64, candidates []string, exclude map[string]struct{}) []ScoredItem {
	rows := m.candidateRows(candidates)
	out := make([]ScoredItem, 0, len(rows))
	for _, i := range rows {
		id := m.ItemIDs[i]
		if _, skip := exclude[id]; skip {
			continue
		}
		out = append(out, ScoredItem{
			ItemID: id,
			Score:  finite(floats.Dot(vec, m.ItemFactors.RawRowView(i))),
		})
	}
	SortScored(out)
	return out
}

// ItemCentroid returns the mean factor row of the given items and how many
// of them were present in the model. The vector is nil when none were.
func (m *Model) ItemCentroid(itemIDs []string) ([]float64, int) {
	centroid := make([]float64, m.Rank())
	seen := make(map[int]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		row, ok := m.itemIndex[id]
		if !ok {
			continue
		}
		if _, dup := seen[row]; dup {
			continue
		}
		seen[row] = struct{}{}
		floats.Add(centroid, m.ItemFactors.RawRowView(row))
	}
	if len(seen) == 0 {
		return nil, 0
	}
	floats.Scale(1/float64(len(seen)), centroid)
	return centroid, len(seen)
}

// candidateRows maps candidate ids to item rows, dropping unknown ids and
// duplicates. Nil candidates means every item.
func (m *Model) candidateRows(candidates []string) []int {
	if candidates == nil {
		rows := make([]int, len(m.ItemIDs))
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	rows := make([]int, 0, len(candidates))
	seen := make(map[int]struct{}, len(candidates))
	for _, id := range candidates {
		row, ok := m.itemIndex[id]
		if !ok {
			continue
		}
		if _, dup := seen[row]; dup {
			continue
		}
		seen[row] = struct{}{}
		rows = append(rows, row)
	}
	return rows
}

// constantScores assigns score to every candidate, or every model item when
// no candidates are given.
func (m *Model) constantScores(opts CFOptions, score float64) []ScoredItem {
	ids := opts.Candidates
	if ids == nil {
		ids = m.ItemIDs
	}
	out := make([]ScoredItem, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if opts.Filter != nil && !opts.Filter(id) {
			continue
		}
		out = append(out, ScoredItem{ItemID: id, Score: score})
	}
	SortScored(out)
	return out
}
