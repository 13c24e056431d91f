// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

// Signal names used in ScoredItem.Components.
const (
	SignalCF      = "cf"
	SignalContent = "content"
)

// Normalize min-max scales scores into [0, 1], keyed by item id. A list
// whose scores are all equal maps every entry to 0.5. When an id appears
// more than once the first occurrence wins.
func Normalize(items []ScoredItem) map[string]float64 {
	out := make(map[string]float64, len(items))
	if len(items) == 0 {
		return out
	}

	minScore, maxScore := items[0].Score, items[0].Score
	for _, it := range items[1:] {
		if it.Score < minScore {
			minScore = it.Score
		}
		if it.Score > maxScore {
			maxScore = it.Score
		}
	}

	rang := maxScore - minScore
	for _, it := range items {
		if _, dup := out[it.ItemID]; dup {
			continue
		}
		if rang == 0 {
			out[it.ItemID] = 0.5
			continue
		}
		out[it.ItemID] = finite((it.Score - minScore) / rang)
	}
	return out
}

// Blend combines a CF list and a content list into one ranking.
//
// Each list is normalized on its own. An item in both lists scores
// w.CF*cf + w.Content*content; an item in one list scores that list's
// weight times its normalized score. The result is sorted by score
// descending, ties by item id ascending, and truncated to n (n <= 0 keeps
// everything).
//
//nolint:gocritic // Weights is two floats, passed by value
func Blend(cf, content []ScoredItem, w Weights, n int) []ScoredItem {
	cfNorm := Normalize(cf)
	contentNorm := Normalize(content)

	out := make([]ScoredItem, 0, len(cfNorm)+len(contentNorm))
	for id, c := range cfNorm {
		item := ScoredItem{
			ItemID:     id,
			Score:      w.CF * c,
			Components: map[string]float64{SignalCF: c},
		}
		if t, ok := contentNorm[id]; ok {
			item.Score += w.Content * t
			item.Components[SignalContent] = t
		}
		out = append(out, item)
	}
	for id, t := range contentNorm {
		if _, ok := cfNorm[id]; ok {
			continue
		}
		out = append(out, ScoredItem{
			ItemID:     id,
			Score:      w.Content * t,
			Components: map[string]float64{SignalContent: t},
		})
	}

	SortScored(out)
	return TopN(out, n)
}
