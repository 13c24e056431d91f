// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package reranking

import (
	"context"

	"github.com/tomtom215/cinemind/internal/recommend"
)

// maxRerankSize limits slice allocations; k is also bounded by len(items).
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting items
// that are both relevant and dissimilar to already selected items.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - rel(i): min-max normalized relevance score of item i
//   - sim(i, s): content similarity between item i and selected item s
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// Lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewMMR creates a new MMR reranker with a default lambda.
func NewMMR(lambda float64) *MMR {
	return &MMR{lambda: clampLambda(lambda)}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the default relevance weight.
func (m *MMR) Lambda() float64 {
	return m.lambda
}

// Rerank diversifies items with the reranker's default lambda.
func (m *MMR) Rerank(ctx context.Context, items []recommend.ScoredItem, k int, sim recommend.SimilarityFunc) []recommend.ScoredItem {
	return m.Diversify(ctx, items, k, m.lambda, sim)
}

// Diversify selects k items from a ranked list by greedy MMR. Items keep
// their original scores; only the order changes. Ties keep input order, so
// a list sorted by score then id stays deterministic.
//
//nolint:gocritic // rangeValCopy: ScoredItem passed by value in range, acceptable for clarity
func (m *MMR) Diversify(ctx context.Context, items []recommend.ScoredItem, k int, lambda float64, sim recommend.SimilarityFunc) []recommend.ScoredItem {
	if len(items) == 0 || k <= 0 {
		return items
	}
	k = min(k, maxRerankSize, len(items))
	lambda = clampLambda(lambda)

	if lambda >= 1.0 || sim == nil {
		return items[:k]
	}

	relevance := recommend.Normalize(items)

	selected := make([]recommend.ScoredItem, 0, k)
	chosen := make([]bool, len(items))
	// maxSim[i] is the highest similarity of item i to anything selected.
	maxSim := make([]float64, len(items))

	for len(selected) < k {
		if ctx.Err() != nil {
			break
		}

		bestIdx := -1
		bestMMR := 0.0
		for i, item := range items {
			if chosen[i] {
				continue
			}
			score := lambda*relevance[item.ItemID] - (1-lambda)*maxSim[i]
			if bestIdx < 0 || score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		chosen[bestIdx] = true
		picked := items[bestIdx]
		selected = append(selected, picked)
		for i, item := range items {
			if chosen[i] {
				continue
			}
			if s := sim(item.ItemID, picked.ItemID); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}

	// A cancelled context still yields k items: fill from the ranked order.
	for i := 0; len(selected) < k && i < len(items); i++ {
		if !chosen[i] {
			chosen[i] = true
			selected = append(selected, items[i])
		}
	}
	return selected
}

func clampLambda(lambda float64) float64 {
	return max(0, min(lambda, 1))
}

// Ensure MMR implements the interface.
var _ recommend.Diversifier = (*MMR)(nil)
