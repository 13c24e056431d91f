// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package reranking implements post-processing algorithms for recommendation diversity.
//
// Rerankers operate on an already ranked list and reorder it to balance
// relevance against other objectives:
//
//	Scorers -> Ranked list -> Reranker -> Final list
//	(relevance)               (diversity)
//
// # MMR Algorithm
//
// Maximal Marginal Relevance iteratively selects items that are both
// relevant and dissimilar to already-selected items:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max_similarity(i, selected)]
//
// Relevance is the min-max normalized input score. Similarity is supplied
// by the caller; the engine passes TF-IDF cosine similarity from the
// content space.
//
// Lambda Guidelines:
//   - 1.0: pure relevance, the reranker is a no-op
//   - 0.7-0.9: balanced
//   - below 0.5: diversity-focused, may sacrifice relevance
//
// # Performance
//
// Each selection step compares the new item against every remaining item,
// so the cost is O(k * n) similarity lookups for n inputs and k outputs.
// Over-fetch a few times k, not the whole catalog.
//
// # Thread Safety
//
// MMR is stateless after construction and safe for concurrent use.
package reranking
