// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package algorithms builds the artifacts the recommend package scores
// against.
//
// # Collaborative Filtering
//
// BuildRatingMatrix turns raw ratings into a compressed sparse row matrix,
// dropping users with fewer than the configured number of distinct rated
// items. SVDTrainer centres the observed entries and factorizes the matrix
// with a thin singular value decomposition, keeping the leading
// min(rank, min(users, items)-1) components:
//
//	user_factors = U·Σ
//	item_factors = V
//
// # Content
//
// TFIDFBuilder tokenizes item text, prunes terms below MinDF, caps the
// vocabulary at MaxFeatures and produces L2 normalized TF-IDF rows with a
// smoothed inverse document frequency:
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// # Determinism
//
// Index order is the order ids first appear in the input, vocabulary
// columns are sorted by term, and SVD component signs are fixed so the
// largest-magnitude entry of each item factor column is positive. Training
// the same input twice yields identical artifacts.
package algorithms
