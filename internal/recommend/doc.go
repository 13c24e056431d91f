// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package recommend implements hybrid movie recommendation scoring.
//
// # Architecture
//
// Two independently trained artifacts feed the scorers:
//
//   - Model: a truncated SVD latent factor model over explicit ratings.
//     User u scores item i as UserOffsets[u] + UserFactors[u]·ItemFactors[i].
//   - ContentSpace: L2 normalized TF-IDF vectors over item text. Seed
//     recommendations rank items by cosine similarity to the seed centroid.
//
// Blend min-max normalizes each ranked list and combines them with the
// configured weights. Every ranked list is ordered by score descending
// with ties broken by item id ascending, so identical inputs always give
// identical output.
//
// Training lives in the algorithms subpackage, persistence in storage,
// diversity reranking in reranking.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, storage.NewLoader(modelPath, contentPath), logger)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Reload(ctx); err != nil {
//	    return err
//	}
//
//	res, err := engine.RecommendForUser(ctx, recommend.UserRequest{
//	    UserID: "42",
//	    N:      10,
//	})
//
// # Thread Safety
//
// Model and ContentSpace are never mutated after Index succeeds. The
// Engine publishes them together as a Snapshot through an atomic pointer;
// a request reads the pointer once and scores against that snapshot even
// if a reload swaps in a new one midway. Reloads are serialized.
//
// # Errors
//
// Failures are typed (UnknownUserError, NoValidSeedsError,
// CorruptArtifactError and friends) and match sentinel values with
// errors.Is, so callers can branch without type assertions.
package recommend
