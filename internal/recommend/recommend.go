// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// UserOptions controls RecommendForUser.
type UserOptions struct {
	// CandidateFilter keeps only items for which it returns true.
	CandidateFilter func(itemID string) bool

	// ExcludeRated removes items the user rated in the training data.
	ExcludeRated bool

	// Fallback returns GlobalMean for every item when the user is unknown.
	Fallback bool
}

// RecommendForUser returns the top n CF recommendations for userID.
func RecommendForUser(m *Model, userID string, n int, opts UserOptions) ([]ScoredItem, error) {
	if m == nil {
		return nil, fmt.Errorf("cf model not loaded: %w", ErrServiceUnavailable)
	}
	scores, err := m.ScoreUser(userID, CFOptions{
		Filter:       opts.CandidateFilter,
		ExcludeRated: opts.ExcludeRated,
		Fallback:     opts.Fallback,
	})
	if err != nil {
		return nil, err
	}
	return TopN(scores, n), nil
}

// SeedOptions controls RecommendFromSeeds.
type SeedOptions struct {
	// Weights are the blend weights used in hybrid mode.
	Weights Weights

	// CandidateK caps each signal list before blending. 0 keeps all.
	CandidateK int

	// Candidates restricts scoring to these items. Nil scores every item.
	Candidates []string

	// SeedTexts holds catalog text for seeds without a content row.
	SeedTexts map[string]string
}

// RecommendFromSeeds ranks items similar to the seeds. In ModeContent, or
// when m is nil, the result is the content ranking. In ModeHybrid with a
// model, the content ranking is blended with a CF ranking for a pseudo-user
// whose factor row is the mean of the seeds' item factors.
//
//nolint:gocritic // SeedOptions is passed by value as an options struct
func RecommendFromSeeds(cs *ContentSpace, seeds []string, n int, mode Mode, m *Model, opts SeedOptions) ([]ScoredItem, error) {
	if cs == nil {
		return nil, fmt.Errorf("content space not loaded: %w", ErrServiceUnavailable)
	}
	if len(seeds) == 0 {
		return nil, &NoValidSeedsError{}
	}

	if mode != ModeHybrid || m == nil {
		content, err := cs.ScoreFromSeedsWithText(seeds, opts.SeedTexts, opts.Candidates)
		if err != nil {
			return nil, err
		}
		return TopN(content, n), nil
	}

	// The two signals read disjoint immutable data and are scored concurrently.
	var (
		g       errgroup.Group
		content []ScoredItem
		cf      []ScoredItem
	)
	g.Go(func() error {
		var err error
		content, err = cs.ScoreFromSeedsWithText(seeds, opts.SeedTexts, opts.Candidates)
		return err
	})
	g.Go(func() error {
		if centroid, used := m.ItemCentroid(seeds); used > 0 {
			exclude := make(map[string]struct{}, len(seeds))
			for _, id := range seeds {
				exclude[id] = struct{}{}
			}
			cf = m.ScoreVector(centroid, opts.Candidates, exclude)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Blend(TopN(cf, opts.CandidateK), TopN(content, opts.CandidateK), opts.Weights, n), nil
}

// HybridOptions controls RecommendHybridForUser.
type HybridOptions struct {
	Weights    Weights
	CandidateK int
	Fallback   bool
}

// RecommendHybridForUser takes the user's top CandidateK CF items (rated
// items excluded), scores the same items against a content profile built
// from everything the user rated, and blends the two lists.
//
//nolint:gocritic // HybridOptions is passed by value as an options struct
func RecommendHybridForUser(m *Model, cs *ContentSpace, userID string, n int, opts HybridOptions) ([]ScoredItem, error) {
	if m == nil {
		return nil, fmt.Errorf("cf model not loaded: %w", ErrServiceUnavailable)
	}
	cf, err := m.ScoreUser(userID, CFOptions{ExcludeRated: true, Fallback: opts.Fallback})
	if err != nil {
		return nil, err
	}
	cf = TopN(cf, opts.CandidateK)
	if cs == nil {
		return Blend(cf, nil, opts.Weights, n), nil
	}

	candidates := make([]string, len(cf))
	for i, it := range cf {
		candidates[i] = it.ItemID
	}

	content, err := cs.ScoreFromSeeds(m.RatedBy(userID), candidates)
	if err != nil && !errors.Is(err, ErrNoValidSeeds) {
		return nil, err
	}
	return Blend(cf, content, opts.Weights, n), nil
}
