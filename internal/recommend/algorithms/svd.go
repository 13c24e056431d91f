// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/cinemind/internal/recommend"
)

// SVDConfig contains configuration for the truncated SVD trainer.
type SVDConfig struct {
	// Rank is the requested number of latent factors. A rank larger than
	// min(users, items)-1 is clamped, never rejected.
	Rank int

	// Centering is subtracted from every observed rating before
	// factorization and stored so scoring can add it back.
	Centering recommend.Centering
}

// DefaultSVDConfig returns default SVD configuration.
func DefaultSVDConfig() SVDConfig {
	return SVDConfig{
		Rank:      50,
		Centering: recommend.CenterUser,
	}
}

// SVDTrainer factorizes the centred rating matrix with a thin SVD.
// Unobserved entries are zero after centring.
type SVDTrainer struct {
	config SVDConfig
}

// NewSVDTrainer creates a trainer. Zero fields take their defaults.
func NewSVDTrainer(cfg SVDConfig) *SVDTrainer {
	def := DefaultSVDConfig()
	if cfg.Rank <= 0 {
		cfg.Rank = def.Rank
	}
	if cfg.Centering == "" {
		cfg.Centering = def.Centering
	}
	return &SVDTrainer{config: cfg}
}

// EffectiveRank returns the rank actually trained for a users x items
// matrix: min(rank, min(users, items)-1), floored at 1.
func EffectiveRank(rank, users, items int) int {
	return max(1, min(rank, min(users, items)-1))
}

// Train fits the model. The returned model is indexed and ready to score.
func (t *SVDTrainer) Train(ctx context.Context, rm *RatingMatrix) (*recommend.Model, error) {
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	if rm == nil || rm.Matrix == nil || rm.Matrix.NNZ() == 0 {
		return nil, &recommend.InsufficientDataError{Reason: "empty rating matrix"}
	}
	if !t.config.Centering.Valid() {
		return nil, fmt.Errorf("unknown centering %q", t.config.Centering)
	}
	start := time.Now()

	sm := rm.Matrix
	users, items := sm.Rows, sm.Cols
	rank := EffectiveRank(t.config.Rank, users, items)

	offsets := t.offsets(rm)
	dense := mat.NewDense(users, items, nil)
	for u := 0; u < users; u++ {
		cols, vals := sm.Row(u)
		off := 0.0
		if offsets != nil {
			off = offsets[u]
		}
		for k, c := range cols {
			dense.Set(u, c, vals[k]-off)
		}
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	var svd mat.SVD
	if ok := svd.Factorize(dense, mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed to converge")
	}
	sigma := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	userFactors := mat.NewDense(users, rank, nil)
	itemFactors := mat.NewDense(items, rank, nil)
	for j := 0; j < rank; j++ {
		sign := componentSign(&v, j)
		for i := 0; i < users; i++ {
			userFactors.Set(i, j, sign*u.At(i, j)*sigma[j])
		}
		for i := 0; i < items; i++ {
			itemFactors.Set(i, j, sign*v.At(i, j))
		}
	}

	model := &recommend.Model{
		UserFactors: userFactors,
		ItemFactors: itemFactors,
		UserIDs:     rm.UserIDs,
		ItemIDs:     rm.ItemIDs,
		GlobalMean:  rm.GlobalMean,
		UserOffsets: offsets,
		RatedItems:  ratedItems(sm),
		RatedValues: ratedValues(sm),
		ItemMeans:   itemMeans(sm),
		ItemCounts:  rm.ItemCounts,
		Meta: recommend.ModelMetadata{
			Rank:          rank,
			RequestedRank: t.config.Rank,
			NumUsers:      users,
			NumItems:      items,
			NumRatings:    sm.NNZ(),
			MinRatings:    rm.MinRatings,
			Centering:     t.config.Centering,
			TrainedAt:     time.Now().UTC(),
			TrainingMS:    time.Since(start).Milliseconds(),
		},
	}
	if err := model.Index(); err != nil {
		return nil, fmt.Errorf("trained model is inconsistent: %w", err)
	}
	return model, nil
}

// offsets returns the per-user centring offsets, or nil for CenterNone.
func (t *SVDTrainer) offsets(rm *RatingMatrix) []float64 {
	sm := rm.Matrix
	switch t.config.Centering {
	case recommend.CenterGlobal:
		out := make([]float64, sm.Rows)
		for u := range out {
			out[u] = rm.GlobalMean
		}
		return out
	case recommend.CenterUser:
		out := make([]float64, sm.Rows)
		for u := range out {
			_, vals := sm.Row(u)
			var sum float64
			for _, v := range vals {
				sum += v
			}
			out[u] = sum / float64(len(vals))
		}
		return out
	default:
		return nil
	}
}

// componentSign returns the sign that makes the largest-magnitude entry of
// column j positive.
func componentSign(v *mat.Dense, j int) float64 {
	rows, _ := v.Dims()
	best, bestAbs := 0.0, -1.0
	for i := 0; i < rows; i++ {
		x := v.At(i, j)
		if a := math.Abs(x); a > bestAbs {
			best, bestAbs = x, a
		}
	}
	if best < 0 {
		return -1
	}
	return 1
}

func ratedItems(sm *recommend.SparseMatrix) [][]int {
	out := make([][]int, sm.Rows)
	for u := range out {
		cols, _ := sm.Row(u)
		out[u] = append([]int(nil), cols...)
	}
	return out
}

func ratedValues(sm *recommend.SparseMatrix) [][]float64 {
	out := make([][]float64, sm.Rows)
	for u := range out {
		_, vals := sm.Row(u)
		out[u] = append([]float64(nil), vals...)
	}
	return out
}

func itemMeans(sm *recommend.SparseMatrix) []float64 {
	sums := make([]float64, sm.Cols)
	counts := make([]int, sm.Cols)
	for u := 0; u < sm.Rows; u++ {
		cols, vals := sm.Row(u)
		for k, c := range cols {
			sums[c] += vals[k]
			counts[c]++
		}
	}
	for i := range sums {
		if counts[i] > 0 {
			sums[i] /= float64(counts[i])
		}
	}
	return sums
}
