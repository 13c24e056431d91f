// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Centering selects the offset subtracted from observed ratings before
// factorization. The same offset is added back when scoring.
type Centering string

// Supported centring modes.
const (
	CenterNone   Centering = "none"
	CenterGlobal Centering = "global"
	CenterUser   Centering = "user"
)

// Valid reports whether c is a known centring mode.
func (c Centering) Valid() bool {
	return c == CenterNone || c == CenterGlobal || c == CenterUser
}

// ModelMetadata describes how a Model was trained.
type ModelMetadata struct {
	Rank          int       `json:"rank"`
	RequestedRank int       `json:"requested_rank"`
	NumUsers      int       `json:"num_users"`
	NumItems      int       `json:"num_items"`
	NumRatings    int       `json:"num_ratings"`
	MinRatings    int       `json:"min_ratings_per_user"`
	Centering     Centering `json:"centering"`
	TrainedAt     time.Time `json:"trained_at"`
	TrainingMS    int64     `json:"training_ms"`
}

// Model is a trained latent factor model. It is immutable once built:
// reload replaces the whole value, nothing mutates it in place.
//
// Row u of UserFactors and row i of ItemFactors belong to UserIDs[u] and
// ItemIDs[i]. The predicted rating is UserOffsets[u] + UserFactors[u]·ItemFactors[i].
type Model struct {
	UserFactors *mat.Dense
	ItemFactors *mat.Dense
	UserIDs     []string
	ItemIDs     []string
	GlobalMean  float64
	UserOffsets []float64
	// RatedItems[u] lists the item rows user u rated, ascending.
	RatedItems [][]int
	// RatedValues[u][k] is the rating behind RatedItems[u][k].
	RatedValues [][]float64
	ItemMeans   []float64
	ItemCounts  []int
	Meta        ModelMetadata

	userIndex map[string]int
	itemIndex map[string]int
}

// Index builds the id lookups and checks every structural invariant. It
// must be called once before the model is used; both the trainer and the
// artifact loader do so.
func (m *Model) Index() error {
	if m.UserFactors == nil {
		return errors.New("user_factors missing")
	}
	if m.ItemFactors == nil {
		return errors.New("item_factors missing")
	}
	ur, uc := m.UserFactors.Dims()
	ir, ic := m.ItemFactors.Dims()
	if uc != ic {
		return fmt.Errorf("factor rank mismatch: user_factors has %d columns, item_factors has %d", uc, ic)
	}
	if m.Meta.Rank != 0 && m.Meta.Rank != uc {
		return fmt.Errorf("metadata rank %d does not match factor columns %d", m.Meta.Rank, uc)
	}
	if ur != len(m.UserIDs) {
		return fmt.Errorf("user_factors has %d rows, user_index has %d entries", ur, len(m.UserIDs))
	}
	if ir != len(m.ItemIDs) {
		return fmt.Errorf("item_factors has %d rows, item_index has %d entries", ir, len(m.ItemIDs))
	}
	if m.UserOffsets != nil && len(m.UserOffsets) != ur {
		return fmt.Errorf("user_offsets has %d entries, want %d", len(m.UserOffsets), ur)
	}
	if m.RatedItems != nil && len(m.RatedItems) != ur {
		return fmt.Errorf("rated_items has %d entries, want %d", len(m.RatedItems), ur)
	}
	if (m.ItemMeans == nil) != (m.ItemCounts == nil) {
		return errors.New("item_means and item_counts must be stored together")
	}
	if m.ItemMeans != nil && len(m.ItemMeans) != ir {
		return fmt.Errorf("item_means has %d entries, want %d", len(m.ItemMeans), ir)
	}
	if m.ItemCounts != nil && len(m.ItemCounts) != ir {
		return fmt.Errorf("item_counts has %d entries, want %d", len(m.ItemCounts), ir)
	}
	for u, rated := range m.RatedItems {
		for k, i := range rated {
			if i < 0 || i >= ir {
				return fmt.Errorf("rated_items[%d] references item row %d of %d", u, i, ir)
			}
			if k > 0 && rated[k-1] >= i {
				return fmt.Errorf("rated_items[%d] is not strictly ascending at position %d", u, k)
			}
		}
	}
	if m.RatedValues != nil {
		if m.RatedItems == nil || len(m.RatedValues) != len(m.RatedItems) {
			return fmt.Errorf("rated_values has %d entries, want one per rated_items row", len(m.RatedValues))
		}
		for u, vals := range m.RatedValues {
			if len(vals) != len(m.RatedItems[u]) {
				return fmt.Errorf("rated_values[%d] has %d entries, want %d", u, len(vals), len(m.RatedItems[u]))
			}
			for _, v := range vals {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("rated_values[%d] holds a non-finite rating", u)
				}
			}
		}
	}
	if math.IsNaN(m.GlobalMean) || math.IsInf(m.GlobalMean, 0) {
		return errors.New("global_mean is not finite")
	}

	userIndex, err := buildIndex("user", m.UserIDs)
	if err != nil {
		return err
	}
	itemIndex, err := buildIndex("item", m.ItemIDs)
	if err != nil {
		return err
	}
	m.userIndex = userIndex
	m.itemIndex = itemIndex
	return nil
}

func buildIndex(kind string, ids []string) (map[string]int, error) {
	index := make(map[string]int, len(ids))
	for row, id := range ids {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("duplicate %s id %q in index", kind, id)
		}
		index[id] = row
	}
	return index, nil
}

// Rank returns the number of latent factors.
func (m *Model) Rank() int {
	_, c := m.ItemFactors.Dims()
	return c
}

// UserRow returns the row offset of userID.
func (m *Model) UserRow(userID string) (int, bool) {
	row, ok := m.userIndex[userID]
	return row, ok
}

// ItemRow returns the row offset of itemID.
func (m *Model) ItemRow(itemID string) (int, bool) {
	row, ok := m.itemIndex[itemID]
	return row, ok
}

// HasUser reports whether userID was retained at training time.
func (m *Model) HasUser(userID string) bool {
	_, ok := m.userIndex[userID]
	return ok
}

// RatedBy returns the item ids userID rated, or nil for an unknown user.
func (m *Model) RatedBy(userID string) []string {
	row, ok := m.userIndex[userID]
	if !ok || m.RatedItems == nil {
		return nil
	}
	ids := make([]string, len(m.RatedItems[row]))
	for k, i := range m.RatedItems[row] {
		ids[k] = m.ItemIDs[i]
	}
	return ids
}

// UserRating is one observed rating of a retained user.
type UserRating struct {
	ItemID string
	Rating float64
}

// Ratings returns the training ratings of userID at or above minRating,
// highest first with ties by item id, capped at limit (0 keeps all). ok is
// false for an unknown user or a model saved without rating values.
func (m *Model) Ratings(userID string, minRating float64, limit int) (ratings []UserRating, ok bool) {
	row, ok := m.userIndex[userID]
	if !ok || m.RatedValues == nil {
		return nil, false
	}
	out := make([]UserRating, 0, len(m.RatedItems[row]))
	for k, i := range m.RatedItems[row] {
		if v := m.RatedValues[row][k]; v >= minRating {
			out = append(out, UserRating{ItemID: m.ItemIDs[i], Rating: v})
		}
	}
	slices.SortFunc(out, func(a, b UserRating) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit:limit]
	}
	return out, true
}

// ItemStats returns the training mean and count of itemID.
func (m *Model) ItemStats(itemID string) (mean float64, count int, ok bool) {
	row, ok := m.itemIndex[itemID]
	if !ok || m.ItemMeans == nil {
		return 0, 0, false
	}
	return m.ItemMeans[row], m.ItemCounts[row], true
}

func (m *Model) userOffset(row int) float64 {
	if m.UserOffsets == nil {
		return 0
	}
	return m.UserOffsets[row]
}
