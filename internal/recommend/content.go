// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ContentMetadata describes how a ContentSpace was built.
type ContentMetadata struct {
	MinDF       int       `json:"min_df"`
	MaxFeatures int       `json:"max_features"`
	NumDocs     int       `json:"num_docs"`
	NumTerms    int       `json:"num_terms"`
	EmptyDocs   int       `json:"empty_docs"`
	BuiltAt     time.Time `json:"built_at"`
}

// ErrNoVectorizer is returned by VectorizeText for a space built without
// stored IDF weights.
var ErrNoVectorizer = errors.New("content space has no idf weights")

// ContentSpace is the TF-IDF vector space over item text. Row r of Vectors
// belongs to ItemIDs[r]; CatalogIDs, when present, is aligned the same way.
// Rows are unit length or all zero (items without usable text).
//
// IDF holds the fitted weight of every vocabulary column so new text can be
// projected into the space. It is optional.
type ContentSpace struct {
	Vocabulary map[string]int
	Vectors    *SparseMatrix
	ItemIDs    []string
	CatalogIDs []int64
	IDF        []float64
	Meta       ContentMetadata

	index map[string]int
	norms []float64
}

// Index builds the id lookup and validates the structure. It must be
// called once before the space is used.
func (c *ContentSpace) Index() error {
	if c.Vectors == nil {
		return errors.New("item_vectors missing")
	}
	if err := c.Vectors.Validate(); err != nil {
		return fmt.Errorf("item_vectors: %w", err)
	}
	if c.Vectors.Rows != len(c.ItemIDs) {
		return fmt.Errorf("item_vectors has %d rows, item_id_order has %d entries", c.Vectors.Rows, len(c.ItemIDs))
	}
	if c.Vectors.Cols != len(c.Vocabulary) {
		return fmt.Errorf("item_vectors has %d columns, vocabulary has %d terms", c.Vectors.Cols, len(c.Vocabulary))
	}
	if c.CatalogIDs != nil && len(c.CatalogIDs) != len(c.ItemIDs) {
		return fmt.Errorf("catalog ids has %d entries, want %d", len(c.CatalogIDs), len(c.ItemIDs))
	}
	if c.IDF != nil {
		if len(c.IDF) != c.Vectors.Cols {
			return fmt.Errorf("idf has %d weights, vocabulary has %d terms", len(c.IDF), c.Vectors.Cols)
		}
		for col, w := range c.IDF {
			if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
				return fmt.Errorf("idf weight %v at column %d is not positive", w, col)
			}
		}
	}
	cols := make([]bool, c.Vectors.Cols)
	for term, col := range c.Vocabulary {
		if col < 0 || col >= len(cols) || cols[col] {
			return fmt.Errorf("vocabulary term %q has invalid or duplicate column %d", term, col)
		}
		cols[col] = true
	}
	index, err := buildIndex("item", c.ItemIDs)
	if err != nil {
		return err
	}

	norms := make([]float64, c.Vectors.Rows)
	for r := range norms {
		norms[r] = c.Vectors.RowNorm(r)
	}
	c.index = index
	c.norms = norms
	return nil
}

// Len returns the number of items in the space.
func (c *ContentSpace) Len() int {
	return len(c.ItemIDs)
}

// Has reports whether itemID has a row.
func (c *ContentSpace) Has(itemID string) bool {
	_, ok := c.index[itemID]
	return ok
}

// CatalogID returns the catalog id recorded for itemID.
func (c *ContentSpace) CatalogID(itemID string) (int64, bool) {
	row, ok := c.index[itemID]
	if !ok || c.CatalogIDs == nil {
		return 0, false
	}
	return c.CatalogIDs[row], true
}

// VectorizeText projects free text into the space with the stored
// vocabulary and IDF weights. The result is unit length, or all zero when
// no token is in the vocabulary.
func (c *ContentSpace) VectorizeText(text string) ([]float64, error) {
	if c.IDF == nil {
		return nil, ErrNoVectorizer
	}
	vec := make([]float64, c.Vectors.Cols)
	for _, tok := range Tokenize(text) {
		if col, ok := c.Vocabulary[tok]; ok {
			vec[col] += c.IDF[col]
		}
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec, nil
}

// Centroid returns the mean vector of the seeds present in the space and
// the distinct seeds that were used. Absent seeds are skipped.
func (c *ContentSpace) Centroid(seeds []string) ([]float64, []string) {
	return c.CentroidWithText(seeds, nil)
}

// CentroidWithText is Centroid where a seed without a row may contribute
// the projection of texts[seed]. Texts that project to a zero vector, or
// any text when the space has no IDF weights, are skipped.
func (c *ContentSpace) CentroidWithText(seeds []string, texts map[string]string) ([]float64, []string) {
	centroid := make([]float64, c.Vectors.Cols)
	seenRows := make(map[int]struct{}, len(seeds))
	seenText := make(map[string]struct{})
	var used []string
	for _, id := range seeds {
		row, ok := c.index[id]
		if !ok {
			if _, dup := seenText[id]; dup {
				continue
			}
			text := texts[id]
			if text == "" {
				continue
			}
			vec, err := c.VectorizeText(text)
			if err != nil || floats.Norm(vec, 2) == 0 {
				continue
			}
			seenText[id] = struct{}{}
			used = append(used, id)
			floats.Add(centroid, vec)
			continue
		}
		if _, dup := seenRows[row]; dup {
			continue
		}
		seenRows[row] = struct{}{}
		used = append(used, id)
		c.Vectors.AddRowTo(row, centroid)
	}
	if len(used) == 0 {
		return nil, nil
	}
	floats.Scale(1/float64(len(used)), centroid)
	return centroid, used
}

// ScoreFromSeeds ranks candidates by cosine similarity to the centroid of
// the seed vectors. Seeds never appear in the result. Nil candidates means
// every item. Fails with NoValidSeedsError when no seed is present.
func (c *ContentSpace) ScoreFromSeeds(seeds, candidates []string) ([]ScoredItem, error) {
	return c.ScoreFromSeedsWithText(seeds, nil, candidates)
}

// ScoreFromSeedsWithText is ScoreFromSeeds with catalog text for seeds
// that have no row. See CentroidWithText.
func (c *ContentSpace) ScoreFromSeedsWithText(seeds []string, texts map[string]string, candidates []string) ([]ScoredItem, error) {
	centroid, used := c.CentroidWithText(seeds, texts)
	if used == nil {
		return nil, &NoValidSeedsError{Seeds: seeds}
	}
	exclude := make(map[string]struct{}, len(seeds))
	for _, id := range seeds {
		exclude[id] = struct{}{}
	}
	return c.ScoreVector(centroid, candidates, exclude), nil
}

// ScoreVector ranks candidates by cosine similarity to vec, skipping ids in
// exclude. A zero vector or a zero row scores 0, never NaN.
func (c *ContentSpace) ScoreVector(vec []float64, candidates []string, exclude map[string]struct{}) []ScoredItem {
	vecNorm := floats.Norm(vec, 2)
	rows := c.candidateRows(candidates)
	out := make([]ScoredItem, 0, len(rows))
	for _, r := range rows {
		id := c.ItemIDs[r]
		if _, skip := exclude[id]; skip {
			continue
		}
		out = append(out, ScoredItem{ItemID: id, Score: c.cosine(r, vec, vecNorm)})
	}
	SortScored(out)
	return out
}

// Similarity returns the cosine similarity of two items.
func (c *ContentSpace) Similarity(a, b string) (float64, error) {
	ra, ok := c.index[a]
	if !ok {
		return 0, fmt.Errorf("item %q not in content space", a)
	}
	rb, ok := c.index[b]
	if !ok {
		return 0, fmt.Errorf("item %q not in content space", b)
	}
	if c.norms[ra] == 0 || c.norms[rb] == 0 {
		return 0, nil
	}
	colsA, valsA := c.Vectors.Row(ra)
	colsB, valsB := c.Vectors.Row(rb)
	var dot float64
	for i, j := 0, 0; i < len(colsA) && j < len(colsB); {
		switch {
		case colsA[i] == colsB[j]:
			dot += valsA[i] * valsB[j]
			i++
			j++
		case colsA[i] < colsB[j]:
			i++
		default:
			j++
		}
	}
	return finite(dot / (c.norms[ra] * c.norms[rb])), nil
}

func (c *ContentSpace) cosine(row int, vec []float64, vecNorm float64) float64 {
	if vecNorm == 0 || c.norms[row] == 0 {
		return 0
	}
	return finite(c.Vectors.DotDense(row, vec) / (c.norms[row] * vecNorm))
}

func (c *ContentSpace) candidateRows(candidates []string) []int {
	if candidates == nil {
		rows := make([]int, len(c.ItemIDs))
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	rows := make([]int, 0, len(candidates))
	seen := make(map[int]struct{}, len(candidates))
	for _, id := range candidates {
		row, ok := c.index[id]
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
