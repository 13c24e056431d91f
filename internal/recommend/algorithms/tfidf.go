// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package algorithms

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/cinemind/internal/recommend"
)

// Document is the text of one item.
type Document struct {
	ItemID    string
	CatalogID int64
	Text      string
}

// TFIDFConfig contains configuration for the TF-IDF builder.
type TFIDFConfig struct {
	// MinDF drops terms that appear in fewer documents.
	MinDF int

	// MaxFeatures keeps only the most frequent terms across the corpus.
	// 0 disables the cap.
	MaxFeatures int
}

// DefaultTFIDFConfig returns default TF-IDF configuration.
func DefaultTFIDFConfig() TFIDFConfig {
	return TFIDFConfig{
		MinDF:       2,
		MaxFeatures: 50000,
	}
}

// TFIDFBuilder builds L2 normalized TF-IDF vectors.
type TFIDFBuilder struct {
	config TFIDFConfig
}

// NewTFIDFBuilder creates a builder. MinDF below 1 is treated as 1.
func NewTFIDFBuilder(cfg TFIDFConfig) *TFIDFBuilder {
	cfg.MinDF = max(cfg.MinDF, 1)
	cfg.MaxFeatures = max(cfg.MaxFeatures, 0)
	return &TFIDFBuilder{config: cfg}
}

// cancelCheckEvery is how many documents are processed between context checks.
const cancelCheckEvery = 1000

// Build vectorizes docs. Rows follow the order item ids first appear; a
// repeated id replaces the earlier document's text. A document with no
// surviving terms gets an all-zero row.
//
// Fails with recommend.InsufficientDataError when docs is empty or no term
// survives pruning.
func (b *TFIDFBuilder) Build(ctx context.Context, docs []Document) (*recommend.ContentSpace, error) {
	docs = dedupeDocuments(docs)
	if len(docs) == 0 {
		return nil, &recommend.InsufficientDataError{Reason: "no documents"}
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	total := make(map[string]int)
	for d, doc := range docs {
		if d%cancelCheckEvery == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		tc := make(map[string]int)
		for _, tok := range recommend.Tokenize(doc.Text) {
			tc[tok]++
		}
		for term, n := range tc {
			df[term]++
			total[term] += n
		}
		counts[d] = tc
	}

	vocab := b.selectTerms(df, total)
	if len(vocab) == 0 {
		return nil, &recommend.InsufficientDataError{
			Reason: fmt.Sprintf("no terms with document frequency >= %d", b.config.MinDF),
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	columns := make(map[string]int, len(vocab))
	for col, term := range vocab {
		columns[term] = col
		idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	type cell struct {
		col int
		val float64
	}
	m := &recommend.SparseMatrix{
		Rows:   len(docs),
		Cols:   len(vocab),
		RowPtr: make([]int, 1, len(docs)+1),
	}
	ids := make([]string, len(docs))
	catalogIDs := make([]int64, len(docs))
	empty := 0
	for d, doc := range docs {
		if d%cancelCheckEvery == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		ids[d] = doc.ItemID
		catalogIDs[d] = doc.CatalogID

		row := make([]cell, 0, len(counts[d]))
		for term, tf := range counts[d] {
			if col, ok := columns[term]; ok {
				row = append(row, cell{col: col, val: float64(tf) * idf[col]})
			}
		}
		if len(row) == 0 {
			empty++
		} else {
			slices.SortFunc(row, func(a, b cell) int { return a.col - b.col })
			start := len(m.Values)
			for _, c := range row {
				m.ColIdx = append(m.ColIdx, c.col)
				m.Values = append(m.Values, c.val)
			}
			vals := m.Values[start:]
			floats.Scale(1/floats.Norm(vals, 2), vals)
		}
		m.RowPtr = append(m.RowPtr, len(m.Values))
	}

	vocabulary := make(map[string]int, len(vocab))
	for col, term := range vocab {
		vocabulary[term] = col
	}
	cs := &recommend.ContentSpace{
		Vocabulary: vocabulary,
		Vectors:    m,
		ItemIDs:    ids,
		CatalogIDs: catalogIDs,
		IDF:        idf,
		Meta: recommend.ContentMetadata{
			MinDF:       b.config.MinDF,
			MaxFeatures: b.config.MaxFeatures,
			NumDocs:     len(docs),
			NumTerms:    len(vocab),
			EmptyDocs:   empty,
			BuiltAt:     time.Now().UTC(),
		},
	}
	if err := cs.Index(); err != nil {
		return nil, fmt.Errorf("built content space is inconsistent: %w", err)
	}
	return cs, nil
}

// selectTerms applies MinDF and MaxFeatures and returns the vocabulary
// sorted by term. MaxFeatures ranks by total corpus frequency, ties by term.
func (b *TFIDFBuilder) selectTerms(df, total map[string]int) []string {
	terms := make([]string, 0, len(df))
	for term, n := range df {
		if n >= b.config.MinDF {
			terms = append(terms, term)
		}
	}
	if b.config.MaxFeatures > 0 && len(terms) > b.config.MaxFeatures {
		slices.SortFunc(terms, func(a, c string) int {
			if d := cmp.Compare(total[c], total[a]); d != 0 {
				return d
			}
			return cmp.Compare(a, c)
		})
		terms = terms[:b.config.MaxFeatures]
	}
	slices.Sort(terms)
	return terms
}

// dedupeDocuments drops documents with an empty id and collapses repeated
// ids into the position of the first occurrence with the last text.
func dedupeDocuments(docs []Document) []Document {
	pos := make(map[string]int, len(docs))
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.ItemID == "" {
			continue
		}
		if i, ok := pos[d.ItemID]; ok {
			out[i] = d
			continue
		}
		pos[d.ItemID] = len(out)
		out = append(out, d)
	}
	return out
}
