// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"fmt"
	"math"
)

// SparseMatrix is a compressed sparse row matrix. Row i occupies
// ColIdx[RowPtr[i]:RowPtr[i+1]] and the matching Values range; column
// indices within a row are strictly increasing.
type SparseMatrix struct {
	Rows   int
	Cols   int
	RowPtr []int
	ColIdx []int
	Values []float64
}

// Row returns the column indices and values stored in row i.
// The returned slices alias the matrix and must not be modified.
func (s *SparseMatrix) Row(i int) ([]int, []float64) {
	lo, hi := s.RowPtr[i], s.RowPtr[i+1]
	return s.ColIdx[lo:hi], s.Values[lo:hi]
}

// NNZ returns the number of stored entries.
func (s *SparseMatrix) NNZ() int {
	return len(s.Values)
}

// RowNorm returns the Euclidean norm of row i.
func (s *SparseMatrix) RowNorm(i int) float64 {
	_, vals := s.Row(i)
	var sum float64
	for _, v := range vals {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// DotDense returns the dot product of row i with a dense vector of length Cols.
func (s *SparseMatrix) DotDense(i int, dense []float64) float64 {
	cols, vals := s.Row(i)
	var sum float64
	for k, c := range cols {
		sum += vals[k] * dense[c]
	}
	return sum
}

// AddRowTo accumulates row i into dst, which must have length Cols.
func (s *SparseMatrix) AddRowTo(i int, dst []float64) {
	cols, vals := s.Row(i)
	for k, c := range cols {
		dst[c] += vals[k]
	}
}

// Validate checks the CSR structure.
func (s *SparseMatrix) Validate() error {
	if s.Rows < 0 || s.Cols < 0 {
		return fmt.Errorf("negative shape %dx%d", s.Rows, s.Cols)
	}
	if len(s.RowPtr) != s.Rows+1 {
		return fmt.Errorf("row pointer length %d, want %d", len(s.RowPtr), s.Rows+1)
	}
	if len(s.ColIdx) != len(s.Values) {
		return fmt.Errorf("column index length %d does not match values length %d", len(s.ColIdx), len(s.Values))
	}
	if s.RowPtr[0] != 0 || s.RowPtr[s.Rows] != len(s.Values) {
		return fmt.Errorf("row pointer bounds [%d, %d], want [0, %d]", s.RowPtr[0], s.RowPtr[s.Rows], len(s.Values))
	}
	for i := 0; i < s.Rows; i++ {
		lo, hi := s.RowPtr[i], s.RowPtr[i+1]
		if lo > hi {
			return fmt.Errorf("row %d has decreasing pointers", i)
		}
		prev := -1
		for _, c := range s.ColIdx[lo:hi] {
			if c <= prev || c >= s.Cols {
				return fmt.Errorf("row %d has invalid column %d", i, c)
			}
			prev = c
		}
	}
	return nil
}
