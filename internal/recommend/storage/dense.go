// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package storage

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

func fromDense(m *mat.Dense) *denseState {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return &denseState{Rows: rows, Cols: cols, Data: data}
}

// toDense rebuilds the matrix. A nil state means the field was absent.
func (d *denseState) toDense() (*mat.Dense, error) {
	if d == nil {
		return nil, errors.New("field missing")
	}
	if d.Rows < 1 || d.Cols < 1 {
		return nil, fmt.Errorf("invalid shape %dx%d", d.Rows, d.Cols)
	}
	if len(d.Data) != d.Rows*d.Cols {
		return nil, fmt.Errorf("%d values for shape %dx%d", len(d.Data), d.Rows, d.Cols)
	}
	return mat.NewDense(d.Rows, d.Cols, d.Data), nil
}
