// Package series holds the sample matrix and keystream types shared by the
// recovery engine, the data sources and the exporters.
package series

import (
	"gocrack/domain/core"
)

// Matrix is a Days x Measures table of samples stored row-major. A row is one
// repetition of the series (a "day"); a column is one slot of the keystream.
type Matrix struct {
	days     int
	measures int
	data     []int32
}

// NewMatrix allocates a zeroed matrix
func NewMatrix(days, measures int) (*Matrix, error) {
	if days <= 0 || measures <= 0 {
		return nil, core.ErrEmptyMatrix
	}
	return &Matrix{
		days:     days,
		measures: measures,
		data:     make([]int32, days*measures),
	}, nil
}

// FromRows copies a rectangular slice of rows into a new matrix
func FromRows(rows [][]int32) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	m, err := NewMatrix(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != m.measures {
			return nil, core.ErrRaggedMatrix
		}
		copy(m.data[r*m.measures:], row)
	}
	return m, nil
}

// Days returns the number of rows
func (m *Matrix) Days() int { return m.days }

// Measures returns the number of columns
func (m *Matrix) Measures() int { return m.measures }

// At returns the sample at row r, column c
func (m *Matrix) At(r, c int) int32 {
	return m.data[r*m.measures+c]
}

// Set stores v at row r, column c
func (m *Matrix) Set(r, c int, v int32) {
	m.data[r*m.measures+c] = v
}

// Row returns a view of row r. Writes through the view modify the matrix.
func (m *Matrix) Row(r int) []int32 {
	return m.data[r*m.measures : (r+1)*m.measures]
}

// Rows returns a deep copy of the matrix as a slice of rows
func (m *Matrix) Rows() [][]int32 {
	rows := make([][]int32, m.days)
	for r := range rows {
		rows[r] = append([]int32(nil), m.Row(r)...)
	}
	return rows
}

// Clone returns an independent copy
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		days:     m.days,
		measures: m.measures,
		data:     append([]int32(nil), m.data...),
	}
}

// SameShape reports whether both matrices have identical dimensions
func (m *Matrix) SameShape(o *Matrix) bool {
	return m.days == o.days && m.measures == o.measures
}

// Equal reports whether both matrices hold the same samples
func (m *Matrix) Equal(o *Matrix) bool {
	if !m.SameShape(o) {
		return false
	}
	for i, v := range m.data {
		if o.data[i] != v {
			return false
		}
	}
	return true
}

// ValidatePositive checks the strictly positive sample domain required for
// plaintext and ciphertext inputs.
func (m *Matrix) ValidatePositive() error {
	for i, v := range m.data {
		if v <= 0 {
			return core.NewSampleError(i/m.measures, i%m.measures, v)
		}
	}
	return nil
}

// Column copies column c into dst, which must hold Days entries
func (m *Matrix) Column(c int, dst []int32) {
	for r := range dst[:m.days] {
		dst[r] = m.data[r*m.measures+c]
	}
}

// SetColumn overwrites column c with src
func (m *Matrix) SetColumn(c int, src []int32) {
	for r := range src[:m.days] {
		m.data[r*m.measures+c] = src[r]
	}
}
