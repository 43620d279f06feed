// Package table provides labeled numeric tables and their CSV persistence.
//
// A table is written with its row labels as the first column. A table that has exactly one value
// column is read back as a [Series], whatever type it was written from.
package table

import (
	"fmt"
	"slices"
	"strconv"
)

// Frame is a row-labeled table of float64 values.
type Frame struct {
	Index   []string
	Columns []string
	// Values holds one slice per row, each as long as Columns.
	Values [][]float64
}

// NewFrame returns an empty frame with the given columns.
func NewFrame(columns ...string) *Frame {
	return &Frame{
		Index:   make([]string, 0),
		Columns: slices.Clone(columns),
		Values:  make([][]float64, 0),
	}
}

// Append adds a row. The number of values must match the number of columns.
func (f *Frame) Append(label string, values ...float64) error {
	if len(values) != len(f.Columns) {
		return fmt.Errorf("row %q has %d values, want %d", label, len(values), len(f.Columns))
	}
	f.Index = append(f.Index, label)
	f.Values = append(f.Values, slices.Clone(values))
	return nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Index)
}

// Column returns a copy of the named column, or nil if there is none.
func (f *Frame) Column(name string) []float64 {
	j := slices.Index(f.Columns, name)
	if j < 0 {
		return nil
	}
	column := make([]float64, len(f.Values))
	for i, row := range f.Values {
		column[i] = row[j]
	}
	return column
}

// Series returns the named column as a series sharing the frame's index.
func (f *Frame) Series(name string) (*Series, bool) {
	column := f.Column(name)
	if column == nil {
		return nil, false
	}
	return &Series{
		Name:   name,
		Index:  slices.Clone(f.Index),
		Values: column,
	}, true
}

func (f *Frame) validate() error {
	if len(f.Columns) == 0 {
		return fmt.Errorf("frame has no columns")
	}
	if len(f.Index) != len(f.Values) {
		return fmt.Errorf("index has %d labels for %d rows", len(f.Index), len(f.Values))
	}
	for i, row := range f.Values {
		if len(row) != len(f.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(f.Columns))
		}
	}
	return nil
}

// Series is a labeled one-dimensional sequence of float64 values.
type Series struct {
	Name   string
	Index  []string
	Values []float64
}

// NewSeries returns a series indexed by position, starting at "0".
func NewSeries(name string, values ...float64) *Series {
	return &Series{
		Name:   name,
		Index:  positions(len(values)),
		Values: slices.Clone(values),
	}
}

// Len returns the number of values.
func (s *Series) Len() int {
	return len(s.Values)
}

// Frame returns the series as a one-column frame.
func (s *Series) Frame() *Frame {
	rows := make([][]float64, len(s.Values))
	for i, v := range s.Values {
		rows[i] = []float64{v}
	}
	return &Frame{
		Index:   slices.Clone(s.Index),
		Columns: []string{s.Name},
		Values:  rows,
	}
}

func positions(n int) []string {
	index := make([]string, n)
	for i := range index {
		index[i] = strconv.Itoa(i)
	}
	return index
}
