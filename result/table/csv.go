package table

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"

	"github.com/teenjuna/decu/result"
)

// Capability registers *Frame and *Series, both under "csv".
var Capability = result.Capability{
	Name:     "table",
	Register: register,
}

func register(r *result.Registry) error {
	if err := r.Register(reflect.TypeFor[*Frame](), "csv", func(path string, v any) error {
		return WriteFrame(path, v.(*Frame))
	}, Read); err != nil {
		return err
	}
	return result.Register(r, "csv", WriteSeries, nil)
}

// WriteFrame writes f as CSV at path, row labels first.
func WriteFrame(path string, f *Frame) error {
	if err := f.validate(); err != nil {
		return err
	}
	return writeCSV(path, f)
}

// WriteSeries writes s as a one-column CSV at path, row labels first.
func WriteSeries(path string, s *Series) error {
	if len(s.Index) != len(s.Values) {
		return fmt.Errorf("index has %d labels for %d values", len(s.Index), len(s.Values))
	}
	return writeCSV(path, s.Frame())
}

// Read parses the CSV at path. A single value column yields a *Series, anything else a *Frame.
func Read(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	header := records[0]
	f := NewFrame(header[1:]...)
	for n, record := range records[1:] {
		values := make([]float64, len(record)-1)
		for j, cell := range record[1:] {
			values[j], err = parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", n+1, j+1, err)
			}
		}
		if err := f.Append(record[0], values...); err != nil {
			return nil, err
		}
	}

	if len(f.Columns) == 1 {
		s, _ := f.Series(f.Columns[0])
		return s, nil
	}
	return f, nil
}

func writeCSV(path string, f *Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	header := append([]string{""}, f.Columns...)
	if err := w.Write(header); err != nil {
		_ = file.Close()
		return err
	}

	record := make([]string, len(f.Columns)+1)
	for i, row := range f.Values {
		record[0] = f.Index[i]
		for j, v := range row {
			record[j+1] = formatCell(v)
		}
		if err := w.Write(record); err != nil {
			_ = file.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseCell(cell string) (float64, error) {
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
