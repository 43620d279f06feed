// Package array persists gonum matrices and vectors.
//
// Matrices and vectors use gonum's binary encoding, which keeps shape and values exactly. Plain
// float slices are stored as text, one value per line.
package array

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/teenjuna/decu/result"
)

// Capability registers *mat.Dense ("mat"), *mat.VecDense ("vec") and []float64 ("floats").
var Capability = result.Capability{
	Name:     "array",
	Register: register,
}

func register(r *result.Registry) error {
	if err := result.Bytes(r, "mat",
		func(m *mat.Dense) ([]byte, error) {
			return m.MarshalBinary()
		},
		func(data []byte) (*mat.Dense, error) {
			var m mat.Dense
			if err := m.UnmarshalBinary(data); err != nil {
				return nil, err
			}
			return &m, nil
		},
	); err != nil {
		return err
	}

	if err := result.Bytes(r, "vec",
		func(v *mat.VecDense) ([]byte, error) {
			return v.MarshalBinary()
		},
		func(data []byte) (*mat.VecDense, error) {
			var v mat.VecDense
			if err := v.UnmarshalBinary(data); err != nil {
				return nil, err
			}
			return &v, nil
		},
	); err != nil {
		return err
	}

	return result.Bytes(r, "floats", encodeFloats, decodeFloats)
}

func encodeFloats(values []float64) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range values {
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func decodeFloats(data []byte) ([]float64, error) {
	values := make([]float64, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
