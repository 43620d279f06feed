package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

func registerBuiltins(r *Registry) error {
	if err := Bytes(r, "int",
		func(v int) ([]byte, error) {
			return []byte(strconv.Itoa(v)), nil
		},
		func(data []byte) (int, error) {
			return strconv.Atoi(strings.TrimSpace(string(data)))
		},
	); err != nil {
		return err
	}

	if err := Bytes(r, "float",
		func(v float64) ([]byte, error) {
			return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
		},
		func(data []byte) (float64, error) {
			return strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		},
	); err != nil {
		return err
	}

	if err := Bytes(r, "txt",
		func(v string) ([]byte, error) {
			return []byte(v), nil
		},
		func(data []byte) (string, error) {
			return string(data), nil
		},
	); err != nil {
		return err
	}

	if err := Bytes(r, "json", encodeJSON[map[string]any], decodeJSON); err != nil {
		return err
	}

	// Typed mappings share the reader above and come back as map[string]any.
	if err := Bytes(r, "json", encodeJSON[map[string]float64], nil); err != nil {
		return err
	}
	if err := Bytes(r, "json", encodeJSON[map[string]int], nil); err != nil {
		return err
	}
	if err := Bytes(r, "json", encodeJSON[map[string]string], nil); err != nil {
		return err
	}
	return Bytes(r, "json", encodeJSON[map[string]bool], nil)
}

// jsonFloat always keeps a fraction or an exponent, so that it is told apart from an integer
// when read back.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("unsupported float %v", v)
	}
	text := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(text, ".e") {
		text += ".0"
	}
	return []byte(text), nil
}

func encodeJSON[T any](v T) ([]byte, error) {
	return json.MarshalIndent(toJSON(v), "", "  ")
}

// toJSON replaces floats with [jsonFloat] inside string-keyed maps and slices.
func toJSON(v any) any {
	switch v := v.(type) {
	case float64:
		return jsonFloat(v)
	case float32:
		return jsonFloat(v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = toJSON(iter.Value().Interface())
		}
		return m
	case reflect.Slice:
		if rv.IsNil() || rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		fallthrough
	case reflect.Array:
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = toJSON(rv.Index(i).Interface())
		}
		return s
	}

	return v
}

func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("not a mapping")
	}
	return fromJSON(m).(map[string]any), nil
}

// fromJSON turns numbers without a fraction or an exponent into int, and the rest into float64.
func fromJSON(v any) any {
	switch v := v.(type) {
	case json.Number:
		if !strings.ContainsAny(v.String(), ".eE") {
			if n, err := strconv.Atoi(v.String()); err == nil {
				return n
			}
		}
		f, _ := strconv.ParseFloat(v.String(), 64)
		return f
	case map[string]any:
		for k, e := range v {
			v[k] = fromJSON(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = fromJSON(e)
		}
		return v
	}
	return v
}
