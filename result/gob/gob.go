// Package gob persists arbitrary Go values with encoding/gob.
package gob

import (
	"bytes"
	"encoding/gob"

	"github.com/teenjuna/decu/result"
)

// Capability returns a capability registering Item under ext.
func Capability[Item any](ext string) result.Capability {
	return result.Capability{
		Name: "gob:" + ext,
		Register: func(r *result.Registry) error {
			return result.Bytes(r, ext, encode[Item], decode[Item])
		},
	}
}

func encode[Item any](item Item) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&item); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode[Item any](data []byte) (Item, error) {
	var item Item
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&item)
	return item, err
}
