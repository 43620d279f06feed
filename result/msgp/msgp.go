// Package msgp persists msgp-generated types with github.com/tinylib/msgp.
package msgp

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"github.com/teenjuna/decu/result"
)

type msgpable[Item any] interface {
	*Item
	msgp.Marshaler
	msgp.Unmarshaler
}

// Capability returns a capability registering Item under ext.
func Capability[Item any, ItemPtr msgpable[Item]](ext string) result.Capability {
	return result.Capability{
		Name: "msgp:" + ext,
		Register: func(r *result.Registry) error {
			return result.Bytes(r, ext, encode[Item, ItemPtr], decode[Item, ItemPtr])
		},
	}
}

func encode[Item any, ItemPtr msgpable[Item]](item Item) ([]byte, error) {
	return ItemPtr(&item).MarshalMsg(nil)
}

func decode[Item any, ItemPtr msgpable[Item]](data []byte) (Item, error) {
	var item Item
	rest, err := ItemPtr(&item).UnmarshalMsg(data)
	if err != nil {
		return item, err
	}
	if len(rest) != 0 {
		return item, fmt.Errorf("%d trailing bytes", len(rest))
	}
	return item, nil
}
