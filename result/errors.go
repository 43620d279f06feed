package result

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrUnsupportedType matches any [UnsupportedTypeError].
	ErrUnsupportedType = errors.New("unsupported result type")
	// ErrUnsupportedExtension matches any [UnsupportedExtensionError].
	ErrUnsupportedExtension = errors.New("unsupported result extension")
)

// UnsupportedTypeError is returned when a value has no registered writer.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return "unsupported result type <nil>"
	}
	return fmt.Sprintf("unsupported result type %s", e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// UnsupportedExtensionError is returned when a path has no registered reader.
type UnsupportedExtensionError struct {
	Extension string
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("unsupported result extension %q", e.Extension)
}

func (e *UnsupportedExtensionError) Is(target error) bool {
	return target == ErrUnsupportedExtension
}
