// Package result persists computation results by their runtime type.
//
// A [Registry] maps a Go type to a file extension and a writer, and maps the extension back to a
// reader. Writing is driven by the type of the value; reading is driven by the extension of the
// path. Several types may share one extension, in which case reading returns whatever the
// extension's reader produces.
package result

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Writer persists v at path. The path already carries the extension.
type Writer = func(path string, v any) error

// Reader restores a value from path.
type Reader = func(path string) (any, error)

// Entry describes how one result type is persisted.
type Entry struct {
	Type      reflect.Type
	Extension string
	Write     Writer
	Read      Reader
}

// Registry is the table of result types. It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	writers      map[reflect.Type]Entry
	readers      map[string]Reader
	capabilities []string
	log          *zap.Logger
}

// New creates a registry holding the built-in entries (int, float64, string and
// map[string]any) plus the entries of every capability that could be acquired.
func New(configFuncs ...ConfigFunc) (*Registry, error) {
	cfg := &Config{}
	cfg.Logger(zap.NewNop())
	for _, cf := range configFuncs {
		cf(cfg)
	}

	r := &Registry{
		writers: make(map[reflect.Type]Entry),
		readers: make(map[string]Reader),
		log:     cfg.log,
	}

	if err := registerBuiltins(r); err != nil {
		return nil, fmt.Errorf("register builtins: %w", err)
	}

	for _, c := range cfg.capabilities {
		if slices.Contains(cfg.disabled, c.Name) {
			r.log.Debug("capability disabled", zap.String("capability", c.Name))
			continue
		}
		if c.Probe != nil {
			if err := c.Probe(); err != nil {
				r.log.Debug("capability unavailable",
					zap.String("capability", c.Name),
					zap.Error(err),
				)
				continue
			}
		}
		if err := c.Register(r); err != nil {
			return nil, fmt.Errorf("register capability %q: %w", c.Name, err)
		}
		r.capabilities = append(r.capabilities, c.Name)
	}

	return r, nil
}

// Register adds an entry for t. The extension must be non-empty and must not contain a dot or a
// path separator. The first entry registered for an extension provides its reader; later entries
// for the same extension must pass a nil reader and share it.
func (r *Registry) Register(t reflect.Type, ext string, w Writer, rd Reader) error {
	if t == nil {
		return fmt.Errorf("type can't be nil")
	}
	if ext == "" || strings.ContainsAny(ext, `./\`) {
		return fmt.Errorf("invalid extension %q", ext)
	}
	if w == nil {
		return fmt.Errorf("writer can't be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.writers[t]; ok {
		return fmt.Errorf("type %s already registered as %q", t, e.Extension)
	}
	_, hasReader := r.readers[ext]
	switch {
	case rd == nil && !hasReader:
		return fmt.Errorf("extension %q has no reader", ext)
	case rd != nil && hasReader:
		return fmt.Errorf("extension %q already has a reader", ext)
	}

	if rd != nil {
		r.readers[ext] = rd
	}
	r.writers[t] = Entry{
		Type:      t,
		Extension: ext,
		Write:     w,
		Read:      r.readers[ext],
	}

	return nil
}

// MustRegister is like [Registry.Register] but panics on error.
func (r *Registry) MustRegister(t reflect.Type, ext string, w Writer, rd Reader) {
	if err := r.Register(t, ext, w, rd); err != nil {
		panic(err)
	}
}

// Register is the typed form of [Registry.Register]. A nil rd shares the reader already
// registered for ext.
func Register[T any](
	r *Registry,
	ext string,
	w func(path string, v T) error,
	rd func(path string) (T, error),
) error {
	if w == nil {
		return fmt.Errorf("writer can't be nil")
	}

	write := func(path string, v any) error {
		tv, ok := v.(T)
		if !ok {
			return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
		}
		return w(path, tv)
	}

	var read Reader
	if rd != nil {
		read = func(path string) (any, error) {
			return rd(path)
		}
	}

	return r.Register(reflect.TypeFor[T](), ext, write, read)
}

// Bytes registers T with an in-memory codec; the registry does the file I/O.
func Bytes[T any](
	r *Registry,
	ext string,
	encode func(v T) ([]byte, error),
	decode func(data []byte) (T, error),
) error {
	var rd func(path string) (T, error)
	if decode != nil {
		rd = func(path string) (T, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				var zero T
				return zero, err
			}
			return decode(data)
		}
	}

	return Register(r, ext, func(path string, v T) error {
		data, err := encode(v)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return os.WriteFile(path, data, 0o644)
	}, rd)
}

// Extension returns the extension registered for t.
func (r *Registry) Extension(t reflect.Type) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.writers[t]
	if !ok {
		return "", &UnsupportedTypeError{Type: t}
	}
	return e.Extension, nil
}

// MakeFullName appends the extension registered for t to base.
func (r *Registry) MakeFullName(base string, t reflect.Type) (string, error) {
	ext, err := r.Extension(t)
	if err != nil {
		return "", err
	}
	return base + "." + ext, nil
}

// Write persists v at base plus the extension registered for its type and returns the path
// written. An existing file is overwritten. Nothing is created when the type is unsupported.
func (r *Registry) Write(v any, base string) (string, error) {
	t := reflect.TypeOf(v)

	r.mu.RLock()
	e, ok := r.writers[t]
	r.mu.RUnlock()
	if !ok {
		return "", &UnsupportedTypeError{Type: t}
	}

	path := base + "." + e.Extension
	if err := e.Write(path, v); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}

// Read restores the value stored at path using the reader registered for its extension.
func (r *Registry) Read(path string) (any, error) {
	ext := Ext(path)

	r.mu.RLock()
	rd, ok := r.readers[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedExtensionError{Extension: ext}
	}

	v, err := rd(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return v, nil
}

// Entries returns the registered entries ordered by extension, then by type name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.writers))
	for _, e := range r.writers {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := strings.Compare(a.Extension, b.Extension); c != 0 {
			return c
		}
		return strings.Compare(a.Type.String(), b.Type.String())
	})

	return entries
}

// Extensions returns the sorted list of readable extensions.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	slices.Sort(exts)

	return exts
}

// Capabilities returns the names of the capabilities acquired by [New], in order.
func (r *Registry) Capabilities() []string {
	return slices.Clone(r.capabilities)
}

// Ext returns the extension of path without the leading dot.
func Ext(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
