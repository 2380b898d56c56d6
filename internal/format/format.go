// Package format binds the value model to the supported textual
// configuration formats. Each adapter is a parse/serialize pair; a
// registry maps format names and file extensions to adapters.
package format

import (
	"errors"
	"fmt"
	"time"

	"github.com/dtillman/confmorph/internal/value"
)

// ErrUnsupportedFormat is returned for an unknown extension or format
// hint. It is a boundary configuration error, not a parse failure.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Adapter converts between raw text and the value model.
type Adapter interface {
	Parse(text string) (*value.Value, error)
	Serialize(v *value.Value) (string, error)
}

// Registry holds the adapter set for one loading context. Construct
// one per independent document pipeline; nothing here is global.
type Registry struct {
	adapters map[string]Adapter
}

// Options configures adapter construction.
type Options struct {
	// IncludeRoot anchors relative !include paths in YAML documents.
	IncludeRoot string

	// Now is the clock used by time-derived directives. Tests inject
	// a fixed clock here.
	Now func() time.Time

	// Getenv is the environment lookup used by !startstopfreq.
	Getenv func(string) (string, bool)
}

// NewRegistry builds a registry with all builtin adapters.
func NewRegistry(opts Options) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}

	y := NewYAML(opts)
	r.adapters["yaml"] = y
	r.adapters["yml"] = y
	r.adapters["json"] = &JSON{}
	r.adapters["ini"] = &INI{}
	r.adapters["sh"] = &Shell{}
	r.adapters["shell"] = &Shell{}
	r.adapters["xml"] = &XML{}
	r.adapters["toml"] = &TOML{}
	return r
}

// Adapter returns the adapter registered for a format name or file
// extension (without the dot).
func (r *Registry) Adapter(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return a, nil
}

func errNotMapping(format string, v *value.Value) error {
	return fmt.Errorf("cannot serialize %s value to %s", v.Kind(), format)
}
