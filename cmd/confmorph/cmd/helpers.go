package cmd

import (
	"fmt"

	"github.com/dtillman/confmorph/internal/format"
	"github.com/dtillman/confmorph/internal/value"
)

// loadConfig loads a config source with an optional render context.
func loadConfig(pathOrText, context string) (*value.Value, error) {
	v, err := format.Load(pathOrText, format.LoadOptions{Context: context})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// requireMapping rejects documents whose top level is not a mapping,
// naming the source.
func requireMapping(v *value.Value, source string) (*value.Mapping, error) {
	if v.Kind() != value.KindMapping {
		return nil, fmt.Errorf("%s: top level is %s, want mapping", source, v.Kind())
	}
	return v.MapVal(), nil
}

// serializeAs renders a value tree in the named output format.
func serializeAs(v *value.Value, name string) (string, error) {
	reg := format.NewRegistry(format.Options{})
	adapter, err := reg.Adapter(name)
	if err != nil {
		return "", err
	}
	return adapter.Serialize(v)
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}
