package format

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtillman/confmorph/internal/template"
	"github.com/dtillman/confmorph/internal/value"
)

// LoadOptions controls how a config source is loaded.
type LoadOptions struct {
	// Format names the adapter when the source is an in-memory
	// string. Ignored for files, where the extension decides.
	// Defaults to yaml.
	Format string

	// Context optionally pre-renders the raw input through the
	// template engine before parsing. It can be a file path or a
	// literal config string; its top-level keys become the render
	// scope.
	Context string

	// ContextMap is an already-built render scope, taking precedence
	// over Context.
	ContextMap *value.Mapping

	// Registry supplies the adapters. A default registry anchored at
	// the source file's directory is built when nil.
	Registry *Registry
}

// Load reads a configuration from a file path or a literal string and
// parses it with the adapter selected by extension or format hint.
func Load(pathOrText string, opts LoadOptions) (*value.Value, error) {
	text := pathOrText
	name := opts.Format
	isFile := false

	if fileExists(pathOrText) {
		data, err := os.ReadFile(pathOrText)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", pathOrText, err)
		}
		text = string(data)
		name = strings.TrimPrefix(filepath.Ext(pathOrText), ".")
		isFile = true
	}
	if name == "" {
		name = "yaml"
	}

	reg := opts.Registry
	if reg == nil {
		root := ""
		if isFile {
			root = filepath.Dir(pathOrText)
		}
		reg = NewRegistry(Options{IncludeRoot: root})
	}

	adapter, err := reg.Adapter(name)
	if err != nil {
		return nil, err
	}
	if _, ok := adapter.(*Shell); ok && isFile {
		adapter = &Shell{SourceFile: pathOrText}
	}

	if opts.Context != "" || opts.ContextMap != nil {
		scope := opts.ContextMap
		if scope == nil {
			ctxVal, err := Load(opts.Context, LoadOptions{Registry: reg})
			if err != nil {
				return nil, fmt.Errorf("loading context: %w", err)
			}
			if ctxVal.Kind() != value.KindMapping {
				return nil, fmt.Errorf("context document is %s, want mapping", ctxVal.Kind())
			}
			scope = ctxVal.MapVal()
		}
		rendered, err := template.New().RenderDocument(text, scope)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", describeSource(pathOrText, isFile), err)
		}
		text = rendered
	}

	v, err := adapter.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", describeSource(pathOrText, isFile), err)
	}
	return v, nil
}

func fileExists(path string) bool {
	if strings.ContainsAny(path, "\n:{") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func describeSource(pathOrText string, isFile bool) string {
	if isFile {
		return pathOrText
	}
	return "config string"
}
