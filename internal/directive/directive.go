// Package directive implements the custom YAML tags resolved at parse
// time: cycle-string wrapping, sub-document inclusion, string joining,
// cycledef range formatting, and timestamp ids. Handlers live in an
// explicit per-parser table rather than a process-global registry, so
// the directive set is testable in isolation and concurrent parsers
// never interfere.
package directive

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtillman/confmorph/internal/value"
)

// Result is what a handler produces: either a plain value, or a
// mapping whose top-level keys are spliced into the enclosing
// document (the include directive).
type Result struct {
	Value  *value.Value
	Splice *value.Mapping
}

// Handler evaluates one tagged YAML node.
type Handler func(node *yaml.Node) (Result, error)

// LoadFunc loads a referenced YAML document into a mapping. Injected
// by the YAML adapter so includes reuse the full parser.
type LoadFunc func(path string) (*value.Mapping, error)

// Options configures a directive table.
type Options struct {
	// Root anchors relative include paths. Defaults to the working
	// directory.
	Root string

	// Load parses an included YAML file. Required for !include.
	Load LoadFunc

	// Now supplies the clock for !nowtimestamp. Defaults to time.Now.
	Now func() time.Time

	// Getenv resolves the environment lookups of !startstopfreq.
	// Defaults to os.LookupEnv.
	Getenv func(string) (string, bool)
}

// Table maps tag names to handlers.
type Table struct {
	handlers map[string]Handler
}

// NewTable builds the builtin directive set.
func NewTable(opts Options) *Table {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Getenv == nil {
		opts.Getenv = os.LookupEnv
	}

	t := &Table{handlers: make(map[string]Handler)}
	t.handlers["!cycstr"] = cycstr
	t.handlers["!join_str"] = joinStr
	t.handlers["!startstopfreq"] = startStopFreq(opts.Getenv)
	t.handlers["!nowtimestamp"] = nowTimestamp(opts.Now)
	t.handlers["!include"] = includeFiles(opts.Root, opts.Load)
	return t
}

// Lookup returns the handler for a tag.
func (t *Table) Lookup(tag string) (Handler, bool) {
	h, ok := t.handlers[tag]
	return h, ok
}

// cycstr wraps its argument text in the cycle-string markers consumed
// by the downstream scheduler.
func cycstr(node *yaml.Node) (Result, error) {
	if node.Kind != yaml.ScalarNode {
		return Result{}, fmt.Errorf("!cycstr expects a scalar node")
	}
	return Result{Value: value.String("<cyclestr>" + node.Value + "</cyclestr>")}, nil
}

// joinStr concatenates the string renderings of a sequence.
func joinStr(node *yaml.Node) (Result, error) {
	items, err := sequenceStrings(node, "!join_str")
	if err != nil {
		return Result{}, err
	}
	joined := ""
	for _, s := range items {
		joined += s
	}
	return Result{Value: value.String(joined)}, nil
}

// startStopFreq formats three cycledef arguments, each resolved
// against the environment with the literal argument as fallback, into
// the fixed "HH00 HH00 HH:00:00" range shape.
func startStopFreq(getenv func(string) (string, bool)) Handler {
	return func(node *yaml.Node) (Result, error) {
		items, err := sequenceStrings(node, "!startstopfreq")
		if err != nil {
			return Result{}, err
		}
		if len(items) != 3 {
			return Result{}, fmt.Errorf("!startstopfreq expects 3 arguments, got %d", len(items))
		}
		resolved := make([]string, 3)
		for i, arg := range items {
			if env, ok := getenv(arg); ok {
				resolved[i] = env
			} else {
				resolved[i] = arg
			}
		}
		s := fmt.Sprintf("%s00 %s00 %s:00:00", resolved[0], resolved[1], resolved[2])
		return Result{Value: value.String(s)}, nil
	}
}

// nowTimestamp produces a time-derived id, ignoring its argument node.
func nowTimestamp(now func() time.Time) Handler {
	return func(*yaml.Node) (Result, error) {
		return Result{Value: value.String("id_" + strconv.FormatInt(now().Unix(), 10))}, nil
	}
}

// includeFiles loads the referenced documents and splices their
// top-level keys into the enclosing document, last file winning on
// key collision.
func includeFiles(root string, load LoadFunc) Handler {
	return func(node *yaml.Node) (Result, error) {
		if load == nil {
			return Result{}, fmt.Errorf("!include is not available in this parser")
		}
		paths, err := sequenceStrings(node, "!include")
		if err != nil {
			return Result{}, err
		}

		merged := value.NewMapping()
		for _, p := range paths {
			if !filepath.IsAbs(p) {
				p = filepath.Join(root, p)
			}
			doc, err := load(p)
			if err != nil {
				return Result{}, fmt.Errorf("including %s: %w", p, err)
			}
			for _, k := range doc.Keys() {
				v, _ := doc.Get(k)
				merged.Set(k, v)
			}
		}
		return Result{Splice: merged}, nil
	}
}

// sequenceStrings extracts the scalar texts of a sequence node; a bare
// scalar is accepted as a one-element sequence.
func sequenceStrings(node *yaml.Node, tag string) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%s expects scalar sequence items", tag)
			}
			out = append(out, c.Value)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s expects a scalar or sequence node", tag)
}
