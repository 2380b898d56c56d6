// Package confmorph provides the public Go library API for confmorph.
//
// confmorph loads workflow configuration files in YAML, JSON, INI, XML,
// TOML, or legacy shell form into one ordered representation, expands
// jinja-style expressions against the document itself, and converts,
// merges, flattens, filters, or validates the result.
//
// # Basic Usage
//
//	client := confmorph.New(confmorph.Options{})
//
//	cfg, err := client.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Resolve {{ ... }} expressions against the document itself
//	if err := client.Expand(cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Render in another format
//	text, err := client.Convert(cfg, "ini")
package confmorph

import (
	"fmt"

	"github.com/dtillman/confmorph/internal/format"
	"github.com/dtillman/confmorph/internal/ops"
	"github.com/dtillman/confmorph/internal/query"
	"github.com/dtillman/confmorph/internal/schema"
	"github.com/dtillman/confmorph/internal/template"
	"github.com/dtillman/confmorph/internal/value"
)

// Options configures a confmorph client.
type Options struct {
	// Format names the adapter used for literal config strings, where
	// there is no file extension to dispatch on. Default: "yaml".
	Format string

	// Context optionally pre-renders every loaded document through
	// the template engine. A file path or a literal config string.
	Context string
}

// Client is the main entry point for the confmorph library.
type Client struct {
	opts Options
}

// New creates a confmorph Client.
func New(opts Options) *Client {
	return &Client{opts: opts}
}

// Load reads a config from a file path or literal string and parses it
// with the adapter selected by extension or by the client's format
// option.
func (c *Client) Load(pathOrText string) (*value.Value, error) {
	return format.Load(pathOrText, format.LoadOptions{
		Format:  c.opts.Format,
		Context: c.opts.Context,
	})
}

// Expand resolves the template expressions of a document against its
// own contents, in place. Expressions that cannot be resolved yet stay
// literal for a later pass.
func (c *Client) Expand(doc *value.Value) error {
	m, err := topMapping(doc)
	if err != nil {
		return err
	}
	return template.New().Expand(m)
}

// Convert renders a document in the named output format.
func (c *Client) Convert(doc *value.Value, outputType string) (string, error) {
	adapter, err := format.NewRegistry(format.Options{}).Adapter(outputType)
	if err != nil {
		return "", err
	}
	return adapter.Serialize(doc)
}

// Flatten reduces a document to a single level of non-mapping leaves.
// keys optionally restricts the walk to a subset of top-level keys.
func (c *Client) Flatten(doc *value.Value, keys []string) (*value.Value, error) {
	m, err := topMapping(doc)
	if err != nil {
		return nil, err
	}
	return value.Map(ops.Flatten(m, keys)), nil
}

// Structure projects a flat document onto the shape of a template
// document.
func (c *Client) Structure(flat, tmpl *value.Value) (*value.Value, error) {
	fm, err := topMapping(flat)
	if err != nil {
		return nil, err
	}
	tm, err := topMapping(tmpl)
	if err != nil {
		return nil, err
	}
	return value.Map(ops.Structure(fm, tm)), nil
}

// Merge merges src into dst in place. With provideDefault, existing
// dst entries are only overwritten while they still look unset.
func (c *Client) Merge(src, dst *value.Value, provideDefault bool) error {
	sm, err := topMapping(src)
	if err != nil {
		return err
	}
	dm, err := topMapping(dst)
	if err != nil {
		return err
	}
	ops.Merge(sm, dm, provideDefault)
	return nil
}

// Validate compares a document against a validation template and
// returns the entries whose types disagree. An empty mapping means the
// document is valid.
func (c *Client) Validate(doc, tmpl *value.Value) (*value.Mapping, error) {
	dm, err := topMapping(doc)
	if err != nil {
		return nil, err
	}
	tm, err := topMapping(tmpl)
	if err != nil {
		return nil, err
	}
	return ops.Validate(dm, tm), nil
}

// Filter keeps the top-level keys matching any of the anchored regex
// patterns.
func (c *Client) Filter(doc *value.Value, patterns []string) (*value.Value, error) {
	m, err := topMapping(doc)
	if err != nil {
		return nil, err
	}
	filtered, err := ops.Filter(m, patterns)
	if err != nil {
		return nil, err
	}
	return value.Map(filtered), nil
}

// Get answers a dotted path query (gjson syntax) against a document,
// returning the result as text.
func (c *Client) Get(doc *value.Value, path string) (string, error) {
	jsonDoc, err := c.Convert(doc, "json")
	if err != nil {
		return "", err
	}
	return query.Extract(jsonDoc, path)
}

// ValidateSchema checks a document against a JSON Schema given as
// schema text.
func (c *Client) ValidateSchema(doc *value.Value, schemaText string) (*schema.Result, error) {
	return schema.Validate(doc, schemaText)
}

func topMapping(doc *value.Value) (*value.Mapping, error) {
	if doc == nil || doc.Kind() != value.KindMapping {
		return nil, fmt.Errorf("document top level must be a mapping")
	}
	return doc.MapVal(), nil
}
