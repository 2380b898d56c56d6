package format

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dtillman/confmorph/internal/directive"
	"github.com/dtillman/confmorph/internal/value"
)

// YAML is the full-fidelity adapter: nested mappings and lists, typed
// scalars, and the tagged directives resolved at parse time.
type YAML struct {
	directives *directive.Table
}

// NewYAML builds a YAML adapter with its own directive table. The
// !include directive loads referenced files through this same adapter.
func NewYAML(opts Options) *YAML {
	a := &YAML{}
	a.directives = directive.NewTable(directive.Options{
		Root:   opts.IncludeRoot,
		Now:    opts.Now,
		Getenv: opts.Getenv,
		Load: func(path string) (*value.Mapping, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			v, err := a.Parse(string(data))
			if err != nil {
				return nil, err
			}
			if v.Kind() != value.KindMapping {
				return nil, fmt.Errorf("included document is %s, want mapping", v.Kind())
			}
			return v.MapVal(), nil
		},
	})
	return a
}

// Parse converts YAML text to a value tree. Custom-tagged nodes are
// evaluated through the directive table before the tree is finalized.
func (a *YAML) Parse(text string) (*value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return value.Null(), nil
	}
	v, splice, err := a.node(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if splice != nil {
		return value.Map(splice), nil
	}
	return v, nil
}

// node converts one yaml node. A non-nil splice means the node was an
// include directive whose keys belong in the enclosing mapping.
func (a *YAML) node(n *yaml.Node) (*value.Value, *value.Mapping, error) {
	if n.Kind == yaml.AliasNode {
		return a.node(n.Alias)
	}
	if strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		h, ok := a.directives.Lookup(n.Tag)
		if !ok {
			return nil, nil, fmt.Errorf("unknown yaml tag %q", n.Tag)
		}
		res, err := h(n)
		if err != nil {
			return nil, nil, err
		}
		if res.Splice != nil {
			return nil, res.Splice, nil
		}
		return res.Value, nil, nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		m := value.NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, splice, err := a.node(n.Content[i+1])
			if err != nil {
				return nil, nil, fmt.Errorf("key %q: %w", key, err)
			}
			if splice != nil {
				for _, k := range splice.Keys() {
					sv, _ := splice.Get(k)
					m.Set(k, sv)
				}
				continue
			}
			m.Set(key, v)
		}
		return value.Map(m), nil, nil
	case yaml.SequenceNode:
		elems := make([]*value.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, splice, err := a.node(c)
			if err != nil {
				return nil, nil, err
			}
			if splice != nil {
				v = value.Map(splice)
			}
			elems = append(elems, v)
		}
		return value.List(elems...), nil, nil
	case yaml.ScalarNode:
		v, err := yamlScalar(n)
		return v, nil, err
	}
	return nil, nil, fmt.Errorf("unsupported yaml node kind %d", n.Kind)
}

func yamlScalar(n *yaml.Node) (*value.Value, error) {
	switch n.Tag {
	case "!!null", "":
		return value.Null(), nil
	case "!!bool":
		switch strings.ToLower(n.Value) {
		case "true", "yes", "on":
			return value.Bool(true), nil
		case "false", "no", "off":
			return value.Bool(false), nil
		}
		return nil, fmt.Errorf("bad yaml bool %q", n.Value)
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
			return value.Int(i), nil
		}
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("bad yaml int %q", n.Value)
		}
		return value.Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("bad yaml float %q", n.Value)
		}
		return value.Float(f), nil
	default:
		return value.String(n.Value), nil
	}
}

// Serialize renders a value tree as YAML: block style throughout,
// multi-line strings in literal style, key order preserved.
func (a *YAML) Serialize(v *value.Value) (string, error) {
	node, err := yamlNode(v)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding yaml: %w", err)
	}
	return sb.String(), nil
}

func yamlNode(v *value.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case value.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case value.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.Text()}, nil
	case value.KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.Text()}, nil
	case value.KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: v.Text()}, nil
	case value.KindString:
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.StringVal()}
		if strings.Contains(v.StringVal(), "\n") {
			n.Style = yaml.LiteralStyle
		}
		return n, nil
	case value.KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.ListVal() {
			c, err := yamlNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case value.KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.MapVal().Keys() {
			e, _ := v.MapVal().Get(k)
			c, err := yamlNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, c)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot serialize %s value to yaml", v.Kind())
}
