package format

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dtillman/confmorph/internal/value"
)

// TOML parses with BurntSushi/toml, using MetaData.Keys to rebuild
// the document's key order on top of the decoded map. Serialization
// is a custom writer so mapping order survives the round trip.
type TOML struct{}

func (*TOML) Parse(text string) (*value.Value, error) {
	var raw map[string]any
	md, err := toml.Decode(text, &raw)
	if err != nil {
		return nil, fmt.Errorf("parsing toml: %w", err)
	}

	root := value.NewMapping()
	for _, key := range md.Keys() {
		if err := placeTomlKey(root, raw, key); err != nil {
			return nil, err
		}
	}
	return value.Map(root), nil
}

// placeTomlKey walks one dotted key path from the metadata, creating
// intermediate mappings in document order and setting the leaf.
func placeTomlKey(root *value.Mapping, raw map[string]any, key toml.Key) error {
	cur := root
	data := raw
	for i, part := range key {
		item, ok := data[part]
		if !ok {
			return nil // array-of-tables interior keys resolve elsewhere
		}
		last := i == len(key)-1

		if sub, isMap := item.(map[string]any); isMap {
			next, exists := cur.Get(part)
			if !exists || next.Kind() != value.KindMapping {
				next = value.Map(value.NewMapping())
				cur.Set(part, next)
			}
			if last {
				return nil
			}
			cur = next.MapVal()
			data = sub
			continue
		}

		if !last {
			return nil
		}
		v, err := tomlValue(item)
		if err != nil {
			return fmt.Errorf("key %s: %w", key.String(), err)
		}
		cur.Set(part, v)
	}
	return nil
}

func tomlValue(item any) (*value.Value, error) {
	switch x := item.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.Bool(x), nil
	case int64:
		return value.Int(x), nil
	case float64:
		return value.Float(x), nil
	case string:
		return value.String(x), nil
	case time.Time:
		return value.String(x.Format(time.RFC3339)), nil
	case []any:
		elems := make([]*value.Value, len(x))
		for i, e := range x {
			v, err := tomlValue(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return value.List(elems...), nil
	case []map[string]any:
		// Array of tables.
		elems := make([]*value.Value, len(x))
		for i, e := range x {
			v, err := tomlValue(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return value.List(elems...), nil
	case map[string]any:
		// Inline tables inside arrays lose their source order;
		// sort for deterministic output.
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := value.NewMapping()
		for _, k := range keys {
			v, err := tomlValue(x[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return value.Map(m), nil
	}
	return nil, fmt.Errorf("unsupported toml value type %T", item)
}

func (*TOML) Serialize(v *value.Value) (string, error) {
	if v.Kind() != value.KindMapping {
		return "", errNotMapping("toml", v)
	}
	var sb strings.Builder
	if err := writeTomlTable(&sb, v.MapVal(), ""); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// writeTomlTable emits the scalar entries of one table, then its
// sub-tables with dotted headers, preserving key order within each
// group.
func writeTomlTable(sb *strings.Builder, m *value.Mapping, prefix string) error {
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		if v.Kind() == value.KindMapping || isTableArray(v) {
			continue
		}
		enc, err := tomlScalar(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		fmt.Fprintf(sb, "%s = %s\n", tomlKey(k), enc)
	}

	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		name := tomlKey(k)
		if prefix != "" {
			name = prefix + "." + name
		}
		switch {
		case v.Kind() == value.KindMapping:
			fmt.Fprintf(sb, "\n[%s]\n", name)
			if err := writeTomlTable(sb, v.MapVal(), name); err != nil {
				return err
			}
		case isTableArray(v):
			for _, e := range v.ListVal() {
				fmt.Fprintf(sb, "\n[[%s]]\n", name)
				if err := writeTomlTable(sb, e.MapVal(), name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// isTableArray reports whether a list is a non-empty array of tables.
func isTableArray(v *value.Value) bool {
	if v.Kind() != value.KindList || len(v.ListVal()) == 0 {
		return false
	}
	for _, e := range v.ListVal() {
		if e.Kind() != value.KindMapping {
			return false
		}
	}
	return true
}

func tomlScalar(v *value.Value) (string, error) {
	switch v.Kind() {
	case value.KindBool:
		if v.BoolVal() {
			return "true", nil
		}
		return "false", nil
	case value.KindInt:
		return v.Text(), nil
	case value.KindFloat:
		return v.Text(), nil
	case value.KindString:
		return strconv.Quote(v.StringVal()), nil
	case value.KindList:
		parts := make([]string, len(v.ListVal()))
		for i, e := range v.ListVal() {
			enc, err := tomlScalar(e)
			if err != nil {
				return "", err
			}
			parts[i] = enc
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case value.KindNull:
		return "", fmt.Errorf("null has no toml representation")
	}
	return "", fmt.Errorf("cannot serialize %s value to toml", v.Kind())
}

var bareTomlKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func tomlKey(k string) string {
	if bareTomlKey.MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}
