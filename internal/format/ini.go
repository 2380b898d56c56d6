package format

import (
	"fmt"
	"strings"

	goini "gopkg.in/ini.v1"

	"github.com/dtillman/confmorph/internal/value"
)

// INI handles the INI-like format: a two-level mapping of section name
// to key/value pairs. Nested mappings are reconstituted on write as
// dotted [section.path] headers; values are one per line, with quoted
// strings and comma-joined lists.
type INI struct{}

func (*INI) Parse(text string) (*value.Value, error) {
	f, err := goini.LoadSources(goini.LoadOptions{
		IgnoreInlineComment: true,
		// Quotes distinguish literal strings from inferred scalars,
		// so the parser must hand them through.
		PreserveSurroundedQuote: true,
	}, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("parsing ini: %w", err)
	}

	root := value.NewMapping()
	for _, sec := range f.Sections() {
		target := root
		if sec.Name() != goini.DefaultSection {
			m := value.NewMapping()
			root.Set(sec.Name(), value.Map(m))
			target = m
		}
		for _, key := range sec.Keys() {
			target.Set(key.Name(), iniValue(key.Value()))
		}
	}
	return value.Map(root), nil
}

// iniValue types one raw INI value: empty means null, a quoted value
// stays a string verbatim, anything else is inferred (with comma
// splitting into a list).
func iniValue(raw string) *value.Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return value.Null()
	}
	if unq := value.Unquote(raw); unq != raw {
		return value.String(unq)
	}
	return value.SplitList(raw)
}

// SectionValue looks up one key in a named section of a parsed
// two-level mapping.
func SectionValue(m *value.Mapping, section, key string) (*value.Value, error) {
	sv, ok := m.Get(section)
	if !ok || sv.Kind() != value.KindMapping {
		return nil, fmt.Errorf("section not found: %s", section)
	}
	v, ok := sv.MapVal().Get(key)
	if !ok {
		return nil, fmt.Errorf("key %s not found in section %s", key, section)
	}
	return v, nil
}

func (*INI) Serialize(v *value.Value) (string, error) {
	if v.Kind() != value.KindMapping {
		return "", errNotMapping("ini", v)
	}
	return writeINISection(v.MapVal(), "", iniStyle), nil
}

// lineStyle controls the differences between the INI and shell
// renderings, which share the same section-recursion shape.
type lineStyle struct {
	header func(name string) string
}

var iniStyle = lineStyle{
	header: func(name string) string { return "[" + name + "]\n" },
}

var shellStyle = lineStyle{
	header: func(name string) string { return "# [" + name + "]\n" },
}

// writeINISection renders one mapping level. Scalar entries come out
// under the current section header; nested mappings recurse with a
// dotted section path. A level with no direct scalars emits no header
// of its own.
func writeINISection(m *value.Mapping, name string, style lineStyle) string {
	var direct, sub strings.Builder

	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		childName := k
		if name != "" {
			childName = name + "." + k
		}

		switch v.Kind() {
		case value.KindMapping:
			sub.WriteString(writeINISection(v.MapVal(), childName, style))
		case value.KindList:
			for _, e := range v.ListVal() {
				if e.Kind() == value.KindMapping {
					sub.WriteString(writeINISection(e.MapVal(), childName, style))
					continue
				}
				// First non-mapping element stands in for the
				// whole list on a single comma-joined line.
				direct.WriteString(k + "=" + iniText(v) + "\n")
				break
			}
		default:
			direct.WriteString(k + "=" + iniScalar(v) + "\n")
		}
	}

	prefix := "\n"
	if strings.Contains(name, ".") {
		prefix = ""
	}
	if direct.Len() == 0 && sub.Len() > 0 {
		return prefix + sub.String()
	}
	header := ""
	if name != "" {
		header = style.header(name)
	}
	return prefix + header + direct.String() + sub.String()
}

// iniScalar renders one non-list scalar: strings quoted with the
// problematic characters substituted, other scalars bare so their
// types survive re-parsing.
func iniScalar(v *value.Value) string {
	if v.Kind() == value.KindString {
		s := strings.ReplaceAll(v.StringVal(), "'", `"`)
		s = strings.ReplaceAll(s, "\n", " ")
		return "'" + s + "'"
	}
	return v.Text()
}

// iniText renders a list value comma-joined on one line.
func iniText(v *value.Value) string {
	s := strings.ReplaceAll(v.Text(), "'", `"`)
	return strings.ReplaceAll(s, "\n", " ")
}
