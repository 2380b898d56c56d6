package format

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/dtillman/confmorph/internal/value"
)

// Reserved keys the XML adapter uses to round-trip element structure
// that has no direct mapping equivalent.
const (
	xmlAttribKey = "attrib"
	xmlValueKey  = "valuea"
)

// XML maps element trees onto mappings: child elements become keys, a
// repeated tag collapses into a list, attributes land under "attrib",
// and scalar text alongside attributes lands under "valuea".
type XML struct{}

func (*XML) Parse(text string) (*value.Value, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, fmt.Errorf("parsing xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsing xml: no root element")
	}
	return value.Map(xmlToMapping(root)), nil
}

func xmlToMapping(elem *etree.Element) *value.Mapping {
	m := value.NewMapping()
	for _, child := range elem.ChildElements() {
		var v *value.Value
		if len(child.ChildElements()) > 0 {
			v = value.Map(xmlToMapping(child))
		} else {
			v = xmlLeaf(child.Text())
		}

		if len(child.Attr) > 0 {
			wrapped := value.NewMapping()
			attrs := value.NewMapping()
			for _, a := range child.Attr {
				attrs.Set(a.Key, value.String(a.Value))
			}
			wrapped.Set(xmlAttribKey, value.Map(attrs))
			if v.Kind() == value.KindMapping {
				for _, k := range v.MapVal().Keys() {
					cv, _ := v.MapVal().Get(k)
					wrapped.Set(k, cv)
				}
			} else if !v.IsNull() {
				wrapped.Set(xmlValueKey, v)
			}
			v = value.Map(wrapped)
		}

		k := child.Tag
		if existing, ok := m.Get(k); ok {
			if existing.Kind() != value.KindList {
				existing = value.List(existing)
			}
			existing.Append(v)
			m.Set(k, existing)
		} else {
			m.Set(k, v)
		}
	}
	return m
}

// xmlLeaf types the text of a leaf element: blank text is null,
// anything else is comma-split and inferred.
func xmlLeaf(text string) *value.Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return value.Null()
	}
	return value.SplitList(trimmed)
}

// Serialize reverses Parse, wrapping the document in a root element.
// Text content is written with quotes unescaped; attribute values
// keep their quotes escaped.
func (*XML) Serialize(v *value.Value) (string, error) {
	if v.Kind() != value.KindMapping {
		return "", errNotMapping("xml", v)
	}

	doc := etree.NewDocument()
	root := doc.CreateElement("root")
	if err := mappingToXML(v.MapVal(), root); err != nil {
		return "", err
	}

	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("encoding xml: %w", err)
	}
	return out, nil
}

func mappingToXML(m *value.Mapping, elem *etree.Element) error {
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		switch {
		case k == xmlValueKey:
			if v.Kind() == value.KindMapping {
				if err := mappingToXML(v.MapVal(), elem); err != nil {
					return err
				}
			} else {
				elem.SetText(v.Text())
			}
		case k == xmlAttribKey && v.Kind() == value.KindMapping:
			for _, ak := range v.MapVal().Keys() {
				av, _ := v.MapVal().Get(ak)
				elem.CreateAttr(ak, av.Text())
			}
		case v.Kind() == value.KindMapping:
			child := elem.CreateElement(k)
			if err := mappingToXML(v.MapVal(), child); err != nil {
				return err
			}
		case v.Kind() == value.KindList:
			for _, e := range v.ListVal() {
				child := elem.CreateElement(k)
				if e.Kind() == value.KindMapping {
					if err := mappingToXML(e.MapVal(), child); err != nil {
						return err
					}
				} else if !e.IsNull() {
					child.SetText(e.Text())
				}
			}
		default:
			child := elem.CreateElement(k)
			if !v.IsNull() {
				child.SetText(v.Text())
			}
		}
	}
	return nil
}
