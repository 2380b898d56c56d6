// Package value defines the canonical in-memory representation of
// configuration data: an ordered, typed tree of mappings, lists, and
// scalars that every format adapter parses into and serializes from.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMapping
)

// String returns a human-readable kind name for error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a tagged variant holding exactly one of the configuration
// data shapes. Scalars are immutable; lists and mappings are mutated
// in place by later phases (template expansion, merge).
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []*Value
	m    *Mapping
}

// Null returns the null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Float returns a floating-point value.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// List returns a list value holding the given elements.
func List(elems ...*Value) *Value { return &Value{kind: KindList, list: elems} }

// Map returns a mapping value. A nil mapping is normalized to empty.
func Map(m *Mapping) *Value {
	if m == nil {
		m = NewMapping()
	}
	return &Value{kind: KindMapping, m: m}
}

// Kind reports which variant this value holds.
func (v *Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v *Value) IsNull() bool { return v.kind == KindNull }

// BoolVal returns the boolean payload. Valid only for KindBool.
func (v *Value) BoolVal() bool { return v.b }

// IntVal returns the integer payload. Valid only for KindInt.
func (v *Value) IntVal() int64 { return v.i }

// FloatVal returns the float payload. Valid only for KindFloat.
func (v *Value) FloatVal() float64 { return v.f }

// StringVal returns the string payload. Valid only for KindString.
func (v *Value) StringVal() string { return v.s }

// ListVal returns the element slice. Valid only for KindList.
func (v *Value) ListVal() []*Value { return v.list }

// MapVal returns the mapping payload. Valid only for KindMapping.
func (v *Value) MapVal() *Mapping { return v.m }

// SetListElem replaces the element at index i. Valid only for KindList.
func (v *Value) SetListElem(i int, e *Value) { v.list[i] = e }

// Append adds an element to a list value.
func (v *Value) Append(e *Value) { v.list = append(v.list, e) }

// Text renders a scalar value as the text used by the line-oriented
// formats (INI, shell, XML leaf content). Booleans render as True and
// False so that Infer recovers them on the way back in. Lists are
// comma-joined; mappings have no text form and render empty.
func (v *Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.Text()
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// formatFloat keeps a decimal point (or exponent) in the rendering so
// that re-inference yields a float rather than an int.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Equal reports deep equality. Mappings compare key order as well as
// contents, since insertion order is part of the model.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.m.Equal(o.m)
	}
	return false
}

// Copy returns a deep copy. Scalars share no mutable state, so only
// lists and mappings allocate.
func (v *Value) Copy() *Value {
	switch v.kind {
	case KindList:
		elems := make([]*Value, len(v.list))
		for i, e := range v.list {
			elems[i] = e.Copy()
		}
		return List(elems...)
	case KindMapping:
		return Map(v.m.Copy())
	default:
		c := *v
		return &c
	}
}

// GoString renders the value for test failure messages.
func (v *Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool, KindInt, KindFloat:
		return v.Text()
	case KindString:
		return strconv.Quote(v.s)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.GoString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		parts := make([]string, 0, v.m.Len())
		for _, k := range v.m.Keys() {
			e, _ := v.m.Get(k)
			parts = append(parts, k+": "+e.GoString())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "?"
}
