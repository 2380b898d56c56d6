// Package ops provides the structural operations over configuration
// mappings: flatten, structure, merge, validate, and key filtering.
// All of them are format-independent tree walks.
package ops

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dtillman/confmorph/internal/value"
)

// Flatten collapses a nested mapping to one level, keeping only
// non-mapping leaves. On key collision across branches the
// later-visited value wins. If keys is non-empty, only those top-level
// subtrees are flattened; nested levels are always fully descended.
func Flatten(m *value.Mapping, keys []string) *value.Mapping {
	subset := make(map[string]bool, len(keys))
	for _, k := range keys {
		subset[k] = true
	}

	flat := value.NewMapping()
	for _, k := range m.Keys() {
		if len(subset) > 0 && !subset[k] {
			continue
		}
		v, _ := m.Get(k)
		if v.Kind() == value.KindMapping {
			sub := Flatten(v.MapVal(), nil)
			for _, sk := range sub.Keys() {
				sv, _ := sub.Get(sk)
				flat.Set(sk, sv)
			}
		} else {
			flat.Set(k, v)
		}
	}
	return flat
}

// Structure projects a flat mapping onto the shape of a template
// mapping: template keys holding mappings recurse (kept only when the
// result is non-empty), scalar template keys copy the same key from
// flat when present. Keys absent from flat are omitted.
func Structure(flat, tmpl *value.Mapping) *value.Mapping {
	out := value.NewMapping()
	for _, k := range tmpl.Keys() {
		tv, _ := tmpl.Get(k)
		if tv.Kind() == value.KindMapping {
			sub := Structure(flat, tv.MapVal())
			if sub.Len() > 0 {
				out.Set(k, value.Map(sub))
			}
		} else if fv, ok := flat.Get(k); ok {
			out.Set(k, fv)
		}
	}
	return out
}

// Merge updates dst in place from src. Mapping values recurse into
// dst's mapping at the same key, with src winning on a type conflict.
// An explicit null in src deletes the dst key if present. Otherwise
// src overwrites dst, unless provideDefault is set, in which case an
// existing dst value is only overwritten when it is null, empty, or
// still contains unresolved template syntax.
func Merge(src, dst *value.Mapping, provideDefault bool) {
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		switch {
		case v.Kind() == value.KindMapping:
			if cur, ok := dst.Get(k); ok && cur.Kind() == value.KindMapping {
				Merge(v.MapVal(), cur.MapVal(), provideDefault)
			} else {
				dst.Set(k, v)
			}
		case v.IsNull() && dst.Has(k):
			dst.Delete(k)
		case dst.Has(k):
			cur, _ := dst.Get(k)
			if !provideDefault || overridable(cur) {
				dst.Set(k, v)
			}
		default:
			dst.Set(k, v)
		}
	}
}

// overridable reports whether a target value counts as "not yet set"
// for provide-default merges.
func overridable(v *value.Value) bool {
	switch v.Kind() {
	case value.KindNull:
		return true
	case value.KindString:
		return v.StringVal() == "" || strings.Contains(v.StringVal(), "{{")
	case value.KindList:
		return len(v.ListVal()) == 0
	case value.KindMapping:
		return v.MapVal().Len() == 0
	}
	return false
}

// Validate compares a candidate mapping against a template and returns
// the invalid entries: keys missing from the template, plus the
// recursively invalid sub-entries of keys whose values are both
// mappings. An empty result means the candidate is structurally valid.
func Validate(candidate, tmpl *value.Mapping) *value.Mapping {
	invalid := value.NewMapping()
	for _, k := range candidate.Keys() {
		v, _ := candidate.Get(k)
		tv, ok := tmpl.Get(k)
		if !ok {
			invalid.Set(k, v)
			continue
		}
		if v.Kind() == value.KindMapping && tv.Kind() == value.KindMapping {
			sub := Validate(v.MapVal(), tv.MapVal())
			for _, sk := range sub.Keys() {
				sv, _ := sub.Get(sk)
				invalid.Set(sk, sv)
			}
		}
	}
	return invalid
}

// Filter returns a mapping holding only the top-level keys matched by
// any of the regular-expression patterns. Patterns are anchored at the
// start of the key, and output order follows pattern order.
func Filter(m *value.Mapping, patterns []string) (*value.Mapping, error) {
	out := value.NewMapping()
	for _, p := range patterns {
		re, err := regexp.Compile(`\A(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid key pattern %q: %w", p, err)
		}
		for _, k := range m.Keys() {
			if out.Has(k) {
				continue
			}
			if re.MatchString(k) {
				v, _ := m.Get(k)
				out.Set(k, v)
			}
		}
	}
	return out, nil
}
