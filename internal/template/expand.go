package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dtillman/confmorph/internal/value"
)

// exprPattern matches one {{ ... }} unit. Multiple units in a scalar
// are rendered one at a time so that some can stay literal while
// their siblings resolve.
var exprPattern = regexp.MustCompile(`\{\{[^}]*\}\}`)

// Expand walks a document in place and rewrites every string scalar
// that contains template syntax. Units whose variables are not yet
// defined (or whose evaluation hits a value/type/division error) are
// left literally in place for a later pass; any other failure aborts.
func (e *Engine) Expand(root *value.Mapping) error {
	return e.expandMapping(root, root, nil)
}

func (e *Engine) expandMapping(m, root, parent *value.Mapping) error {
	sc := Scope{Local: m, Root: root, Parent: parent}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		switch v.Kind() {
		case value.KindMapping:
			if err := e.expandMapping(v.MapVal(), root, m); err != nil {
				return err
			}
		case value.KindList:
			for i, el := range v.ListVal() {
				switch el.Kind() {
				case value.KindMapping:
					if err := e.expandMapping(el.MapVal(), root, m); err != nil {
						return err
					}
				case value.KindString:
					nv, err := e.expandScalar(el.StringVal(), sc)
					if err != nil {
						return fmt.Errorf("expanding %q: %w", k, err)
					}
					v.SetListElem(i, nv)
				}
			}
		case value.KindString:
			nv, err := e.expandScalar(v.StringVal(), sc)
			if err != nil {
				return fmt.Errorf("expanding %q: %w", k, err)
			}
			m.Set(k, nv)
		}
	}
	return nil
}

// expandScalar renders the template units of one string scalar. When
// every unit resolves, the reassembled text is re-inferred as a typed
// scalar unless any unit's source text contains the literal substring
// "string" (the escape hatch that pins the result to a string). When
// any unit stays literal, the scalar stays a string so a later pass
// can try again.
func (e *Engine) expandScalar(s string, sc Scope) (*value.Value, error) {
	if !strings.Contains(s, "{{") && !strings.Contains(s, "{%") {
		return value.String(s), nil
	}

	var units []string
	whole := strings.Contains(s, "{%")
	if whole {
		units = []string{s}
	} else {
		units = exprPattern.FindAllString(s, -1)
	}

	out := s
	coerce := true
	allResolved := true
	for _, unit := range units {
		if strings.Contains(unit, "string") {
			coerce = false
		}

		var rendered string
		var err error
		if whole {
			rendered, err = e.RenderTemplate(unit, sc)
		} else {
			var v *value.Value
			v, err = e.Eval(strings.TrimSuffix(strings.TrimPrefix(unit, "{{"), "}}"), sc)
			if err == nil {
				rendered = stringify(v)
			}
		}
		if err != nil {
			if !Recoverable(err) {
				return nil, err
			}
			allResolved = false
			continue
		}
		out = strings.ReplaceAll(out, unit, rendered)
	}

	if allResolved && coerce {
		return value.Infer(out), nil
	}
	return value.String(out), nil
}

// RenderDocument renders whole raw document text against a context
// mapping before parsing, which is the loader's pre-render pass.
// Unresolved units stay literal, consistent with Expand.
func (e *Engine) RenderDocument(text string, ctx *value.Mapping) (string, error) {
	sc := Scope{Local: ctx, Root: ctx}
	if strings.Contains(text, "{%") {
		rendered, err := e.RenderTemplate(text, sc)
		if err != nil {
			if Recoverable(err) {
				return text, nil
			}
			return "", err
		}
		return rendered, nil
	}

	out := text
	for _, unit := range exprPattern.FindAllString(text, -1) {
		v, err := e.Eval(strings.TrimSuffix(strings.TrimPrefix(unit, "{{"), "}}"), sc)
		if err != nil {
			if Recoverable(err) {
				continue
			}
			return "", err
		}
		out = strings.ReplaceAll(out, unit, stringify(v))
	}
	return out, nil
}
