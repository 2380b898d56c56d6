// Package schema validates configuration trees against JSON Schema
// documents. The schema itself is plain JSON; the config value tree is
// lowered to generic JSON data before validation so any loaded format
// can be checked.
package schema

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dtillman/confmorph/internal/value"
)

// Problem is one schema violation, located by JSON pointer.
type Problem struct {
	Location string
	Message  string
}

func (p Problem) String() string {
	loc := p.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, p.Message)
}

// Result reports the outcome of a validation run.
type Result struct {
	Valid    bool
	Problems []Problem
}

// Error renders all problems on one line, for wrapping into an error
// return.
func (r *Result) Error() string {
	parts := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		parts[i] = p.String()
	}
	return strings.Join(parts, "; ")
}

// Validate checks a configuration tree against a JSON Schema given as
// schema text. A schema that does not compile is an error; a config
// that merely violates the schema is a non-error Result with Valid
// false.
func Validate(doc *value.Value, schemaText string) (*Result, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaText)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	if err := compiled.Validate(toAny(doc)); err != nil {
		res := &Result{Valid: false}
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			res.Problems = collectProblems(verr)
			return res, nil
		}
		return nil, err
	}
	return &Result{Valid: true}, nil
}

// collectProblems flattens the cause tree into leaf problems. The root
// error just restates that validation failed, so only messages from
// nodes without causes are kept.
func collectProblems(err *jsonschema.ValidationError) []Problem {
	if len(err.Causes) == 0 {
		return []Problem{{Location: err.InstanceLocation, Message: err.Message}}
	}
	var out []Problem
	for _, cause := range err.Causes {
		out = append(out, collectProblems(cause)...)
	}
	return out
}

// toAny lowers a value tree to the generic JSON shapes the validator
// consumes.
func toAny(v *value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.BoolVal()
	case value.KindInt:
		return v.IntVal()
	case value.KindFloat:
		return v.FloatVal()
	case value.KindString:
		return v.StringVal()
	case value.KindList:
		out := make([]any, len(v.ListVal()))
		for i, e := range v.ListVal() {
			out[i] = toAny(e)
		}
		return out
	case value.KindMapping:
		out := make(map[string]any, v.MapVal().Len())
		for _, k := range v.MapVal().Keys() {
			e, _ := v.MapVal().Get(k)
			out[k] = toAny(e)
		}
		return out
	}
	return nil
}
