package template

import (
	"math"
	"strings"
	"time"

	"github.com/dtillman/confmorph/internal/value"
)

// Func is a builtin usable both as a function call and as a filter
// (where the piped value becomes the first argument).
type Func func(args []*value.Value) (*value.Value, error)

// Engine evaluates expressions and statement templates. Builtins are
// held in an explicit per-engine table rather than any global
// registry, so concurrent documents never share mutable state.
type Engine struct {
	funcs map[string]Func
	now   func() time.Time
}

// New returns an engine with the builtin function set.
func New() *Engine {
	e := &Engine{funcs: make(map[string]Func), now: time.Now}
	e.funcs["path_join"] = pathJoin
	e.funcs["days_ago"] = e.daysAgo
	return e
}

// WithNow fixes the engine clock, for tests.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Scope is the variable environment of one expansion site: the
// enclosing mapping, the full root document, and the immediately
// enclosing mapping bound to the name "parent".
type Scope struct {
	Local  *value.Mapping
	Root   *value.Mapping
	Parent *value.Mapping
}

// Lookup resolves a name, with the enclosing mapping shadowing the
// root document.
func (s Scope) Lookup(name string) (*value.Value, bool) {
	if name == "parent" && s.Parent != nil {
		return value.Map(s.Parent), true
	}
	if s.Local != nil {
		if v, ok := s.Local.Get(name); ok {
			return v, true
		}
	}
	if s.Root != nil {
		if v, ok := s.Root.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

type renderCtx struct {
	eng   *Engine
	scope Scope
	vars  map[string]*value.Value // set/loop bindings, innermost wins
}

func (c *renderCtx) lookup(name string) (*value.Value, bool) {
	if v, ok := c.vars[name]; ok {
		return v, true
	}
	return c.scope.Lookup(name)
}

// Eval evaluates one expression (the text between {{ and }}) against a
// scope. Failures come back classified; see Recoverable.
func (e *Engine) Eval(src string, sc Scope) (*value.Value, error) {
	node, err := parseExpr(src)
	if err != nil {
		return nil, err
	}
	return node.eval(&renderCtx{eng: e, scope: sc, vars: map[string]*value.Value{}})
}

func (x *litExpr) eval(*renderCtx) (*value.Value, error) { return x.v, nil }

func (x *identExpr) eval(ctx *renderCtx) (*value.Value, error) {
	if v, ok := ctx.lookup(x.name); ok {
		return v, nil
	}
	return nil, errUndefined("%q is not defined", x.name)
}

func (x *listExpr) eval(ctx *renderCtx) (*value.Value, error) {
	elems := make([]*value.Value, len(x.elems))
	for i, e := range x.elems {
		v, err := e.eval(ctx)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return value.List(elems...), nil
}

func (x *attrExpr) eval(ctx *renderCtx) (*value.Value, error) {
	base, err := x.base.eval(ctx)
	if err != nil {
		return nil, err
	}
	if base.Kind() != value.KindMapping {
		return nil, errUndefined("%s value has no attribute %q", base.Kind(), x.name)
	}
	if v, ok := base.MapVal().Get(x.name); ok {
		return v, nil
	}
	return nil, errUndefined("mapping has no attribute %q", x.name)
}

func (x *indexExpr) eval(ctx *renderCtx) (*value.Value, error) {
	base, err := x.base.eval(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := x.idx.eval(ctx)
	if err != nil {
		return nil, err
	}
	switch base.Kind() {
	case value.KindMapping:
		if idx.Kind() != value.KindString {
			return nil, errType("mapping index must be a string, not %s", idx.Kind())
		}
		if v, ok := base.MapVal().Get(idx.StringVal()); ok {
			return v, nil
		}
		return nil, errUndefined("mapping has no key %q", idx.StringVal())
	case value.KindList:
		if idx.Kind() != value.KindInt {
			return nil, errType("list index must be an integer, not %s", idx.Kind())
		}
		i := int(idx.IntVal())
		elems := base.ListVal()
		if i < 0 {
			i += len(elems)
		}
		if i < 0 || i >= len(elems) {
			return nil, errUndefined("list index %d out of range", idx.IntVal())
		}
		return elems[i], nil
	case value.KindString:
		if idx.Kind() != value.KindInt {
			return nil, errType("string index must be an integer, not %s", idx.Kind())
		}
		s := base.StringVal()
		i := int(idx.IntVal())
		if i < 0 {
			i += len(s)
		}
		if i < 0 || i >= len(s) {
			return nil, errUndefined("string index %d out of range", idx.IntVal())
		}
		return value.String(string(s[i])), nil
	}
	return nil, errType("%s value is not indexable", base.Kind())
}

func (x *callExpr) eval(ctx *renderCtx) (*value.Value, error) {
	fn, ok := ctx.eng.funcs[x.name]
	if !ok {
		return nil, errSyntax("unknown function %q", x.name)
	}
	args, err := evalArgs(ctx, x.args)
	if err != nil {
		return nil, err
	}
	return fn(args)
}

func (x *filterExpr) eval(ctx *renderCtx) (*value.Value, error) {
	fn, ok := ctx.eng.funcs[x.name]
	if !ok {
		return nil, errSyntax("unknown filter %q", x.name)
	}
	base, err := x.base.eval(ctx)
	if err != nil {
		return nil, err
	}
	args, err := evalArgs(ctx, x.args)
	if err != nil {
		return nil, err
	}
	return fn(append([]*value.Value{base}, args...))
}

func evalArgs(ctx *renderCtx, exprs []expr) ([]*value.Value, error) {
	args := make([]*value.Value, len(exprs))
	for i, a := range exprs {
		v, err := a.eval(ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (x *unaryExpr) eval(ctx *renderCtx) (*value.Value, error) {
	v, err := x.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	switch x.op {
	case "not":
		return value.Bool(!truthy(v)), nil
	case "-":
		switch v.Kind() {
		case value.KindInt:
			return value.Int(-v.IntVal()), nil
		case value.KindFloat:
			return value.Float(-v.FloatVal()), nil
		}
		return nil, errType("cannot negate %s value", v.Kind())
	}
	return nil, errSyntax("unknown unary operator %q", x.op)
}

func (x *boolExpr) eval(ctx *renderCtx) (*value.Value, error) {
	l, err := x.l.eval(ctx)
	if err != nil {
		return nil, err
	}
	if x.op == "or" {
		if truthy(l) {
			return l, nil
		}
		return x.r.eval(ctx)
	}
	if !truthy(l) {
		return l, nil
	}
	return x.r.eval(ctx)
}

func (x *binExpr) eval(ctx *renderCtx) (*value.Value, error) {
	l, err := x.l.eval(ctx)
	if err != nil {
		return nil, err
	}
	r, err := x.r.eval(ctx)
	if err != nil {
		return nil, err
	}
	switch x.op {
	case "~":
		return value.String(stringify(l) + stringify(r)), nil
	case "+":
		if l.Kind() == value.KindString && r.Kind() == value.KindString {
			return value.String(l.StringVal() + r.StringVal()), nil
		}
		if l.Kind() == value.KindList && r.Kind() == value.KindList {
			return value.List(append(append([]*value.Value{}, l.ListVal()...), r.ListVal()...)...), nil
		}
		return arith(l, r, "+")
	case "-", "*", "/", "//", "%":
		return arith(l, r, x.op)
	case "==":
		return value.Bool(looseEqual(l, r)), nil
	case "!=":
		return value.Bool(!looseEqual(l, r)), nil
	case "<", "<=", ">", ">=":
		return compare(l, r, x.op)
	}
	return nil, errSyntax("unknown operator %q", x.op)
}

func arith(l, r *value.Value, op string) (*value.Value, error) {
	li, lf, lok := numeric(l)
	ri, rf, rok := numeric(r)
	if !lok || !rok {
		return nil, errType("unsupported operand types for %s: %s and %s", op, l.Kind(), r.Kind())
	}
	ints := l.Kind() == value.KindInt && r.Kind() == value.KindInt

	switch op {
	case "+":
		if ints {
			return value.Int(li + ri), nil
		}
		return value.Float(lf + rf), nil
	case "-":
		if ints {
			return value.Int(li - ri), nil
		}
		return value.Float(lf - rf), nil
	case "*":
		if ints {
			return value.Int(li * ri), nil
		}
		return value.Float(lf * rf), nil
	case "/":
		if rf == 0 {
			return nil, errDivision("division by zero")
		}
		return value.Float(lf / rf), nil
	case "//":
		if rf == 0 {
			return nil, errDivision("integer division by zero")
		}
		if ints {
			return value.Int(int64(math.Floor(lf / rf))), nil
		}
		return value.Float(math.Floor(lf / rf)), nil
	case "%":
		if ri == 0 {
			return nil, errDivision("modulo by zero")
		}
		if ints {
			return value.Int(li % ri), nil
		}
		return value.Float(math.Mod(lf, rf)), nil
	}
	return nil, errSyntax("unknown arithmetic operator %q", op)
}

func numeric(v *value.Value) (int64, float64, bool) {
	switch v.Kind() {
	case value.KindInt:
		return v.IntVal(), float64(v.IntVal()), true
	case value.KindFloat:
		return int64(v.FloatVal()), v.FloatVal(), true
	case value.KindBool:
		if v.BoolVal() {
			return 1, 1, true
		}
		return 0, 0, true
	}
	return 0, 0, false
}

// looseEqual compares across numeric kinds (1 == 1.0) and falls back
// to deep equality otherwise.
func looseEqual(l, r *value.Value) bool {
	if _, lf, lok := numeric(l); lok {
		if _, rf, rok := numeric(r); rok {
			return lf == rf
		}
	}
	return l.Equal(r)
}

func compare(l, r *value.Value, op string) (*value.Value, error) {
	var c int
	if _, lf, lok := numeric(l); lok {
		_, rf, rok := numeric(r)
		if !rok {
			return nil, errType("cannot compare %s with %s", l.Kind(), r.Kind())
		}
		switch {
		case lf < rf:
			c = -1
		case lf > rf:
			c = 1
		}
	} else if l.Kind() == value.KindString && r.Kind() == value.KindString {
		c = strings.Compare(l.StringVal(), r.StringVal())
	} else {
		return nil, errType("cannot compare %s with %s", l.Kind(), r.Kind())
	}

	switch op {
	case "<":
		return value.Bool(c < 0), nil
	case "<=":
		return value.Bool(c <= 0), nil
	case ">":
		return value.Bool(c > 0), nil
	case ">=":
		return value.Bool(c >= 0), nil
	}
	return nil, errSyntax("unknown comparison %q", op)
}

// truthy follows the usual rules: null and empty containers/strings
// are false, zero numbers are false, everything else true.
func truthy(v *value.Value) bool {
	switch v.Kind() {
	case value.KindNull:
		return false
	case value.KindBool:
		return v.BoolVal()
	case value.KindInt:
		return v.IntVal() != 0
	case value.KindFloat:
		return v.FloatVal() != 0
	case value.KindString:
		return v.StringVal() != ""
	case value.KindList:
		return len(v.ListVal()) > 0
	case value.KindMapping:
		return v.MapVal().Len() > 0
	}
	return false
}

// stringify renders an expression result for substitution back into
// the surrounding scalar text. Booleans and null render in their
// spelled form (True/False/None) so the later type-coercion step can
// recover them; lists render bracketed with quoted strings.
func stringify(v *value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return "None"
	case value.KindString:
		return v.StringVal()
	case value.KindList:
		parts := make([]string, len(v.ListVal()))
		for i, e := range v.ListVal() {
			if e.Kind() == value.KindString {
				parts[i] = "'" + e.StringVal() + "'"
			} else {
				parts[i] = stringify(e)
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case value.KindMapping:
		parts := make([]string, 0, v.MapVal().Len())
		for _, k := range v.MapVal().Keys() {
			e, _ := v.MapVal().Get(k)
			parts = append(parts, "'"+k+"': "+stringify(e))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.Text()
	}
}
