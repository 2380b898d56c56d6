package template

import (
	"strconv"

	"github.com/dtillman/confmorph/internal/value"
)

// expr is a parsed expression node.
type expr interface {
	eval(ctx *renderCtx) (*value.Value, error)
}

type litExpr struct{ v *value.Value }

type identExpr struct{ name string }

type listExpr struct{ elems []expr }

type attrExpr struct {
	base expr
	name string
}

type indexExpr struct {
	base expr
	idx  expr
}

type callExpr struct {
	name string
	args []expr
}

type filterExpr struct {
	base expr
	name string
	args []expr
}

type unaryExpr struct {
	op      string
	operand expr
}

type binExpr struct {
	op   string
	l, r expr
}

type boolExpr struct {
	op   string // "and" or "or"
	l, r expr
}

type parser struct {
	toks []token
	pos  int
}

// parseExpr parses one full expression from source text.
func parseExpr(src string) (expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, errSyntax("unexpected %q after expression in %q", p.peek().text, src)
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) acceptOp(text string) bool {
	if t := p.peek(); t.kind == tokOp && t.text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) acceptIdent(word string) bool {
	if t := p.peek(); t.kind == tokIdent && t.text == word {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectOp(text string) error {
	if !p.acceptOp(text) {
		return errSyntax("expected %q, found %q", text, p.peek().text)
	}
	return nil
}

func (p *parser) parseOr() (expr, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.acceptIdent("or") {
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = &boolExpr{op: "or", l: l, r: r}
	}
	return l, nil
}

func (p *parser) parseAnd() (expr, error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.acceptIdent("and") {
		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l = &boolExpr{op: "and", l: l, r: r}
	}
	return l, nil
}

func (p *parser) parseNot() (expr, error) {
	if p.acceptIdent("not") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: "not", operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (expr, error) {
	l, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			return l, nil
		}
		switch t.text {
		case "==", "!=", "<", "<=", ">", ">=":
			p.pos++
			r, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			l = &binExpr{op: t.text, l: l, r: r}
		default:
			return l, nil
		}
	}
}

func (p *parser) parseConcat() (expr, error) {
	l, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.acceptOp("~") {
		r, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		l = &binExpr{op: "~", l: l, r: r}
	}
	return l, nil
}

func (p *parser) parseAdditive() (expr, error) {
	l, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.acceptOp("+"):
			r, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			l = &binExpr{op: "+", l: l, r: r}
		case p.acceptOp("-"):
			r, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			l = &binExpr{op: "-", l: l, r: r}
		default:
			return l, nil
		}
	}
}

func (p *parser) parseMultiplicative() (expr, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			return l, nil
		}
		switch t.text {
		case "*", "/", "//", "%":
			p.pos++
			r, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			l = &binExpr{op: t.text, l: l, r: r}
		default:
			return l, nil
		}
	}
}

func (p *parser) parseUnary() (expr, error) {
	if p.acceptOp("-") {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: "-", operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.acceptOp("."):
			t := p.next()
			if t.kind != tokIdent {
				return nil, errSyntax("expected attribute name after '.', found %q", t.text)
			}
			e = &attrExpr{base: e, name: t.text}
		case p.acceptOp("["):
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			e = &indexExpr{base: e, idx: idx}
		case p.acceptOp("("):
			id, ok := e.(*identExpr)
			if !ok {
				return nil, errSyntax("only named functions can be called")
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			e = &callExpr{name: id.name, args: args}
		case p.acceptOp("|"):
			t := p.next()
			if t.kind != tokIdent {
				return nil, errSyntax("expected filter name after '|', found %q", t.text)
			}
			var args []expr
			if p.acceptOp("(") {
				args, err = p.parseArgs()
				if err != nil {
					return nil, err
				}
			}
			e = &filterExpr{base: e, name: t.text, args: args}
		default:
			return e, nil
		}
	}
}

// parseArgs parses a comma-separated argument list; the opening paren
// has already been consumed.
func (p *parser) parseArgs() ([]expr, error) {
	var args []expr
	if p.acceptOp(")") {
		return args, nil
	}
	for {
		a, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.acceptOp(",") {
			continue
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *parser) parsePrimary() (expr, error) {
	t := p.peek()
	switch t.kind {
	case tokInt:
		p.pos++
		i, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, errSyntax("bad integer literal %q", t.text)
		}
		return &litExpr{v: value.Int(i)}, nil
	case tokFloat:
		p.pos++
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, errSyntax("bad float literal %q", t.text)
		}
		return &litExpr{v: value.Float(f)}, nil
	case tokString:
		p.pos++
		return &litExpr{v: value.String(t.text)}, nil
	case tokIdent:
		p.pos++
		switch t.text {
		case "true", "True":
			return &litExpr{v: value.Bool(true)}, nil
		case "false", "False":
			return &litExpr{v: value.Bool(false)}, nil
		case "none", "None", "null":
			return &litExpr{v: value.Null()}, nil
		}
		return &identExpr{name: t.text}, nil
	case tokOp:
		switch t.text {
		case "(":
			p.pos++
			e, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return e, nil
		case "[":
			p.pos++
			var elems []expr
			if !p.acceptOp("]") {
				for {
					e, err := p.parseOr()
					if err != nil {
						return nil, err
					}
					elems = append(elems, e)
					if p.acceptOp(",") {
						continue
					}
					if err := p.expectOp("]"); err != nil {
						return nil, err
					}
					break
				}
			}
			return &listExpr{elems: elems}, nil
		}
	}
	return nil, errSyntax("unexpected %q in expression", t.text)
}
