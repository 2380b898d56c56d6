package template

import (
	"strings"

	"github.com/dtillman/confmorph/internal/value"
)

// Statement templates: a scalar containing {% ... %} is rendered as
// one indivisible unit mixing literal text, {{ expr }} outputs, and
// if/for/set blocks.

type tmplNode interface{}

type textNode string

type outNode struct{ e expr }

type setNode struct {
	name string
	e    expr
}

type ifBranch struct {
	cond expr // nil for the else branch
	body []tmplNode
}

type ifNode struct{ branches []ifBranch }

type forNode struct {
	name string
	seq  expr
	body []tmplNode
}

type segment struct {
	isTag   bool // {% ... %}
	isOut   bool // {{ ... }}
	content string
}

// splitSegments cuts raw template text into literal, output, and tag
// segments.
func splitSegments(text string) ([]segment, error) {
	var segs []segment
	for len(text) > 0 {
		out := strings.Index(text, "{{")
		tag := strings.Index(text, "{%")
		next, isTag := out, false
		if next < 0 || (tag >= 0 && tag < next) {
			next, isTag = tag, true
		}
		if next < 0 {
			segs = append(segs, segment{content: text})
			break
		}
		if next > 0 {
			segs = append(segs, segment{content: text[:next]})
		}
		close := "}}"
		if isTag {
			close = "%}"
		}
		end := strings.Index(text[next+2:], close)
		if end < 0 {
			return nil, errSyntax("unterminated %q block", text[next:next+2])
		}
		content := text[next+2 : next+2+end]
		segs = append(segs, segment{isTag: isTag, isOut: !isTag, content: strings.TrimSpace(content)})
		text = text[next+2+end+2:]
	}
	return segs, nil
}

type tmplParser struct {
	segs []segment
	pos  int
}

// parseTemplate builds the node tree for one statement template.
func parseTemplate(text string) ([]tmplNode, error) {
	segs, err := splitSegments(text)
	if err != nil {
		return nil, err
	}
	p := &tmplParser{segs: segs}
	nodes, stop, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}
	if stop != "" {
		return nil, errSyntax("unexpected {%% %s %%}", stop)
	}
	return nodes, nil
}

// parseNodes consumes segments until EOF or one of the terminator
// keywords; the terminator (with its arguments) is returned.
func (p *tmplParser) parseNodes(terminators []string) ([]tmplNode, string, error) {
	var nodes []tmplNode
	for p.pos < len(p.segs) {
		seg := p.segs[p.pos]
		p.pos++

		switch {
		case seg.isOut:
			e, err := parseExpr(seg.content)
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, outNode{e: e})
		case seg.isTag:
			word, rest := splitWord(seg.content)
			for _, t := range terminators {
				if word == t {
					return nodes, seg.content, nil
				}
			}
			node, err := p.parseTag(word, rest)
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, node)
		default:
			nodes = append(nodes, textNode(seg.content))
		}
	}
	return nodes, "", nil
}

func (p *tmplParser) parseTag(word, rest string) (tmplNode, error) {
	switch word {
	case "if":
		return p.parseIf(rest)
	case "for":
		return p.parseFor(rest)
	case "set":
		eq := strings.Index(rest, "=")
		if eq < 0 {
			return nil, errSyntax("set needs the form {%% set name = expr %%}")
		}
		name := strings.TrimSpace(rest[:eq])
		e, err := parseExpr(rest[eq+1:])
		if err != nil {
			return nil, err
		}
		return setNode{name: name, e: e}, nil
	}
	return nil, errSyntax("unknown statement %q", word)
}

func (p *tmplParser) parseIf(condSrc string) (tmplNode, error) {
	node := ifNode{}
	for {
		var cond expr
		var err error
		if condSrc != "" {
			cond, err = parseExpr(condSrc)
			if err != nil {
				return nil, err
			}
		}
		body, stop, err := p.parseNodes([]string{"elif", "else", "endif"})
		if err != nil {
			return nil, err
		}
		node.branches = append(node.branches, ifBranch{cond: cond, body: body})

		word, rest := splitWord(stop)
		switch word {
		case "elif":
			condSrc = rest
		case "else":
			body, stop, err := p.parseNodes([]string{"endif"})
			if err != nil {
				return nil, err
			}
			if w, _ := splitWord(stop); w != "endif" {
				return nil, errSyntax("missing {%% endif %%}")
			}
			node.branches = append(node.branches, ifBranch{body: body})
			return node, nil
		case "endif":
			return node, nil
		default:
			return nil, errSyntax("missing {%% endif %%}")
		}
	}
}

func (p *tmplParser) parseFor(head string) (tmplNode, error) {
	parts := strings.SplitN(head, " in ", 2)
	if len(parts) != 2 {
		return nil, errSyntax("for needs the form {%% for name in expr %%}")
	}
	name := strings.TrimSpace(parts[0])
	seq, err := parseExpr(parts[1])
	if err != nil {
		return nil, err
	}
	body, stop, err := p.parseNodes([]string{"endfor"})
	if err != nil {
		return nil, err
	}
	if w, _ := splitWord(stop); w != "endfor" {
		return nil, errSyntax("missing {%% endfor %%}")
	}
	return forNode{name: name, seq: seq, body: body}, nil
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// RenderTemplate renders a full statement template against a scope.
// Classified failures (undefined names and friends) come back as
// errors; the caller decides whether they are recoverable.
func (e *Engine) RenderTemplate(text string, sc Scope) (string, error) {
	nodes, err := parseTemplate(text)
	if err != nil {
		return "", err
	}
	ctx := &renderCtx{eng: e, scope: sc, vars: map[string]*value.Value{}}
	var sb strings.Builder
	if err := renderNodes(ctx, nodes, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderNodes(ctx *renderCtx, nodes []tmplNode, sb *strings.Builder) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case textNode:
			sb.WriteString(string(node))
		case outNode:
			v, err := node.e.eval(ctx)
			if err != nil {
				return err
			}
			sb.WriteString(stringify(v))
		case setNode:
			v, err := node.e.eval(ctx)
			if err != nil {
				return err
			}
			ctx.vars[node.name] = v
		case ifNode:
			if err := renderIf(ctx, node, sb); err != nil {
				return err
			}
		case forNode:
			if err := renderFor(ctx, node, sb); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderIf(ctx *renderCtx, node ifNode, sb *strings.Builder) error {
	for _, br := range node.branches {
		take := br.cond == nil
		if !take {
			v, err := br.cond.eval(ctx)
			if err != nil {
				return err
			}
			take = truthy(v)
		}
		if take {
			return renderNodes(ctx, br.body, sb)
		}
	}
	return nil
}

func renderFor(ctx *renderCtx, node forNode, sb *strings.Builder) error {
	seq, err := node.seq.eval(ctx)
	if err != nil {
		return err
	}

	var items []*value.Value
	switch seq.Kind() {
	case value.KindList:
		items = seq.ListVal()
	case value.KindMapping:
		for _, k := range seq.MapVal().Keys() {
			items = append(items, value.String(k))
		}
	default:
		return errType("cannot iterate over %s value", seq.Kind())
	}

	saved, had := ctx.vars[node.name]
	for _, item := range items {
		ctx.vars[node.name] = item
		if err := renderNodes(ctx, node.body, sb); err != nil {
			return err
		}
	}
	if had {
		ctx.vars[node.name] = saved
	} else {
		delete(ctx.vars, node.name)
	}
	return nil
}
