package parser

import (
	"strconv"

	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/token"
)

// parseObject parses an object body: an unordered set of field clauses
// plus at most one trailing remainder clause (spec.md §3.1, §4.2).
func (p *Parser) parseObject(label string) (*ast.Object, error) {
	defer p.rule("object")()
	start := p.cur.Span
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	p.pushScope(label)
	defer p.popScope()

	var terms []*ast.FieldClause
	var remainder *ast.Remainder
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if remainder != nil {
			return nil, p.fail(p.semanticErrorf(p.cur.Span, "remainder clause must be the last clause in an object"))
		}
		rem, ok, err := p.tryParseRemainder()
		if err != nil {
			return nil, err
		}
		if ok {
			remainder = rem
			continue
		}
		fc, err := p.parseFieldClause()
		if err != nil {
			return nil, err
		}
		terms = append(terms, fc)
	}
	end := p.cur.Span
	if err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewObject(token.Cover(start, end), terms, remainder, label), nil
}

// parseFieldClause parses one `KEY breadcrumb* (: | ?:) VALUE (flow |
// 'else' '!')? (#{min,max})?` object-body element (spec.md §3.1,
// §4.3.3).
func (p *Parser) parseFieldClause() (*ast.FieldClause, error) {
	defer p.rule("fieldClause")()
	start := p.cur.Span

	key, err := p.parseItem()
	if err != nil {
		return nil, err
	}

	var breadcrumbs []ast.Breadcrumb
	for {
		switch p.cur.Type {
		case token.DOT:
			p.advance()
			k, err := p.parseItem()
			if err != nil {
				return nil, err
			}
			breadcrumbs = append(breadcrumbs, ast.Breadcrumb{Kind: ast.DotKey, Key: k})
			continue
		case token.LBRACKET:
			p.advance()
			if p.curIs(token.NUMBER) {
				idx, convErr := strconv.Atoi(p.cur.Literal)
				if convErr != nil {
					return nil, p.fail(p.syntaxErrorf(nil, "invalid index %q", p.cur.Literal))
				}
				p.advance()
				if err := p.expect(token.RBRACKET); err != nil {
					return nil, err
				}
				breadcrumbs = append(breadcrumbs, ast.Breadcrumb{Kind: ast.IndexKey, Index: idx})
			} else {
				k, err := p.parseItem()
				if err != nil {
					return nil, err
				}
				if err := p.expect(token.RBRACKET); err != nil {
					return nil, err
				}
				breadcrumbs = append(breadcrumbs, ast.Breadcrumb{Kind: ast.IndexKey, Key: k, Index: -1})
			}
			continue
		case token.STARSTAR:
			p.advance()
			var optKey ast.Item
			optional := true
			if !p.curIs(token.COLON) && !p.curIs(token.QCOLON) && !p.curIs(token.DOT) &&
				!p.curIs(token.LBRACKET) && !p.curIs(token.STARSTAR) {
				k, err := p.parseItem()
				if err != nil {
					return nil, err
				}
				optKey = k
				optional = false
			}
			breadcrumbs = append(breadcrumbs, ast.Breadcrumb{Kind: ast.SkipAny, Key: optKey, OptionalKey: optional})
			continue
		}
		break
	}

	optional := false
	switch p.cur.Type {
	case token.COLON:
		p.advance()
	case token.QCOLON:
		optional = true
		p.advance()
	default:
		return nil, p.fail(p.syntaxErrorf([]string{":", "?:"}, "expected ':' after field key, got %s %q", p.cur.Type, p.cur.Literal))
	}

	value, err := p.parseItem()
	if err != nil {
		return nil, err
	}

	var flow *ast.Flow
	strong := false
	if p.curIs(token.ARROW) {
		p.advance()
		bucket, err := p.parseBucketRef()
		if err != nil {
			return nil, err
		}
		arms := []ast.FlowArm{{Value: value, Bucket: bucket}}
		for p.curIs(token.ELSE) && !p.peekIs(token.BANG) {
			p.advance()
			v, err := p.parseItem()
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.ARROW); err != nil {
				return nil, err
			}
			b, err := p.parseBucketRef()
			if err != nil {
				return nil, err
			}
			arms = append(arms, ast.FlowArm{Value: v, Bucket: b})
		}
		if p.curIs(token.ELSE) && p.peekIs(token.BANG) {
			p.advance()
			p.advance()
			strong = true
		}
		flow = &ast.Flow{Arms: arms, Strong: strong}
		value = nil
	} else if p.curIs(token.ELSE) && p.peekIs(token.BANG) {
		p.advance()
		p.advance()
		strong = true
	}

	var kvQuant *ast.KVQuant
	if p.curIs(token.HASHBRACE) && p.cur.Literal == "#{" {
		p.advance()
		min, max, err := p.parseBraceBound()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		kvQuant = &ast.KVQuant{Min: min, Max: max}
	}

	end := key.Span()
	if value != nil {
		end = value.Span()
	} else if flow != nil && len(flow.Arms) > 0 {
		end = flow.Arms[len(flow.Arms)-1].Value.Span()
	}
	return &ast.FieldClause{
		Key: key, Breadcrumbs: breadcrumbs, Value: value,
		Strong: strong, Optional: optional, KVQuant: kvQuant, Flow: flow,
		Span: token.Cover(start, end),
	}, nil
}

// parseBucketRef parses `%name`/`@name` optionally followed by
// `<^label>`, the aggregation target of a flow directive (spec.md
// §4.2, §4.5).
func (p *Parser) parseBucketRef() (*ast.BucketRef, error) {
	var sigil ast.BucketSigil
	switch p.cur.Type {
	case token.PERCENT:
		sigil = ast.SigilPercent
	case token.AT:
		sigil = ast.SigilAt
	default:
		return nil, p.fail(p.syntaxErrorf([]string{"%", "@"}, "expected a bucket sigil"))
	}
	p.advance()
	if !p.curIs(token.IDENT) {
		return nil, p.fail(p.syntaxErrorf([]string{"identifier"}, "expected bucket name"))
	}
	name := p.cur.Literal
	span := p.cur.Span
	p.advance()

	label := ""
	if p.curIs(token.LANGLECARET) {
		p.advance()
		if !p.curIs(token.IDENT) {
			return nil, p.fail(p.syntaxErrorf([]string{"identifier"}, "expected label name"))
		}
		label = p.cur.Literal
		p.advance()
		if err := p.expect(token.GT); err != nil {
			return nil, err
		}
	}
	if _, err := p.resolveBucketLabel(label, span); err != nil {
		return nil, err
	}
	return &ast.BucketRef{Sigil: sigil, Name: name, Label: label}, nil
}

// tryParseRemainder attempts one of the remainder-clause productions
// (`%`, `%#{...}`, `(! %)`, `(% as %name)`) and rolls the cursor back
// without effect if the token shape does not actually match one
// (spec.md §4.2, "greedy tries with backtracking").
func (p *Parser) tryParseRemainder() (*ast.Remainder, bool, error) {
	if !p.curIs(token.PERCENT) && !p.curIs(token.LPAREN) {
		return nil, false, nil
	}
	m := p.mark()
	savedErr := p.err
	rem, matched, err := p.attemptRemainder()
	if err != nil || !matched {
		p.err = savedErr
		p.reset(m)
		return nil, false, nil
	}
	return rem, true, nil
}

func (p *Parser) attemptRemainder() (*ast.Remainder, bool, error) {
	switch p.cur.Type {
	case token.PERCENT:
		start := p.cur.Span
		p.advance()
		if p.curIs(token.HASHBRACE) && p.cur.Literal == "#{" {
			p.advance()
			min, max, err := p.parseBraceBound()
			if err != nil {
				return nil, false, err
			}
			end := p.cur.Span
			if err := p.expect(token.RBRACE); err != nil {
				return nil, false, err
			}
			return &ast.Remainder{Assertion: true, Quant: &ast.RemainderAssertion{Min: min, Max: max}, Span: token.Cover(start, end)}, true, nil
		}
		if p.curIs(token.AS) {
			p.advance()
			if !p.curIs(token.PERCENT) {
				return nil, false, nil
			}
			p.advance()
			if !p.curIs(token.IDENT) {
				return nil, false, nil
			}
			name := p.cur.Literal
			end := p.cur.Span
			p.advance()
			var quant *ast.RemainderAssertion
			if p.curIs(token.HASHBRACE) && p.cur.Literal == "#{" {
				p.advance()
				min, max, err := p.parseBraceBound()
				if err != nil {
					return nil, false, err
				}
				end = p.cur.Span
				if err := p.expect(token.RBRACE); err != nil {
					return nil, false, err
				}
				quant = &ast.RemainderAssertion{Min: min, Max: max}
			}
			return &ast.Remainder{Bind: name, Sigil: ast.SigilPercent, Quant: quant, Span: token.Cover(start, end)}, true, nil
		}
		if !p.curIs(token.RBRACE) {
			// Any other token after a bare '%' (an IDENT in particular)
			// means this was the start of a `%name` group-reference key,
			// not a remainder clause: a remainder must be the object's
			// last clause, so nothing but '}' legally follows one.
			return nil, false, nil
		}
		return &ast.Remainder{Assertion: true, Span: token.Cover(start, start)}, true, nil

	case token.LPAREN:
		start := p.cur.Span
		p.advance()
		if p.curIs(token.BANG) {
			p.advance()
			if !p.curIs(token.PERCENT) {
				return nil, false, nil
			}
			p.advance()
			end := p.cur.Span
			if err := p.expect(token.RPAREN); err != nil {
				return nil, false, err
			}
			return &ast.Remainder{Assertion: true, Quant: &ast.RemainderAssertion{Min: 0, Max: 0}, Span: token.Cover(start, end)}, true, nil
		}
		if p.curIs(token.PERCENT) {
			p.advance()
			if !p.curIs(token.AS) {
				return nil, false, nil
			}
			p.advance()
			if !p.curIs(token.PERCENT) {
				return nil, false, nil
			}
			p.advance()
			if !p.curIs(token.IDENT) {
				return nil, false, nil
			}
			name := p.cur.Literal
			p.advance()
			var quant *ast.RemainderAssertion
			if p.curIs(token.HASHBRACE) && p.cur.Literal == "#{" {
				p.advance()
				min, max, err := p.parseBraceBound()
				if err != nil {
					return nil, false, err
				}
				if err := p.expect(token.RBRACE); err != nil {
					return nil, false, err
				}
				quant = &ast.RemainderAssertion{Min: min, Max: max}
			}
			end := p.cur.Span
			if err := p.expect(token.RPAREN); err != nil {
				return nil, false, err
			}
			return &ast.Remainder{Bind: name, Sigil: ast.SigilPercent, Quant: quant, Span: token.Cover(start, end)}, true, nil
		}
		return nil, false, nil
	}
	return nil, false, nil
}
