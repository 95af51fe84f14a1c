package parser

import (
	"strconv"

	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/token"
)

// parseArray parses an anchored array body `[ ITEM* ]`, items
// whitespace-separated with no comma (spec.md §8 scenario 2, `[1 2
// $x]`).
func (p *Parser) parseArray(label string) (*ast.Array, error) {
	defer p.rule("array")()
	start := p.cur.Span
	if err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}
	p.pushScope(label)
	defer p.popScope()

	var items []ast.Item
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		item, err := p.parseArrayItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	end := p.cur.Span
	if err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	body := ast.NewSeq(token.Cover(start, end), items)
	return ast.NewArray(token.Cover(start, end), body, label), nil
}

// parseArrayItem parses one array-body element: an ITEM (which may
// itself be a lookahead, alternation, or binding) optionally suffixed
// by a quantifier.
func (p *Parser) parseArrayItem() (ast.Item, error) {
	item, err := p.parseItem()
	if err != nil {
		return nil, err
	}
	return p.maybeQuantify(item)
}

// maybeQuantify consumes a trailing quantifier suffix (spec.md §4.3.2):
// greedy/lazy/possessive variants of `*`, `+`, `?`, and the general
// `#{min,max}` bounded form.
func (p *Parser) maybeQuantify(item ast.Item) (ast.Item, error) {
	start := item.Span()
	switch p.cur.Type {
	case token.STAR:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 0, ast.Unbounded, ast.Greedy), nil
	case token.STARQ:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 0, ast.Unbounded, ast.Lazy), nil
	case token.STARPLUS:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 0, ast.Unbounded, ast.Possessive), nil
	case token.PLUS:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 1, ast.Unbounded, ast.Greedy), nil
	case token.PLUSQ:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 1, ast.Unbounded, ast.Lazy), nil
	case token.PLUSPLUS:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 1, ast.Unbounded, ast.Possessive), nil
	case token.QUESTION:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 0, 1, ast.Greedy), nil
	case token.QQ:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 0, 1, ast.Lazy), nil
	case token.QPLUS:
		end := p.cur.Span
		p.advance()
		return ast.NewQuantified(token.Cover(start, end), item, 0, 1, ast.Possessive), nil
	case token.HASHBRACE:
		if p.cur.Literal == "#{" {
			return p.parseBraceQuantifier(item)
		}
	}
	return item, nil
}

// parseBraceQuantifier parses the `#{min[,max]}` bound, optionally
// followed by a `?`/`+` mode suffix.
func (p *Parser) parseBraceQuantifier(item ast.Item) (ast.Item, error) {
	start := item.Span()
	p.advance() // "#{"
	min, max, err := p.parseBraceBound()
	if err != nil {
		return nil, err
	}
	end := p.cur.Span
	if err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	mode := ast.Greedy
	switch p.cur.Type {
	case token.QUESTION:
		mode = ast.Lazy
		end = p.cur.Span
		p.advance()
	case token.PLUS:
		mode = ast.Possessive
		end = p.cur.Span
		p.advance()
	}
	return ast.NewQuantified(token.Cover(start, end), item, min, max, mode), nil
}

// parseBraceBound parses the `min[,max]` body of a `#{...}` bound, with
// cur positioned on the first token after the opening brace.
func (p *Parser) parseBraceBound() (min, max int, err error) {
	if !p.curIs(token.NUMBER) {
		return 0, 0, p.fail(p.syntaxErrorf([]string{"number"}, "expected a quantifier bound"))
	}
	min, convErr := strconv.Atoi(p.cur.Literal)
	if convErr != nil {
		return 0, 0, p.fail(p.syntaxErrorf(nil, "invalid quantifier bound %q", p.cur.Literal))
	}
	p.advance()
	max = min
	if p.curIs(token.COMMA) {
		p.advance()
		if p.curIs(token.NUMBER) {
			max, convErr = strconv.Atoi(p.cur.Literal)
			if convErr != nil {
				return 0, 0, p.fail(p.syntaxErrorf(nil, "invalid quantifier bound %q", p.cur.Literal))
			}
			p.advance()
		} else {
			max = ast.Unbounded
		}
	}
	return min, max, nil
}
