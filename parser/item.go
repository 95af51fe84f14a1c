package parser

import (
	"strconv"

	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/token"
)

// parseItem parses one ITEM: alternation/prioritized-choice is the
// loosest-binding production reachable from this entry point (spec.md
// §4.2 precedence table).
func (p *Parser) parseItem() (ast.Item, error) {
	defer p.rule("item")()
	return p.parseAlt()
}

// parseAlt parses a chain of `|` (AnyOf) or `else` (prioritized choice)
// branches. Mixing the two separators without parentheses is rejected
// (spec.md §4.2).
func (p *Parser) parseAlt() (ast.Item, error) {
	first, err := p.parseBind()
	if err != nil {
		return nil, err
	}
	if !p.curIs(token.PIPE) && !(p.curIs(token.ELSE) && !p.peekIs(token.BANG)) {
		return first, nil
	}
	kind := ast.AnyOf
	sepType := token.PIPE
	if p.curIs(token.ELSE) {
		kind = ast.Else
		sepType = token.ELSE
	}
	start := first.Span()
	branches := []ast.Item{first}
	for p.curIs(sepType) {
		if sepType == token.ELSE && p.peekIs(token.BANG) {
			// `else !` here belongs to an enclosing strong-field clause,
			// not a further alternation branch.
			break
		}
		p.advance()
		next, err := p.parseBind()
		if err != nil {
			return nil, err
		}
		branches = append(branches, next)
	}
	if p.curIs(token.PIPE) || (p.curIs(token.ELSE) && !p.peekIs(token.BANG)) {
		return nil, p.fail(p.syntaxErrorf(nil, "cannot mix '|' and 'else' in one alternation without parentheses"))
	}
	end := branches[len(branches)-1].Span()
	return ast.NewAlt(token.Cover(start, end), kind, branches), nil
}

// parseBind parses a PRIMARY optionally followed by `as $name`/`as
// %name`/`as @name` and an optional `where EXPR` guard (spec.md §4.2,
// `as` is the tightest-binding operator).
func (p *Parser) parseBind() (ast.Item, error) {
	defer p.rule("bind")()
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.curIs(token.AS) {
		item, ok := node.(ast.Item)
		if !ok {
			return nil, p.fail(p.syntaxErrorf([]string{"as"}, "a grouped sequence must be bound with 'as @name' or 'as %%name'"))
		}
		return item, nil
	}
	start := node.Span()
	p.advance() // as
	switch p.cur.Type {
	case token.DOLLAR:
		p.advance()
		if !p.curIs(token.IDENT) {
			return nil, p.fail(p.syntaxErrorf([]string{"identifier"}, "expected variable name after $"))
		}
		name := p.cur.Literal
		nameSpan := p.cur.Span
		p.advance()
		inner, ok := node.(ast.Item)
		if !ok {
			return nil, p.fail(p.syntaxErrorf(nil, "a scalar binding must wrap a single pattern"))
		}
		if err := p.declareName(name, '$', nameSpan); err != nil {
			return nil, err
		}
		var guard ast.Expr
		end := nameSpan
		if p.curIs(token.WHERE) {
			p.advance()
			guard, err = p.parseGuardExpr()
			if err != nil {
				return nil, err
			}
			end = guard.Span()
		}
		return ast.NewScalarBind(token.Cover(start, end), name, inner, guard), nil
	case token.PERCENT, token.AT:
		sigil := ast.SigilPercent
		if p.cur.Type == token.AT {
			sigil = ast.SigilAt
		}
		p.advance()
		if !p.curIs(token.IDENT) {
			return nil, p.fail(p.syntaxErrorf([]string{"identifier"}, "expected group name"))
		}
		name := p.cur.Literal
		nameSpan := p.cur.Span
		p.advance()
		ch := '%'
		if sigil == ast.SigilAt {
			ch = '@'
		}
		if err := p.declareName(name, ch, nameSpan); err != nil {
			return nil, err
		}
		inner := groupInner(node)
		return ast.NewGroupBind(token.Cover(start, nameSpan), name, sigil, inner), nil
	}
	return nil, p.fail(p.syntaxErrorf([]string{"$", "%", "@"}, "expected a sigil after 'as'"))
}

// groupInner normalizes a bound node into the Seq/Object shape
// GroupBind.Inner expects: a grouped multi-item parenthesis already
// produces *ast.Seq; a single Item is wrapped as a one-element Seq
// unless it is already an *ast.Object (object-context group binding).
func groupInner(node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.Seq:
		return n
	case *ast.Object:
		return n
	case ast.Item:
		return ast.NewSeq(n.Span(), []ast.Item{n})
	}
	return node
}

// parsePrimary parses the innermost pattern forms: literals, typed
// wildcards, bare group references, parenthesized forms (grouping,
// guard, lookahead), array/object literals, and root-only slices.
// Returns ast.Node rather than ast.Item because a parenthesized
// multi-item group is only legal immediately before `as @name`/`as
// %name` (see parseBind).
func (p *Parser) parsePrimary() (ast.Node, error) {
	defer p.rule("primary")()
	switch p.cur.Type {
	case token.NUMBER:
		span := p.cur.Span
		n, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			return nil, p.fail(p.syntaxErrorf(nil, "invalid number literal %q", p.cur.Literal))
		}
		p.advance()
		lit := ast.NewLiteral(span, ast.LitNumber)
		lit.Number = n
		return lit, nil
	case token.MINUS:
		// The lexer never folds a sign into NUMBER (token.go: "number
		// literal sign is parsed as unary minus"), so a negative number
		// literal is MINUS immediately followed by NUMBER here.
		start := p.cur.Span
		p.advance()
		if !p.curIs(token.NUMBER) {
			return nil, p.fail(p.syntaxErrorf([]string{"number"}, "expected a number after unary '-'"))
		}
		n, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			return nil, p.fail(p.syntaxErrorf(nil, "invalid number literal %q", p.cur.Literal))
		}
		end := p.cur.Span
		p.advance()
		lit := ast.NewLiteral(token.Cover(start, end), ast.LitNumber)
		lit.Number = -n
		return lit, nil
	case token.TRUE, token.FALSE:
		span := p.cur.Span
		b := p.cur.Type == token.TRUE
		p.advance()
		lit := ast.NewLiteral(span, ast.LitBool)
		lit.Bool = b
		return lit, nil
	case token.NULL:
		span := p.cur.Span
		p.advance()
		return ast.NewLiteral(span, ast.LitNull), nil
	case token.STRING:
		tok := p.cur
		p.advance()
		lit := ast.NewLiteral(tok.Span, ast.LitString)
		lit.Str = tok.Literal
		lit.CaseInsensitive = tok.CaseInsensitive
		return lit, nil
	case token.IDENT:
		// Bareword identifiers are string literals (spec.md §6.1).
		tok := p.cur
		p.advance()
		lit := ast.NewLiteral(tok.Span, ast.LitString)
		lit.Str = tok.Literal
		lit.CaseInsensitive = tok.CaseInsensitive
		return lit, nil
	case token.REGEX:
		tok := p.cur
		p.advance()
		pattern, flags := splitRegexLiteral(tok.Literal)
		lit := ast.NewLiteral(tok.Span, ast.LitRegex)
		lit.RegexPattern = pattern
		lit.RegexFlags = flags
		return lit, nil
	case token.ANY_WILD:
		span := p.cur.Span
		p.advance()
		return ast.NewTypedWildcard(span, ast.WildAny), nil
	case token.STRING_WILD:
		span := p.cur.Span
		p.advance()
		return ast.NewTypedWildcard(span, ast.WildString), nil
	case token.NUMBER_WILD:
		span := p.cur.Span
		p.advance()
		return ast.NewTypedWildcard(span, ast.WildNumber), nil
	case token.BOOL_WILD:
		span := p.cur.Span
		p.advance()
		return ast.NewTypedWildcard(span, ast.WildBoolean), nil
	case token.DOTDOT:
		// `..` desugars to lazy `_*` (spec.md §4.3.2).
		span := p.cur.Span
		p.advance()
		inner := ast.NewTypedWildcard(span, ast.WildAny)
		return ast.NewQuantified(span, inner, 0, ast.Unbounded, ast.Lazy), nil
	case token.DOLLAR:
		return p.parseBareScalarBind()
	case token.AT:
		if p.peekIs(token.LBRACE) || p.peekIs(token.LBRACKET) {
			return p.parseSlice()
		}
		return p.parseBareGroupRef(ast.SigilAt)
	case token.PERCENT:
		return p.parseBareGroupRef(ast.SigilPercent)
	case token.LPAREN:
		return p.parseParenForm()
	case token.LBRACKET:
		return p.parseArray("")
	case token.LBRACE:
		return p.parseObject("")
	case token.SECTION:
		label, err := p.parseLabel()
		if err != nil {
			return nil, err
		}
		switch p.cur.Type {
		case token.LBRACKET:
			return p.parseArray(label)
		case token.LBRACE:
			return p.parseObject(label)
		}
		return nil, p.fail(p.syntaxErrorf([]string{"[", "{"}, "expected [ or { after label"))
	}
	return nil, p.fail(p.syntaxErrorf(nil, "unexpected token %s %q in pattern", p.cur.Type, p.cur.Literal))
}

// parseBareScalarBind parses a standalone `$name` reference with no
// explicit inner pattern or guard, the dominant scalar-binding form in
// spec.md's concrete scenarios (§8, e.g. `planets.$name`, `[1 2 $x]`,
// `$k: 1 -> ...`): shorthand for `(_ as $name)`. The explicit postfix
// `INNER as $name (where EXPR)?` form (parseBind) is used when a
// non-wildcard inner pattern or a guard is needed (§8 scenario 5).
func (p *Parser) parseBareScalarBind() (ast.Node, error) {
	start := p.cur.Span
	p.advance()
	if !p.curIs(token.IDENT) {
		return nil, p.fail(p.syntaxErrorf([]string{"identifier"}, "expected variable name after $"))
	}
	name := p.cur.Literal
	nameSpan := p.cur.Span
	p.advance()
	if err := p.declareName(name, '$', nameSpan); err != nil {
		return nil, err
	}
	inner := ast.NewTypedWildcard(start, ast.WildAny)
	return ast.NewScalarBind(token.Cover(start, nameSpan), name, inner, nil), nil
}

// parseBareGroupRef parses a standalone `@name`/`%name` reference with
// no explicit inner pattern: an implicit greedy `_*` span for the array
// sigil (unlike `..`, which is lazy), used for backreference-style
// group bindings (spec.md §8 scenario 6, `[@x @x]`).
func (p *Parser) parseBareGroupRef(sigil ast.BucketSigil) (ast.Node, error) {
	start := p.cur.Span
	p.advance()
	if !p.curIs(token.IDENT) {
		return nil, p.fail(p.syntaxErrorf([]string{"identifier"}, "expected group name"))
	}
	name := p.cur.Literal
	nameSpan := p.cur.Span
	p.advance()
	ch := '%'
	if sigil == ast.SigilAt {
		ch = '@'
	}
	if err := p.declareName(name, ch, nameSpan); err != nil {
		return nil, err
	}
	var inner ast.Node
	if sigil == ast.SigilAt {
		wild := ast.NewTypedWildcard(start, ast.WildAny)
		inner = ast.NewSeq(start, []ast.Item{ast.NewQuantified(start, wild, 0, ast.Unbounded, ast.Greedy)})
	} else {
		inner = ast.NewObject(start, nil, nil, "")
	}
	return ast.NewGroupBind(token.Cover(start, nameSpan), name, sigil, inner), nil
}

// parseParenForm parses the three paren-introduced productions:
// lookaheads `(? ...)`/`(! ...)`, an anonymous guard `(PATTERN where
// EXPR)`, and plain grouping/multi-item grouping `(ITEM ITEM ...)`.
func (p *Parser) parseParenForm() (ast.Node, error) {
	start := p.cur.Span
	p.advance() // (

	if p.curIs(token.QUESTION) || p.curIs(token.BANG) {
		sign := ast.Positive
		if p.curIs(token.BANG) {
			sign = ast.Negative
		}
		p.advance()
		items, err := p.parseItemsUntil(token.RPAREN)
		if err != nil {
			return nil, err
		}
		end := p.cur.Span
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		inner := oneItemOrSeqItem(items, start)
		return ast.NewLookahead(token.Cover(start, end), inner, sign), nil
	}

	first, err := p.parseItem()
	if err != nil {
		return nil, err
	}
	items := []ast.Item{first}
	for !p.curIs(token.RPAREN) && !p.curIs(token.WHERE) && !p.curIs(token.EOF) {
		next, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}

	if p.curIs(token.WHERE) {
		if len(items) != 1 {
			return nil, p.fail(p.syntaxErrorf(nil, "a guard applies to a single pattern"))
		}
		p.advance()
		expr, err := p.parseGuardExpr()
		if err != nil {
			return nil, err
		}
		end := p.cur.Span
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return ast.NewGuard(token.Cover(start, end), items[0], expr), nil
	}

	end := p.cur.Span
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return ast.NewSeq(token.Cover(start, end), items), nil
}

func (p *Parser) parseItemsUntil(end token.Type) ([]ast.Item, error) {
	var items []ast.Item
	for !p.curIs(end) && !p.curIs(token.EOF) {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// oneItemOrSeqItem collapses a lookahead's inner item list: a single
// item passes through; several items are tried as alternatives (a
// lookahead body has no sequencing operator of its own in this
// grammar).
func oneItemOrSeqItem(items []ast.Item, start token.Span) ast.Item {
	if len(items) == 1 {
		return items[0]
	}
	end := start
	if len(items) > 0 {
		end = items[len(items)-1].Span()
	}
	span := token.Cover(start, end)
	return ast.NewAlt(span, ast.AnyOf, items)
}

// parseSlice parses a root-only `@{...}` / `@[...]` slice pattern
// (spec.md §4.2, §6.1). Anchored-match rejection is enforced by the
// engine at call time, not here (spec.md §9 open question).
func (p *Parser) parseSlice() (ast.Item, error) {
	start := p.cur.Span
	p.advance() // @
	if p.curIs(token.LBRACE) {
		obj, err := p.parseObject("")
		if err != nil {
			return nil, err
		}
		return ast.NewSlice(token.Cover(start, obj.Span()), ast.SliceObject, obj), nil
	}
	arr, err := p.parseArray("")
	if err != nil {
		return nil, err
	}
	return ast.NewSlice(token.Cover(start, arr.Span()), ast.SliceArray, arr.Body), nil
}

// splitRegexLiteral splits a `/body/flags` lexeme into its parts.
func splitRegexLiteral(lit string) (body, flags string) {
	if len(lit) < 2 || lit[0] != '/' {
		return lit, ""
	}
	for i := len(lit) - 1; i > 0; i-- {
		if lit[i] == '/' {
			return lit[1:i], lit[i+1:]
		}
	}
	return lit[1:], ""
}
