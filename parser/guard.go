package parser

import (
	"strconv"

	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/token"
)

// precedence levels for the guard expression Pratt parser, tightest
// last (spec.md §4.3.5).
const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
)

var guardPrecedence = map[token.Type]int{
	token.OROR:    precOr,
	token.ANDAND:  precAnd,
	token.EQEQ:    precEquality,
	token.NOTEQ:   precEquality,
	token.LT:      precRelational,
	token.LE:      precRelational,
	token.GT:      precRelational,
	token.GE:      precRelational,
	token.PLUS:    precAdditive,
	token.MINUS:   precAdditive,
	token.STAR:    precMultiplicative,
	token.SLASH:   precMultiplicative,
	token.PERCENT: precMultiplicative,
}

var guardBinOp = map[token.Type]ast.BinOp{
	token.PLUS:    ast.OpAdd,
	token.MINUS:   ast.OpSub,
	token.STAR:    ast.OpMul,
	token.SLASH:   ast.OpDiv,
	token.PERCENT: ast.OpMod,
	token.LT:      ast.OpLt,
	token.LE:      ast.OpLe,
	token.GT:      ast.OpGt,
	token.GE:      ast.OpGe,
	token.EQEQ:    ast.OpEq,
	token.NOTEQ:   ast.OpNeq,
	token.ANDAND:  ast.OpAnd,
	token.OROR:    ast.OpOr,
}

var guardFuncs = map[string]ast.GuardFunc{
	"size":    ast.FuncSize,
	"number":  ast.FuncNumber,
	"string":  ast.FuncString,
	"boolean": ast.FuncBoolean,
}

// parseGuardExpr parses a guard expression (the `where EXPR` suffix and
// anonymous `(PATTERN where EXPR)` guards), operating over the same
// token stream as the pattern grammar but treating '/' as division
// rather than the start of a regex literal (spec.md §4.1 RescanSlash).
func (p *Parser) parseGuardExpr() (ast.Expr, error) {
	p.l.SetRegexAllowed(false)
	defer p.l.SetRegexAllowed(true)
	return p.parseGuardBinary(precLowest)
}

func (p *Parser) parseGuardBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseGuardUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := guardPrecedence[p.cur.Type]
		if !ok || prec <= minPrec {
			return left, nil
		}
		opTok := p.cur
		start := left.Span()
		p.advance()
		right, err := p.parseGuardBinary(prec)
		if err != nil {
			return nil, err
		}
		left = ast.NewExprBinary(token.Cover(start, right.Span()), guardBinOp[opTok.Type], left, right)
	}
}

func (p *Parser) parseGuardUnary() (ast.Expr, error) {
	switch p.cur.Type {
	case token.BANG:
		start := p.cur.Span
		p.advance()
		operand, err := p.parseGuardUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewExprUnary(token.Cover(start, operand.Span()), ast.OpNot, operand), nil
	case token.MINUS:
		start := p.cur.Span
		p.advance()
		operand, err := p.parseGuardUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewExprUnary(token.Cover(start, operand.Span()), ast.OpNeg, operand), nil
	}
	return p.parseGuardPrimary()
}

func (p *Parser) parseGuardPrimary() (ast.Expr, error) {
	switch p.cur.Type {
	case token.NUMBER:
		lit := p.cur.Literal
		span := p.cur.Span
		n, convErr := strconv.ParseFloat(lit, 64)
		if convErr != nil {
			return nil, p.fail(p.syntaxErrorf(nil, "invalid number literal %q", lit))
		}
		p.advance()
		return ast.NewExprNumber(span, n), nil
	case token.STRING:
		span := p.cur.Span
		s := p.cur.Literal
		p.advance()
		return ast.NewExprString(span, s), nil
	case token.TRUE, token.FALSE:
		span := p.cur.Span
		b := p.cur.Type == token.TRUE
		p.advance()
		return ast.NewExprBool(span, b), nil
	case token.NULL:
		span := p.cur.Span
		p.advance()
		return ast.NewExprNull(span), nil
	case token.ANY_WILD:
		span := p.cur.Span
		p.advance()
		return ast.NewExprVar(span, ""), nil
	case token.DOLLAR:
		p.advance()
		span := p.cur.Span
		if !p.curIs(token.IDENT) {
			return nil, p.fail(p.syntaxErrorf([]string{"identifier"}, "expected variable name after $ in guard expression"))
		}
		name := p.cur.Literal
		p.advance()
		return ast.NewExprVar(span, name), nil
	case token.IDENT:
		if fn, ok := guardFuncs[p.cur.Literal]; ok && p.peekIs(token.LPAREN) {
			span := p.cur.Span
			p.advance() // name
			p.advance() // (
			arg, err := p.parseGuardExpr()
			if err != nil {
				return nil, err
			}
			end := p.cur.Span
			if err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return ast.NewExprCall(token.Cover(span, end), fn, arg), nil
		}
		// bareword variable reference (a name bound earlier, referenced without $)
		span := p.cur.Span
		name := p.cur.Literal
		p.advance()
		return ast.NewExprVar(span, name), nil
	case token.LPAREN:
		p.advance()
		expr, err := p.parseGuardExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.fail(p.syntaxErrorf(nil, "expected guard expression operand, got %s %q", p.cur.Type, p.cur.Literal))
}
