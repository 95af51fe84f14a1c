package parser

import (
	"fmt"
	"strings"

	"github.com/tendril-lang/tendril/token"
)

// ErrorKind distinguishes the two parse-time error taxa of spec.md §7.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	SemanticError
)

func (k ErrorKind) String() string {
	if k == SemanticError {
		return "SemanticError"
	}
	return "SyntaxError"
}

// ParseError is the structured diagnostic spec.md §4.2 requires: the
// span of the failure, a window of surrounding tokens, the productions
// the parser attempted, and the stack of named rules it was inside.
type ParseError struct {
	Kind      ErrorKind
	Message   string
	Span      token.Span
	Window    []token.Token
	Expected  []string
	RuleStack []string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at %d:%d: %s", e.Kind, e.Span.Start.Line, e.Span.Start.Column, e.Message)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&sb, " (expected %s)", strings.Join(e.Expected, ", "))
	}
	if len(e.RuleStack) > 0 {
		fmt.Fprintf(&sb, " [in %s]", strings.Join(e.RuleStack, " > "))
	}
	return sb.String()
}

// rule pushes name onto the rule stack and returns a function that pops
// it, so callers can `defer p.rule("fieldClause")()`.
func (p *Parser) rule(name string) func() {
	p.ruleStack = append(p.ruleStack, name)
	return func() {
		p.ruleStack = p.ruleStack[:len(p.ruleStack)-1]
	}
}

func (p *Parser) window() []token.Token {
	start := len(p.history) - 3
	if start < 0 {
		start = 0
	}
	w := append([]token.Token{}, p.history[start:]...)
	w = append(w, p.cur, p.peek)
	return w
}

func (p *Parser) errorf(kind ErrorKind, span token.Span, expected []string, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Span:      span,
		Window:    p.window(),
		Expected:  expected,
		RuleStack: append([]string{}, p.ruleStack...),
	}
}

func (p *Parser) syntaxErrorf(expected []string, format string, args ...any) *ParseError {
	return p.errorf(SyntaxError, p.cur.Span, expected, format, args...)
}

func (p *Parser) semanticErrorf(span token.Span, format string, args ...any) *ParseError {
	return p.errorf(SemanticError, span, nil, format, args...)
}
