// Package tendril is the public entry point for compiling and running
// Tendril patterns against value.Value documents (spec.md §1-§9). It
// wraps package parser (compile) and package engine (match/scan),
// presenting errors as samber/oops values so callers that already log
// with oops (as holomush does) get a code, span context, and a wrapped
// cause instead of a bare error string (SPEC_FULL.md §10.1).
package tendril

import (
	"github.com/samber/oops"

	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/engine"
	"github.com/tendril-lang/tendril/hooks"
	"github.com/tendril-lang/tendril/parser"
	"github.com/tendril-lang/tendril/value"
)

// Pattern is a compiled Tendril pattern, ready to run against any
// value.Value document via Match or Scan.
type Pattern struct {
	ast *ast.Pattern
}

// AST exposes the underlying compiled tree for external collaborators
// (cmd/tendril compile --explain, the Inspector in inspector.go) that
// need to walk it without re-parsing.
func (p *Pattern) AST() *ast.Pattern { return p.ast }

// Source returns the original pattern text the Pattern was compiled from.
func (p *Pattern) Source() string { return p.ast.Source }

// Compile parses source into a Pattern. Syntax and semantic failures
// are returned as an *oops.OopsError carrying the error's line and
// column, the expected tokens, and the parser's rule stack as structured
// context, coded "SYNTAX_ERROR"
// or "SEMANTIC_ERROR" per spec.md §7.
func Compile(source string, h hooks.ParserHooks) (*Pattern, error) {
	root, err := parser.Parse(source, h)
	if err != nil {
		return nil, wrapParseError(err)
	}
	return &Pattern{ast: root}, nil
}

func wrapParseError(err error) error {
	pe, ok := err.(*parser.ParseError)
	if !ok {
		return oops.Code("COMPILE_FAILED").Wrap(err)
	}
	code := "SYNTAX_ERROR"
	if pe.Kind == parser.SemanticError {
		code = "SEMANTIC_ERROR"
	}
	b := oops.Code(code).
		With("line", pe.Span.Start.Line).
		With("column", pe.Span.Start.Column)
	if len(pe.Expected) > 0 {
		b = b.With("expected", pe.Expected)
	}
	if len(pe.RuleStack) > 0 {
		b = b.With("rule_stack", pe.RuleStack)
	}
	return b.Wrap(pe)
}

// Options re-exports engine.Options so callers never need to import
// package engine directly.
type Options = engine.Options

// Solution re-exports engine.Solution.
type Solution = engine.Solution

// DefaultStepBudget re-exports engine.DefaultStepBudget.
const DefaultStepBudget = engine.DefaultStepBudget

// GuardFailure reports that a LimitExceeded cut a search short. It is
// returned alongside any already-emitted solutions, never in place of
// them (spec.md §7: partial results from a budget cutoff remain valid).
type GuardFailure struct {
	*engine.LimitExceeded
}

func (g *GuardFailure) Error() string { return g.LimitExceeded.Error() }

func wrapLimit(limit *engine.LimitExceeded) error {
	if limit == nil {
		return nil
	}
	return oops.Code("LIMIT_EXCEEDED").
		With("steps", limit.Steps).
		Wrap(&GuardFailure{limit})
}

// Match runs an anchored match of p against root, calling emit for
// every solution until emit returns false or the search is exhausted.
// A non-nil error means the step budget was hit (solutions already
// delivered to emit remain valid) or the pattern's root is a slice
// (spec.md §9 Open Question: slice patterns are scan-only).
func Match(p *Pattern, root value.Value, opts Options, emit func(*Solution) bool) error {
	limit, err := engine.Match(p.ast, root, opts, emit)
	if err != nil {
		return oops.Code("INVALID_PATTERN").Wrap(err)
	}
	return wrapLimit(limit)
}

// Scan tries p against every node of root (root included), emitting a
// solution per match at every candidate node, in pre-order.
func Scan(p *Pattern, root value.Value, opts Options, emit func(*Solution) bool) error {
	limit, err := engine.Scan(p.ast, root, opts, emit)
	if err != nil {
		return oops.Code("INVALID_PATTERN").Wrap(err)
	}
	return wrapLimit(limit)
}

// FirstMatch returns the first solution Match would produce, or nil.
func FirstMatch(p *Pattern, root value.Value, opts Options) (*Solution, error) {
	sol, limit, err := engine.FirstMatch(p.ast, root, opts)
	if err != nil {
		return nil, oops.Code("INVALID_PATTERN").Wrap(err)
	}
	return sol, wrapLimit(limit)
}

// FirstScan returns the first solution Scan would produce, or nil.
func FirstScan(p *Pattern, root value.Value, opts Options) (*Solution, error) {
	sol, limit, err := engine.FirstScan(p.ast, root, opts)
	if err != nil {
		return nil, oops.Code("INVALID_PATTERN").Wrap(err)
	}
	return sol, wrapLimit(limit)
}

// HasMatch reports whether p matches root at all.
func HasMatch(p *Pattern, root value.Value, opts Options) (bool, error) {
	sol, err := FirstMatch(p, root, opts)
	return sol != nil, err
}

// HasScan reports whether p matches anywhere in root.
func HasScan(p *Pattern, root value.Value, opts Options) (bool, error) {
	sol, err := FirstScan(p, root, opts)
	return sol != nil, err
}
