// Package parser implements the Tendril pattern parser: a recursive
// descent parser with context-sensitive array-body/object-body
// productions, greedy backtracking tries, and a structured diagnostic
// report on failure (spec.md §4.2).
package parser

import (
	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/hooks"
	"github.com/tendril-lang/tendril/lexer"
	"github.com/tendril-lang/tendril/token"
)

// scopeFrame tracks one open Array/Object body, so flow directives can
// resolve `<^LABEL>` (or, unlabeled, the nearest enclosing frame) by
// walking outward through frames currently on the parser's stack
// (spec.md §4.5) — this works because scope nesting during a recursive
// descent parse is exactly a stack.
type scopeFrame struct {
	label string // "" if this Array/Object is unlabeled
	id    int    // unique id, used as the flow target reference
}

// Parser parses Tendril pattern source into an *ast.Pattern.
type Parser struct {
	source string
	l      *lexer.Lexer

	started          bool
	cur, peek, peek2 token.Token
	history          []token.Token // last few consumed tokens, for diagnostics

	err *ParseError // first fatal error; once set, parsing has aborted

	ruleStack []string

	scopeStack  []scopeFrame
	nextScopeID int
	labelSeen   map[string]bool

	sigils map[string]rune // binding name -> '$' or '%'/'@' seen so far, for collision detection

	hooks hooks.ParserHooks
}

// New creates a Parser over input. h may be nil.
func New(input string, h hooks.ParserHooks) *Parser {
	if h == nil {
		h = hooks.NoopParserHooks{}
	}
	p := &Parser{
		source:    input,
		l:         lexer.New(input),
		labelSeen: map[string]bool{},
		sigils:    map[string]rune{},
		hooks:     h,
	}
	p.advance()
	p.advance()
	p.advance()
	return p
}

// Parse compiles source into a Pattern, or returns the first fatal
// ParseError (spec.md §4.2: "Errors are fatal (no partial AST)").
func Parse(source string, h hooks.ParserHooks) (*ast.Pattern, error) {
	p := New(source, h)
	return p.ParsePattern()
}

// ParsePattern parses the whole token stream as a single root pattern.
func (p *Parser) ParsePattern() (*ast.Pattern, error) {
	defer p.rule("Pattern")()

	if p.err != nil {
		return nil, p.err
	}

	var root ast.Item
	var err error

	if p.curIs(token.AT) && (p.peekIs(token.LBRACE) || p.peekIs(token.LBRACKET)) {
		root, err = p.parseSlice()
	} else {
		root, err = p.parseItem()
	}
	if err != nil {
		return nil, err
	}

	if !p.curIs(token.EOF) {
		return nil, p.fail(p.syntaxErrorf([]string{"EOF"}, "unexpected trailing input %q", p.cur.Literal))
	}

	_, isSlice := root.(*ast.Slice)
	return &ast.Pattern{Root: root, Anchored: !isSlice, Source: p.source}, nil
}

// ---------------------------------------------------------------------
// Cursor machinery
// ---------------------------------------------------------------------

func (p *Parser) advance() {
	if p.err != nil {
		return
	}
	if p.started {
		p.history = append(p.history, p.cur)
		if len(p.history) > 6 {
			p.history = p.history[len(p.history)-6:]
		}
	}
	p.started = true
	p.cur = p.peek
	p.peek = p.peek2
	tok, lexErr := p.l.NextToken()
	if lexErr != nil {
		if le, ok := lexErr.(*lexer.Error); ok {
			p.err = &ParseError{Kind: SyntaxError, Message: le.Msg, Span: le.Span}
		} else {
			p.err = &ParseError{Kind: SyntaxError, Message: lexErr.Error()}
		}
		p.peek2 = token.Token{Type: token.EOF}
		return
	}
	p.peek2 = tok
	p.hooks.OnEat(p.cur.Literal, 0)
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

// fail records err as the fatal parser error (if not already set by a
// deeper failure) and returns it, matching spec.md §4.2's "fatal, no
// partial AST" contract.
func (p *Parser) fail(err *ParseError) *ParseError {
	p.hooks.OnFail(err.Message, 0, err.RuleStack)
	if p.err == nil {
		p.err = err
	}
	return p.err
}

func (p *Parser) expect(t token.Type, expected ...string) error {
	if p.curIs(t) {
		p.advance()
		return nil
	}
	if len(expected) == 0 {
		expected = []string{t.String()}
	}
	return p.fail(p.syntaxErrorf(expected, "expected %s, got %s %q", t, p.cur.Type, p.cur.Literal))
}

// mark/reset wrap lexer bookmarks plus the parser's own token buffer,
// giving the parser cheap backtracking for its greedy alternative tries
// (spec.md §4.2: "token index is the only mutable cursor").
type mark struct {
	lex              lexer.Bookmark
	cur, peek, peek2 token.Token
	historyLen       int
}

func (p *Parser) mark() mark {
	return mark{lex: p.l.Mark(), cur: p.cur, peek: p.peek, peek2: p.peek2, historyLen: len(p.history)}
}

func (p *Parser) reset(m mark) {
	p.l.Reset(m.lex)
	p.cur, p.peek, p.peek2 = m.cur, m.peek, m.peek2
	if m.historyLen <= len(p.history) {
		p.history = p.history[:m.historyLen]
	}
}

// try attempts fn and rolls back the cursor if it returns a non-nil
// error, never letting a failed branch poison p.err (spec.md §4.2,
// "greedy alternative tries with backtracking").
func (p *Parser) try(rule string, fn func() (ast.Item, error)) (ast.Item, error) {
	p.hooks.OnEnter(rule, 0)
	m := p.mark()
	savedErr := p.err
	item, err := fn()
	if err != nil {
		p.err = savedErr
		p.reset(m)
		p.hooks.OnBacktrack(rule, 0, false)
		p.hooks.OnExit(rule, 0, false)
		return nil, err
	}
	p.hooks.OnExit(rule, 0, true)
	return item, nil
}

// ---------------------------------------------------------------------
// Scopes & labels (spec.md §4.5)
// ---------------------------------------------------------------------

func (p *Parser) pushScope(label string) scopeFrame {
	f := scopeFrame{label: label, id: p.nextScopeID}
	p.nextScopeID++
	p.scopeStack = append(p.scopeStack, f)
	return f
}

func (p *Parser) popScope() {
	p.scopeStack = p.scopeStack[:len(p.scopeStack)-1]
}

// resolveBucketLabel finds the scope id a (possibly empty) label name
// refers to, walking outward from the innermost open scope.
func (p *Parser) resolveBucketLabel(label string, span token.Span) (int, error) {
	if label == "" {
		if len(p.scopeStack) == 0 {
			return 0, p.fail(p.semanticErrorf(span, "flow directive has no enclosing array or object"))
		}
		return p.scopeStack[len(p.scopeStack)-1].id, nil
	}
	for i := len(p.scopeStack) - 1; i >= 0; i-- {
		if p.scopeStack[i].label == label {
			return p.scopeStack[i].id, nil
		}
	}
	return 0, p.fail(p.semanticErrorf(span, "label %q is not an ancestor of this flow directive", label))
}

func (p *Parser) declareLabel(name string, span token.Span) error {
	if p.labelSeen[name] {
		return p.fail(p.semanticErrorf(span, "duplicate label %q", name))
	}
	p.labelSeen[name] = true
	return nil
}

// ---------------------------------------------------------------------
// Name-sigil discipline (spec.md §3.2 invariant)
// ---------------------------------------------------------------------

// declareName records that name was bound with sigil ($, %, or @) and
// fails if it was previously bound with a different sigil.
func (p *Parser) declareName(name string, sigil rune, span token.Span) error {
	if name == "" {
		return nil
	}
	if existing, ok := p.sigils[name]; ok && existing != sigil {
		return p.fail(p.semanticErrorf(span, "name %q is bound with both %c and %c", name, existing, sigil))
	}
	p.sigils[name] = sigil
	return nil
}

// ---------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------

// parseLabel consumes a leading `§IDENT` if present and returns the
// label name (empty if absent).
func (p *Parser) parseLabel() (string, error) {
	if !p.curIs(token.SECTION) {
		return "", nil
	}
	start := p.cur.Span
	p.advance()
	if !p.curIs(token.IDENT) {
		return "", p.fail(p.syntaxErrorf([]string{"label name"}, "expected identifier after §, got %s", p.cur.Type))
	}
	name := p.cur.Literal
	span := token.Cover(start, p.cur.Span)
	p.advance()
	if err := p.declareLabel(name, span); err != nil {
		return "", err
	}
	return name, nil
}
