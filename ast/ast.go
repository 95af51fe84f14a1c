// Package ast defines the Tendril pattern abstract syntax tree (spec.md
// §3.1). It is a sum type of node variants shared by the parser (which
// produces it) and the engine (which walks it); every node carries the
// source span of its first to last consumed token.
package ast

import "github.com/tendril-lang/tendril/token"

// Node is the common interface implemented by every AST variant.
type Node interface {
	Span() token.Span
	node()
}

// Item is any pattern node that can appear where a single value is
// expected (a literal, a binding, an alternation, a lookahead, ...).
// Array and Object also satisfy Item since they can be nested.
type Item interface {
	Node
	itemNode()
}

// base carries the span every node has; embedded by every concrete type.
type base struct {
	span token.Span
}

func (b base) Span() token.Span { return b.span }

// ---------------------------------------------------------------------
// Leaves
// ---------------------------------------------------------------------

// LiteralKind tags which literal form a Literal node holds.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitBool
	LitNull
	LitString
	LitRegex
)

// Literal is a scalar constant pattern: a number, boolean, null, an
// (optionally case-insensitive) exact string, or a regex.
type Literal struct {
	base
	Kind            LiteralKind
	Number          float64
	Bool            bool
	Str             string
	CaseInsensitive bool // String only
	RegexPattern    string
	RegexFlags      string
}

func (*Literal) node()     {}
func (*Literal) itemNode() {}

func NewLiteral(span token.Span, kind LiteralKind) *Literal {
	return &Literal{base: base{span}, Kind: kind}
}

// WildcardKind tags which typed wildcard a TypedWildcard node is.
type WildcardKind int

const (
	WildAny WildcardKind = iota
	WildString
	WildNumber
	WildBoolean
)

// TypedWildcard matches any single value (WildAny) or any value of a
// specific dynamic type.
type TypedWildcard struct {
	base
	Kind WildcardKind
}

func (*TypedWildcard) node()     {}
func (*TypedWildcard) itemNode() {}

func NewTypedWildcard(span token.Span, kind WildcardKind) *TypedWildcard {
	return &TypedWildcard{base: base{span}, Kind: kind}
}

// ---------------------------------------------------------------------
// Bindings
// ---------------------------------------------------------------------

// ScalarBind captures one matched value under a `$name` variable. Name
// may be the empty string to represent the whole match anonymously
// (spec.md §3.1: "Name may be 0 internally").
type ScalarBind struct {
	base
	Name  string
	Inner Item
	Guard Expr // optional; nil if absent
}

func (*ScalarBind) node()     {}
func (*ScalarBind) itemNode() {}

// BucketSigil distinguishes `%name` (object bucket) from `@name` (array
// bucket) group-binding variables.
type BucketSigil int

const (
	SigilPercent BucketSigil = iota
	SigilAt
)

// GroupBind captures a contiguous array subsequence (Inner is an array
// body, represented as *Seq) or a subset of object entries (Inner is
// *Object) under a `%name`/`@name` variable.
type GroupBind struct {
	base
	Name  string
	Sigil BucketSigil
	Inner Node // *Seq (array context) or *Object (object context)
}

func (*GroupBind) node()     {}
func (*GroupBind) itemNode() {}

// ---------------------------------------------------------------------
// Array-body nodes
// ---------------------------------------------------------------------

// Seq is a left-to-right sequence of array-body items.
type Seq struct {
	base
	Items []Item
}

func (*Seq) node() {}

// AltKind distinguishes AnyOf (enumerate every matching branch) from
// Else (prioritized choice: stop at the first branch that matches).
type AltKind int

const (
	AnyOf AltKind = iota
	Else
)

// Alt is an alternation or prioritized-choice node.
type Alt struct {
	base
	Kind     AltKind
	Branches []Item
}

func (*Alt) node()     {}
func (*Alt) itemNode() {}

// QuantMode is the backtracking strategy a Quantified node uses.
type QuantMode int

const (
	Greedy QuantMode = iota
	Lazy
	Possessive
)

// Unbounded marks an unbounded Max on a Quantified node.
const Unbounded = -1

// Quantified is array-body repetition: inner repeated [Min, Max] times.
type Quantified struct {
	base
	Inner Item
	Min   int
	Max   int // Unbounded for no upper bound
	Mode  QuantMode
}

func (*Quantified) node()     {}
func (*Quantified) itemNode() {}

// LookaheadSign distinguishes `(? ...)` (Positive) from `(! ...)`
// (Negative).
type LookaheadSign int

const (
	Positive LookaheadSign = iota
	Negative
)

// Lookahead is a zero-width array-body assertion.
type Lookahead struct {
	base
	Inner Item
	Sign  LookaheadSign
}

func (*Lookahead) node()     {}
func (*Lookahead) itemNode() {}

// Array is an anchored sequence of array-body items, optionally labeled
// for flow-directive targeting (spec.md §4.5).
type Array struct {
	base
	Body  *Seq
	Label string // empty if unlabeled
}

func (*Array) node()     {}
func (*Array) itemNode() {}

// ---------------------------------------------------------------------
// Object-body nodes
// ---------------------------------------------------------------------

// BreadcrumbKind tags a single navigation step inside a FieldClause.
type BreadcrumbKind int

const (
	DotKey BreadcrumbKind = iota
	IndexKey
	SkipAny
)

// Breadcrumb is one `.key`, `[index]`, or `**` navigation step.
type Breadcrumb struct {
	Kind        BreadcrumbKind
	Key         Item // DotKey: a key pattern; SkipAny: optional key pattern to match along the way
	Index       int  // IndexKey
	OptionalKey bool // SkipAny: whether Key may be nil
}

// FlowArm is one `(valuePattern, bucketRef)` branch of a flow directive,
// tried in order until one matches (spec.md §3.1, §4.2 "flow clause
// syntax").
type FlowArm struct {
	Value  Item
	Bucket *BucketRef
}

// BucketRef names a flow directive's aggregation target: `%name` (object
// bucket) or `@name` (array bucket), optionally scoped by `<^label>`.
type BucketRef struct {
	Sigil BucketSigil
	Name  string
	Label string // empty if unlabeled (nearest enclosing Array/Object)
}

// Flow is the optional `VALUE -> BUCKET_REF (else VALUE -> BUCKET_REF)*
// (else !)?` suffix of a FieldClause.
type Flow struct {
	Arms   []FlowArm
	Strong bool // trailing `else !`
}

// KVQuant bounds how many candidate keys of a FieldClause must
// contribute a success (default {1, Unbounded}, or {0, Unbounded} when
// Optional is set).
type KVQuant struct {
	Min int
	Max int
}

// FieldClause is one object-pattern element asserting existence or
// implication over key/value pairs (spec.md §3.1, §4.3.3).
type FieldClause struct {
	Key         Item
	Breadcrumbs []Breadcrumb
	Value       Item
	Strong      bool // `else !`
	Optional    bool // disables "at least one" existence requirement
	KVQuant     *KVQuant
	Flow        *Flow
	Span        token.Span
}

// RemainderAssertion bounds the cardinality of the untouched-by-any-key
// slice (spec.md §4.3.3 "Remainder").
type RemainderAssertion struct {
	Min int
	Max int
}

// Remainder represents the trailing `%`/`(! %)`/`%#{...}`/`(% as %name)`
// clause of an object body.
type Remainder struct {
	Bind      string // group-bind name, empty if unbound
	Sigil     BucketSigil
	Quant     *RemainderAssertion // nil if no explicit {m,n}
	Assertion bool                // true if this clause asserts a cardinality (bare `%` asserts non-empty; `(! %)` asserts empty)
	Span      token.Span
}

// Object is an unordered set of field clauses plus at most one trailing
// remainder clause.
type Object struct {
	base
	Terms     []*FieldClause
	Remainder *Remainder // nil if absent
	Label     string     // empty if unlabeled
}

func (*Object) node()     {}
func (*Object) itemNode() {}

// ---------------------------------------------------------------------
// Guards
// ---------------------------------------------------------------------

// Guard wraps a sub-pattern in an anonymous `(PATTERN where EXPR)` guard
// (as opposed to the named guard attached directly to a ScalarBind).
type Guard struct {
	base
	Inner      Item
	Expression Expr
}

func (*Guard) node()     {}
func (*Guard) itemNode() {}

// ---------------------------------------------------------------------
// Top-level slice patterns
// ---------------------------------------------------------------------

// SliceKind distinguishes `@{...}` from `@[...]` top-level slice
// patterns, valid only at the root of a scan/find pattern (spec.md
// §4.2, §6.1).
type SliceKind int

const (
	SliceObject SliceKind = iota
	SliceArray
)

// Slice is a root-only pattern that matches any subtree (used with
// scan, never with an anchored match).
type Slice struct {
	base
	Kind SliceKind
	Body Node // *Object or *Seq
}

func (*Slice) node()     {}
func (*Slice) itemNode() {}

// Pattern is the top of a compiled AST: exactly one root Item (which may
// be a Slice only when Anchored is false).
type Pattern struct {
	Root     Item
	Anchored bool
	Source   string
}

// ---------------------------------------------------------------------
// Constructors
//
// base is unexported so every node's span is set once at construction;
// the parser (a different package) builds nodes through these rather
// than composite literals.
// ---------------------------------------------------------------------

func NewScalarBind(span token.Span, name string, inner Item, guard Expr) *ScalarBind {
	return &ScalarBind{base: base{span}, Name: name, Inner: inner, Guard: guard}
}

func NewGroupBind(span token.Span, name string, sigil BucketSigil, inner Node) *GroupBind {
	return &GroupBind{base: base{span}, Name: name, Sigil: sigil, Inner: inner}
}

func NewSeq(span token.Span, items []Item) *Seq {
	return &Seq{base: base{span}, Items: items}
}

func NewAlt(span token.Span, kind AltKind, branches []Item) *Alt {
	return &Alt{base: base{span}, Kind: kind, Branches: branches}
}

func NewQuantified(span token.Span, inner Item, min, max int, mode QuantMode) *Quantified {
	return &Quantified{base: base{span}, Inner: inner, Min: min, Max: max, Mode: mode}
}

func NewLookahead(span token.Span, inner Item, sign LookaheadSign) *Lookahead {
	return &Lookahead{base: base{span}, Inner: inner, Sign: sign}
}

func NewArray(span token.Span, body *Seq, label string) *Array {
	return &Array{base: base{span}, Body: body, Label: label}
}

func NewObject(span token.Span, terms []*FieldClause, remainder *Remainder, label string) *Object {
	return &Object{base: base{span}, Terms: terms, Remainder: remainder, Label: label}
}

func NewGuard(span token.Span, inner Item, expr Expr) *Guard {
	return &Guard{base: base{span}, Inner: inner, Expression: expr}
}

func NewSlice(span token.Span, kind SliceKind, body Node) *Slice {
	return &Slice{base: base{span}, Kind: kind, Body: body}
}
