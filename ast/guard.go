package ast

import "github.com/tendril-lang/tendril/token"

// Expr is a guard-expression node (spec.md §4.3.5): a small expression
// language over bound variables. The engine evaluates a guard where it is
// attached; if a referenced variable is not bound at that point, the
// branch fails. Evaluation is not deferred until later bindings.
type Expr interface {
	Node
	exprNode()
}

// ExprVar references a bound variable by name, or `_` (the empty Name)
// for the value bound by the enclosing binding.
type ExprVar struct {
	base
	Name string // "" means `_`
}

func (*ExprVar) node()     {}
func (*ExprVar) exprNode() {}

// ExprLiteral is a constant operand inside a guard expression.
type ExprLiteral struct {
	base
	Kind   LiteralKind
	Number float64
	Bool   bool
	Str    string
}

func (*ExprLiteral) node()     {}
func (*ExprLiteral) exprNode() {}

// BinOp enumerates the guard expression's binary operators (spec.md
// §4.3.5).
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNeq
	OpAnd
	OpOr
)

// ExprBinary is a binary operator expression.
type ExprBinary struct {
	base
	Op          BinOp
	Left, Right Expr
}

func (*ExprBinary) node()     {}
func (*ExprBinary) exprNode() {}

// UnOp enumerates the guard expression's unary operators.
type UnOp int

const (
	OpNeg UnOp = iota // unary -
	OpNot             // !
)

// ExprUnary is a unary operator expression.
type ExprUnary struct {
	base
	Op      UnOp
	Operand Expr
}

func (*ExprUnary) node()     {}
func (*ExprUnary) exprNode() {}

// GuardFunc enumerates the guard expression's built-in coercion and
// measurement functions (spec.md §4.3.5).
type GuardFunc int

const (
	FuncSize GuardFunc = iota
	FuncNumber
	FuncString
	FuncBoolean
)

// ExprCall is a call to one of the guard expression's built-in
// functions.
type ExprCall struct {
	base
	Func GuardFunc
	Arg  Expr
}

func (*ExprCall) node()     {}
func (*ExprCall) exprNode() {}

func NewExprVar(span token.Span, name string) *ExprVar { return &ExprVar{base: base{span}, Name: name} }

func NewExprNumber(span token.Span, n float64) *ExprLiteral {
	return &ExprLiteral{base: base{span}, Kind: LitNumber, Number: n}
}

func NewExprString(span token.Span, s string) *ExprLiteral {
	return &ExprLiteral{base: base{span}, Kind: LitString, Str: s}
}

func NewExprBool(span token.Span, b bool) *ExprLiteral {
	return &ExprLiteral{base: base{span}, Kind: LitBool, Bool: b}
}

func NewExprNull(span token.Span) *ExprLiteral {
	return &ExprLiteral{base: base{span}, Kind: LitNull}
}

func NewExprBinary(span token.Span, op BinOp, left, right Expr) *ExprBinary {
	return &ExprBinary{base: base{span}, Op: op, Left: left, Right: right}
}

func NewExprUnary(span token.Span, op UnOp, operand Expr) *ExprUnary {
	return &ExprUnary{base: base{span}, Op: op, Operand: operand}
}

func NewExprCall(span token.Span, fn GuardFunc, arg Expr) *ExprCall {
	return &ExprCall{base: base{span}, Func: fn, Arg: arg}
}
