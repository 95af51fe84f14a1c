// Package guard evaluates the small expression language guards use
// (spec.md §4.3.5) against a binding environment supplied by the engine.
// It is the runtime counterpart to the compile-time guard AST in
// package ast and the guard grammar in parser/guard.go.
package guard

import (
	"math"
	"strconv"

	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/value"
)

// Env resolves a variable name to its bound value. Name "" denotes `_`,
// the value bound by the enclosing binding or anonymous guard. Ok is
// false when the name is not bound, which makes the guard unevaluable.
type Env func(name string) (v value.Value, ok bool)

// Eval evaluates expr against env. The second return value reports
// whether evaluation succeeded: false covers both "not yet evaluable"
// (an unbound variable) and a runtime failure (division by zero, a
// failed coercion) — in both cases spec.md treats the guard as a silent
// branch failure, so callers never need to distinguish the two.
func Eval(expr ast.Expr, env Env) (value.Value, bool) {
	switch e := expr.(type) {
	case *ast.ExprVar:
		return env(e.Name)
	case *ast.ExprLiteral:
		return evalLiteral(e), true
	case *ast.ExprUnary:
		return evalUnary(e, env)
	case *ast.ExprBinary:
		return evalBinary(e, env)
	case *ast.ExprCall:
		return evalCall(e, env)
	default:
		return value.Value{}, false
	}
}

// Ready reports whether every variable expr references is currently
// bound in env, without otherwise evaluating the expression. The engine
// checks this before evaluating a guard; a guard that is not ready where
// it is attached fails the branch.
func Ready(expr ast.Expr, env Env) bool {
	switch e := expr.(type) {
	case *ast.ExprVar:
		_, ok := env(e.Name)
		return ok
	case *ast.ExprLiteral:
		return true
	case *ast.ExprUnary:
		return Ready(e.Operand, env)
	case *ast.ExprBinary:
		return Ready(e.Left, env) && Ready(e.Right, env)
	case *ast.ExprCall:
		return Ready(e.Arg, env)
	default:
		return false
	}
}

func evalLiteral(e *ast.ExprLiteral) value.Value {
	switch e.Kind {
	case ast.LitNumber:
		return value.Number(e.Number)
	case ast.LitBool:
		return value.Bool(e.Bool)
	case ast.LitString:
		return value.String(e.Str)
	case ast.LitNull:
		return value.Null()
	default:
		return value.Null()
	}
}

func evalUnary(e *ast.ExprUnary, env Env) (value.Value, bool) {
	operand, ok := Eval(e.Operand, env)
	if !ok {
		return value.Value{}, false
	}
	switch e.Op {
	case ast.OpNeg:
		if operand.Kind() != value.KindNumber {
			return value.Value{}, false
		}
		return value.Number(-operand.Number()), true
	case ast.OpNot:
		return value.Bool(!truthy(operand)), true
	default:
		return value.Value{}, false
	}
}

func evalBinary(e *ast.ExprBinary, env Env) (value.Value, bool) {
	// && and || short-circuit, so the right operand is only evaluated
	// (and only needs to be ready) when actually needed.
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		left, ok := Eval(e.Left, env)
		if !ok || left.Kind() != value.KindBool {
			if ok && left.Kind() != value.KindBool {
				return value.Value{}, false
			}
			return value.Value{}, false
		}
		if e.Op == ast.OpAnd && !left.Bool() {
			return value.Bool(false), true
		}
		if e.Op == ast.OpOr && left.Bool() {
			return value.Bool(true), true
		}
		right, ok := Eval(e.Right, env)
		if !ok || right.Kind() != value.KindBool {
			return value.Value{}, false
		}
		return value.Bool(right.Bool()), true
	}

	left, ok := Eval(e.Left, env)
	if !ok {
		return value.Value{}, false
	}
	right, ok := Eval(e.Right, env)
	if !ok {
		return value.Value{}, false
	}

	switch e.Op {
	case ast.OpEq:
		return value.Bool(value.SameValueZero(left, right)), true
	case ast.OpNeq:
		return value.Bool(!value.SameValueZero(left, right)), true
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return evalCompare(e.Op, left, right)
	case ast.OpAdd:
		return evalAdd(left, right)
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return evalArith(e.Op, left, right)
	default:
		return value.Value{}, false
	}
}

func evalCompare(op ast.BinOp, left, right value.Value) (value.Value, bool) {
	if left.Kind() != value.KindNumber || right.Kind() != value.KindNumber {
		return value.Value{}, false
	}
	a, b := left.Number(), right.Number()
	switch op {
	case ast.OpLt:
		return value.Bool(a < b), true
	case ast.OpLe:
		return value.Bool(a <= b), true
	case ast.OpGt:
		return value.Bool(a > b), true
	case ast.OpGe:
		return value.Bool(a >= b), true
	default:
		return value.Value{}, false
	}
}

// evalAdd implements `+`, which doubles as string concatenation when
// either operand is a string (spec.md §4.3.5).
func evalAdd(left, right value.Value) (value.Value, bool) {
	if left.Kind() == value.KindString || right.Kind() == value.KindString {
		ls, ok := value.Stringify(left)
		if !ok {
			return value.Value{}, false
		}
		rs, ok := value.Stringify(right)
		if !ok {
			return value.Value{}, false
		}
		return value.String(ls + rs), true
	}
	return evalArith(ast.OpAdd, left, right)
}

// evalArith implements the strict numeric operators: division and
// modulo by zero, and any non-finite result, silently fail the branch
// rather than panicking (spec.md §4.3.5, §7 GuardFailure).
func evalArith(op ast.BinOp, left, right value.Value) (value.Value, bool) {
	if left.Kind() != value.KindNumber || right.Kind() != value.KindNumber {
		return value.Value{}, false
	}
	a, b := left.Number(), right.Number()
	var r float64
	switch op {
	case ast.OpAdd:
		r = a + b
	case ast.OpSub:
		r = a - b
	case ast.OpMul:
		r = a * b
	case ast.OpDiv:
		if b == 0 {
			return value.Value{}, false
		}
		r = a / b
	case ast.OpMod:
		if b == 0 {
			return value.Value{}, false
		}
		r = math.Mod(a, b)
	default:
		return value.Value{}, false
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return value.Value{}, false
	}
	return value.Number(r), true
}

func evalCall(e *ast.ExprCall, env Env) (value.Value, bool) {
	arg, ok := Eval(e.Arg, env)
	if !ok {
		return value.Value{}, false
	}
	switch e.Func {
	case ast.FuncSize:
		return evalSize(arg)
	case ast.FuncNumber:
		return evalToNumber(arg)
	case ast.FuncString:
		return evalToString(arg)
	case ast.FuncBoolean:
		return evalToBoolean(arg)
	default:
		return value.Value{}, false
	}
}

func evalSize(v value.Value) (value.Value, bool) {
	switch v.Kind() {
	case value.KindString:
		return value.Number(float64(len([]rune(v.Str())))), true
	case value.KindArray:
		return value.Number(float64(len(v.Items()))), true
	case value.KindObject:
		return value.Number(float64(v.Object().Len())), true
	default:
		return value.Value{}, false
	}
}

func evalToNumber(v value.Value) (value.Value, bool) {
	switch v.Kind() {
	case value.KindNumber:
		return v, true
	case value.KindBool:
		if v.Bool() {
			return value.Number(1), true
		}
		return value.Number(0), true
	case value.KindString:
		n, err := strconv.ParseFloat(v.Str(), 64)
		if err != nil {
			return value.Value{}, false
		}
		return value.Number(n), true
	default:
		return value.Value{}, false
	}
}

func evalToString(v value.Value) (value.Value, bool) {
	s, ok := value.Stringify(v)
	if !ok {
		return value.Value{}, false
	}
	return value.String(s), true
}

func evalToBoolean(v value.Value) (value.Value, bool) {
	switch v.Kind() {
	case value.KindBool:
		return v, true
	case value.KindNumber:
		return value.Bool(v.Number() != 0), true
	case value.KindString:
		return value.Bool(v.Str() != ""), true
	case value.KindNull:
		return value.Bool(false), true
	default:
		return value.Value{}, false
	}
}

// truthy reports v's boolean coercion for `!`, matching evalToBoolean's
// rules rather than accepting only true KindBool values.
func truthy(v value.Value) bool {
	b, ok := evalToBoolean(v)
	if !ok {
		return false
	}
	return b.Bool()
}
