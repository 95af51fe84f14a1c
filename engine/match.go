package engine

import (
	"regexp"
	"strings"

	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/guard"
	"github.com/tendril-lang/tendril/value"
)

// matchItem matches a single Item against a single Value, invoking emit
// for every successful continuation (spec.md §4.3). It is the engine's
// single-value dispatcher; Seq-position constructs (Quantified,
// GroupBind-in-array-context, Lookahead) are instead handled by
// matchSeqItem, which calls back into matchItem for the ordinary items
// between them.
func (m *matcher) matchItem(item ast.Item, v value.Value, path value.Path, st *state, emit func(*state) bool) bool {
	if !m.ctx.step() {
		return false
	}
	typeName := nodeTypeName(item)
	m.ctx.hooks.OnEnter(typeName, item, path.String())
	any := false
	cont := m.dispatchItem(item, v, path, st, func(st2 *state) bool {
		any = true
		return emit(st2)
	})
	m.ctx.hooks.OnExit(typeName, item, path.String(), any)
	return cont
}

func (m *matcher) dispatchItem(item ast.Item, v value.Value, path value.Path, st *state, emit func(*state) bool) bool {
	switch n := item.(type) {
	case *ast.Literal:
		return m.matchLiteral(n, v, st, emit)
	case *ast.TypedWildcard:
		return m.matchTypedWildcard(n, v, st, emit)
	case *ast.ScalarBind:
		return m.matchScalarBind(n, v, path, st, emit)
	case *ast.GroupBind:
		return m.matchGroupBindValue(n, v, path, st, emit)
	case *ast.Alt:
		return m.matchAlt(n, v, path, st, emit)
	case *ast.Guard:
		return m.matchGuardNode(n, v, path, st, emit)
	case *ast.Array:
		return m.matchArrayLiteral(n, v, path, st, emit)
	case *ast.Object:
		return m.matchObject(n, v, path, st, func(st2 *state, _ map[string]struct{}) bool {
			return emit(st2)
		})
	case *ast.Slice:
		return m.matchSliceItem(n, v, path, st, emit)
	default:
		// Quantified/Lookahead reaching here means they were used
		// outside an array body, which the grammar never produces;
		// treat as an unconditional non-match.
		return true
	}
}

func (m *matcher) matchLiteral(n *ast.Literal, v value.Value, st *state, emit func(*state) bool) bool {
	switch n.Kind {
	case ast.LitNumber:
		if v.Kind() != value.KindNumber || !value.SameValueZero(v, value.Number(n.Number)) {
			return true
		}
	case ast.LitBool:
		if v.Kind() != value.KindBool || v.Bool() != n.Bool {
			return true
		}
	case ast.LitNull:
		if v.Kind() != value.KindNull {
			return true
		}
	case ast.LitString:
		if v.Kind() != value.KindString {
			return true
		}
		if n.CaseInsensitive {
			if !strings.EqualFold(v.Str(), n.Str) {
				return true
			}
		} else if v.Str() != n.Str {
			return true
		}
	case ast.LitRegex:
		if v.Kind() != value.KindString {
			return true
		}
		re, err := compileRegex(n.RegexPattern, n.RegexFlags)
		if err != nil || !re.MatchString(v.Str()) {
			return true
		}
	default:
		return true
	}
	return emit(st)
}

func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	var prefix string
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			prefix += string(f)
		}
	}
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}
	return regexp.Compile(pattern)
}

func (m *matcher) matchTypedWildcard(n *ast.TypedWildcard, v value.Value, st *state, emit func(*state) bool) bool {
	switch n.Kind {
	case ast.WildAny:
	case ast.WildString:
		if v.Kind() != value.KindString {
			return true
		}
	case ast.WildNumber:
		if v.Kind() != value.KindNumber {
			return true
		}
	case ast.WildBoolean:
		if v.Kind() != value.KindBool {
			return true
		}
	default:
		return true
	}
	return emit(st)
}

// matchScalarBind implements spec.md §4.3.4: match Inner, then unify the
// captured value against any existing binding of Name, then (if a guard
// is attached) require it to evaluate to true. A guard that references a
// variable not yet bound at this point fails the branch.
func (m *matcher) matchScalarBind(n *ast.ScalarBind, v value.Value, path value.Path, st *state, emit func(*state) bool) bool {
	return m.matchItem(n.Inner, v, path, st, func(st2 *state) bool {
		st3, ok := bindScalar(st2, n.Name, v, path)
		if !ok {
			return true
		}
		if n.Guard != nil {
			env := guardEnv(st3, v, true)
			if !guard.Ready(n.Guard, env) {
				return true
			}
			res, ok := guard.Eval(n.Guard, env)
			if !ok || res.Kind() != value.KindBool || !res.Bool() {
				return true
			}
		}
		if n.Name != "" {
			m.ctx.hooks.OnBind("scalar", n.Name, v)
		}
		return emit(st3)
	})
}

// matchGroupBindValue handles a `%name`/`@name` group bind appearing as
// a standalone value pattern (not inside an enclosing Seq), e.g. a field
// clause's value `field: (1 2) as @x`. The captured group is the whole
// matched value, so unlike the seq-position form it requires full
// consumption.
func (m *matcher) matchGroupBindValue(n *ast.GroupBind, v value.Value, path value.Path, st *state, emit func(*state) bool) bool {
	switch inner := n.Inner.(type) {
	case *ast.Seq:
		if v.Kind() != value.KindArray {
			return true
		}
		arr := v.Items()
		return m.matchSeq(inner.Items, 0, arr, 0, path, st, func(end int, st2 *state) bool {
			if end != len(arr) {
				return true
			}
			captured := value.Array(append([]value.Value{}, arr...))
			st3, ok := bindGroup(st2, n.Name, captured, path)
			if !ok {
				return true
			}
			m.ctx.hooks.OnBind("group", n.Name, captured)
			return emit(st3)
		})
	case *ast.Object:
		if v.Kind() != value.KindObject {
			return true
		}
		return m.matchObject(inner, v, path, st, func(st2 *state, coverage map[string]struct{}) bool {
			subset := v.Object().Subset(coverage)
			captured := value.FromObject(subset)
			st3, ok := bindGroup(st2, n.Name, captured, path)
			if !ok {
				return true
			}
			m.ctx.hooks.OnBind("group", n.Name, captured)
			return emit(st3)
		})
	default:
		return true
	}
}

func (m *matcher) matchAlt(n *ast.Alt, v value.Value, path value.Path, st *state, emit func(*state) bool) bool {
	if n.Kind == ast.AnyOf {
		for _, branch := range n.Branches {
			if !m.matchItem(branch, v, path, st, emit) {
				return false
			}
		}
		return true
	}
	for _, branch := range n.Branches {
		produced := false
		cont := m.matchItem(branch, v, path, st, func(st2 *state) bool {
			produced = true
			return emit(st2)
		})
		if !cont {
			return false
		}
		if produced {
			return true
		}
	}
	return true
}

// matchGuardNode implements the anonymous `(PATTERN where EXPR)` form,
// evaluated against `_` bound to v (spec.md §4.3.5).
func (m *matcher) matchGuardNode(n *ast.Guard, v value.Value, path value.Path, st *state, emit func(*state) bool) bool {
	return m.matchItem(n.Inner, v, path, st, func(st2 *state) bool {
		env := guardEnv(st2, v, true)
		if !guard.Ready(n.Expression, env) {
			return true
		}
		res, ok := guard.Eval(n.Expression, env)
		if !ok || res.Kind() != value.KindBool || !res.Bool() {
			return true
		}
		return emit(st2)
	})
}

func (m *matcher) matchArrayLiteral(n *ast.Array, v value.Value, path value.Path, st *state, emit func(*state) bool) bool {
	if v.Kind() != value.KindArray {
		return true
	}
	arr := v.Items()
	return m.matchSeq(n.Body.Items, 0, arr, 0, path, st, func(end int, st2 *state) bool {
		if end != len(arr) {
			return true
		}
		return emit(st2)
	})
}

func (m *matcher) matchSliceItem(n *ast.Slice, v value.Value, path value.Path, st *state, emit func(*state) bool) bool {
	switch n.Kind {
	case ast.SliceArray:
		if v.Kind() != value.KindArray {
			return true
		}
		seq, ok := n.Body.(*ast.Seq)
		if !ok {
			return true
		}
		arr := v.Items()
		return m.matchSeq(seq.Items, 0, arr, 0, path, st, func(end int, st2 *state) bool {
			if end != len(arr) {
				return true
			}
			return emit(st2)
		})
	case ast.SliceObject:
		if v.Kind() != value.KindObject {
			return true
		}
		obj, ok := n.Body.(*ast.Object)
		if !ok {
			return true
		}
		return m.matchObject(obj, v, path, st, func(st2 *state, _ map[string]struct{}) bool {
			return emit(st2)
		})
	default:
		return true
	}
}

func nodeTypeName(item ast.Item) string {
	switch item.(type) {
	case *ast.Literal:
		return "Literal"
	case *ast.TypedWildcard:
		return "TypedWildcard"
	case *ast.ScalarBind:
		return "ScalarBind"
	case *ast.GroupBind:
		return "GroupBind"
	case *ast.Alt:
		return "Alt"
	case *ast.Quantified:
		return "Quantified"
	case *ast.Lookahead:
		return "Lookahead"
	case *ast.Array:
		return "Array"
	case *ast.Object:
		return "Object"
	case *ast.Guard:
		return "Guard"
	case *ast.Slice:
		return "Slice"
	default:
		return "Item"
	}
}
