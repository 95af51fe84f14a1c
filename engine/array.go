package engine

import (
	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/value"
)

// matchSeq matches items[idx:] against arr starting at pos, calling emit
// with every array index at which the whole remaining item list was
// fully consumed (spec.md §4.3.2). It does not itself require
// pos==len(arr) on completion — callers that need a fully anchored
// match (Array, a GroupBind standing alone) check that themselves; a
// GroupBind nested inside an outer Seq deliberately stops short so the
// outer sequence can keep matching from where the group ended.
func (m *matcher) matchSeq(items []ast.Item, idx int, arr []value.Value, pos int, path value.Path, st *state, emit func(endPos int, st *state) bool) bool {
	if !m.ctx.step() {
		return false
	}
	if idx == len(items) {
		return emit(pos, st)
	}
	return m.matchSeqItem(items[idx], items, idx, arr, pos, path, st, emit)
}

// matchSeqItem dispatches one seq-position item. Quantified, GroupBind,
// and Lookahead are positional constructs (they consume a variable
// number of array slots, or none) and are handled here rather than by
// the generic single-value matchItem; an Alt at seq position may itself
// contain such a branch, so its branches are also redirected here
// instead of to matchItem.
func (m *matcher) matchSeqItem(item ast.Item, items []ast.Item, idx int, arr []value.Value, pos int, path value.Path, st *state, emit func(int, *state) bool) bool {
	switch n := item.(type) {
	case *ast.Quantified:
		return m.matchQuantified(n, items, idx, arr, pos, path, st, emit)
	case *ast.GroupBind:
		return m.matchGroupBindSeq(n, items, idx, arr, pos, path, st, emit)
	case *ast.Lookahead:
		return m.matchLookaheadSeq(n, items, idx, arr, pos, path, st, emit)
	case *ast.Alt:
		if n.Kind == ast.AnyOf {
			for _, branch := range n.Branches {
				if !m.matchSeqItem(branch, items, idx, arr, pos, path, st, emit) {
					return false
				}
			}
			return true
		}
		for _, branch := range n.Branches {
			produced := false
			cont := m.matchSeqItem(branch, items, idx, arr, pos, path, st, func(end int, st2 *state) bool {
				produced = true
				return emit(end, st2)
			})
			if !cont {
				return false
			}
			if produced {
				return true
			}
		}
		return true
	default:
		if pos >= len(arr) {
			return true
		}
		v := arr[pos]
		p := path.Elem(pos)
		return m.matchItem(item, v, p, st, func(st2 *state) bool {
			return m.matchSeq(items, idx+1, arr, pos+1, path, st2, emit)
		})
	}
}

// matchRepeatExact matches inner exactly remaining times consecutively
// starting at pos, threading state through every repetition.
func (m *matcher) matchRepeatExact(inner ast.Item, remaining int, arr []value.Value, pos int, path value.Path, st *state, emit func(*state) bool) bool {
	if !m.ctx.step() {
		return false
	}
	if remaining == 0 {
		return emit(st)
	}
	if pos >= len(arr) {
		return true
	}
	v := arr[pos]
	p := path.Elem(pos)
	return m.matchItem(inner, v, p, st, func(st2 *state) bool {
		return m.matchRepeatExact(inner, remaining-1, arr, pos+1, path, st2, emit)
	})
}

// matchQuantified implements the three backtracking strategies (spec.md
// §4.3.2): greedy tries longest-first, lazy tries shortest-first,
// possessive consumes maximally with no backtracking into the choice of
// count once made.
func (m *matcher) matchQuantified(n *ast.Quantified, items []ast.Item, idx int, arr []value.Value, pos int, path value.Path, st *state, emit func(int, *state) bool) bool {
	maxCount := len(arr) - pos
	if n.Max != ast.Unbounded && n.Max < maxCount {
		maxCount = n.Max
	}
	if maxCount < n.Min {
		return true
	}
	switch n.Mode {
	case ast.Greedy:
		for count := maxCount; count >= n.Min; count-- {
			cont := m.matchRepeatExact(n.Inner, count, arr, pos, path, st, func(st2 *state) bool {
				return m.matchSeq(items, idx+1, arr, pos+count, path, st2, emit)
			})
			if !cont {
				return false
			}
		}
		return true
	case ast.Lazy:
		for count := n.Min; count <= maxCount; count++ {
			cont := m.matchRepeatExact(n.Inner, count, arr, pos, path, st, func(st2 *state) bool {
				return m.matchSeq(items, idx+1, arr, pos+count, path, st2, emit)
			})
			if !cont {
				return false
			}
		}
		return true
	default: // Possessive
		count := 0
		cur := st
		for count < maxCount {
			v := arr[pos+count]
			p := path.Elem(pos + count)
			matched := false
			var next *state
			m.matchItem(n.Inner, v, p, cur, func(st2 *state) bool {
				next = st2
				matched = true
				return false
			})
			if !matched {
				break
			}
			cur = next
			count++
		}
		if count < n.Min {
			return true
		}
		return m.matchSeq(items, idx+1, arr, pos+count, path, cur, emit)
	}
}

// matchGroupBindSeq matches a `%name`/`@name` group capture appearing as
// a seq element: its Inner (an array-body Seq) is matched against the
// remaining array from pos, and for every length it can reach, the
// consumed slice [pos,end) is captured and bound before the outer
// sequence continues from end (spec.md §3.1, §8 scenario 6).
func (m *matcher) matchGroupBindSeq(n *ast.GroupBind, items []ast.Item, idx int, arr []value.Value, pos int, path value.Path, st *state, emit func(int, *state) bool) bool {
	innerSeq, ok := n.Inner.(*ast.Seq)
	if !ok {
		return true
	}
	return m.matchSeq(innerSeq.Items, 0, arr, pos, path, st, func(end int, st2 *state) bool {
		captured := value.Array(append([]value.Value{}, arr[pos:end]...))
		st3, ok := bindGroup(st2, n.Name, captured, path)
		if !ok {
			return true
		}
		m.ctx.hooks.OnBind("group", n.Name, captured)
		return m.matchSeq(items, idx+1, arr, end, path, st3, emit)
	})
}

// matchLookaheadSeq is a zero-width seq-position assertion: it never
// consumes an array slot, only gates whether the outer sequence
// continues (spec.md §3.1).
func (m *matcher) matchLookaheadSeq(n *ast.Lookahead, items []ast.Item, idx int, arr []value.Value, pos int, path value.Path, st *state, emit func(int, *state) bool) bool {
	satisfied := false
	if pos < len(arr) {
		m.matchItem(n.Inner, arr[pos], path.Elem(pos), st, func(*state) bool {
			satisfied = true
			return false
		})
	}
	ok := satisfied
	if n.Sign == ast.Negative {
		ok = !satisfied
	}
	if !ok {
		return true
	}
	return m.matchSeq(items, idx+1, arr, pos, path, st, emit)
}
