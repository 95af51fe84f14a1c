package engine

import (
	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/value"
)

// navTarget is one candidate (value, path) a breadcrumb chain can land
// on, paired with the state produced by any bindings the navigation
// itself made (e.g. a `[$i]` dynamic index capturing $i).
type navTarget struct {
	value value.Value
	path  value.Path
	state *state
}

// matchObject matches node against v (which must already be known to be
// an object). finish receives the resulting state together with the set
// of keys the clauses touched, for every surviving branch (spec.md
// §4.3.3, §4.4).
func (m *matcher) matchObject(node *ast.Object, v value.Value, path value.Path, st *state, finish func(*state, map[string]struct{}) bool) bool {
	if v.Kind() != value.KindObject {
		return true
	}
	return m.matchTerms(node, 0, v.Object(), path, st, map[string]struct{}{}, finish)
}

func (m *matcher) matchTerms(node *ast.Object, idx int, obj *value.Object, objPath value.Path, st *state, coverage map[string]struct{}, finish func(*state, map[string]struct{}) bool) bool {
	if !m.ctx.step() {
		return false
	}
	if idx == len(node.Terms) {
		return m.finishObject(node, obj, st, coverage, finish)
	}
	fc := node.Terms[idx]
	return m.matchFieldClause(fc, obj, objPath, st, coverage, func(st2 *state, cov2 map[string]struct{}) bool {
		return m.matchTerms(node, idx+1, obj, objPath, st2, cov2, finish)
	})
}

// matchKeyPattern tries keyItem against key treated as a string value,
// reusing the generic single-value matcher for literal/wildcard/regex/
// scalar-bind key forms alike (spec.md §4.4). A GroupBind key pattern
// (a bare `%name` used in key position) matches every key unconditionally;
// object-subset group captures are not meaningful as a key pattern.
func (m *matcher) matchKeyPattern(keyItem ast.Item, key string, site value.Path, st *state, emit func(*state) bool) bool {
	if _, ok := keyItem.(*ast.GroupBind); ok {
		return emit(st)
	}
	return m.matchItem(keyItem, value.String(key), site, st, emit)
}

type keyCandidate struct {
	key   string
	state *state
}

// candidateKeys enumerates every object key that keyItem matches,
// together with the state each match produced (spec.md §4.4).
func (m *matcher) candidateKeys(keyItem ast.Item, obj *value.Object, st *state, objPath value.Path) []keyCandidate {
	var out []keyCandidate
	obj.Each(func(k string, _ value.Value) bool {
		m.matchKeyPattern(keyItem, k, objPath.Child(k), st, func(st2 *state) bool {
			out = append(out, keyCandidate{key: k, state: st2})
			return true
		})
		return true
	})
	return out
}

// navigateBreadcrumbs walks bcs from (v, path), branching at every
// `.key`, `[index]`/`[pattern]`, and `**` step (spec.md §4.3.3,
// "breadcrumb navigation").
func (m *matcher) navigateBreadcrumbs(bcs []ast.Breadcrumb, idx int, v value.Value, path value.Path, st *state) []navTarget {
	if idx == len(bcs) {
		return []navTarget{{value: v, path: path, state: st}}
	}
	bc := bcs[idx]
	var out []navTarget
	switch bc.Kind {
	case ast.DotKey:
		if v.Kind() != value.KindObject {
			return nil
		}
		v.Object().Each(func(k string, cv value.Value) bool {
			m.matchKeyPattern(bc.Key, k, path.Child(k), st, func(st2 *state) bool {
				out = append(out, m.navigateBreadcrumbs(bcs, idx+1, cv, path.Child(k), st2)...)
				return true
			})
			return true
		})
	case ast.IndexKey:
		if v.Kind() != value.KindArray {
			return nil
		}
		items := v.Items()
		if bc.Index >= 0 {
			if bc.Index >= len(items) {
				return nil
			}
			out = append(out, m.navigateBreadcrumbs(bcs, idx+1, items[bc.Index], path.Elem(bc.Index), st)...)
		} else {
			for i, it := range items {
				m.matchItem(bc.Key, value.Number(float64(i)), path.Elem(i), st, func(st2 *state) bool {
					out = append(out, m.navigateBreadcrumbs(bcs, idx+1, it, path.Elem(i), st2)...)
					return true
				})
			}
		}
	case ast.SkipAny:
		descendants := collectDescendants(v, path)
		for _, d := range descendants {
			if bc.Key == nil {
				out = append(out, m.navigateBreadcrumbs(bcs, idx+1, d.value, d.path, st)...)
				continue
			}
			lastKey, ok := lastKeyStep(d.path)
			if !ok {
				continue
			}
			m.matchKeyPattern(bc.Key, lastKey, d.path, st, func(st2 *state) bool {
				out = append(out, m.navigateBreadcrumbs(bcs, idx+1, d.value, d.path, st2)...)
				return true
			})
		}
	}
	return out
}

type descendant struct {
	value value.Value
	path  value.Path
}

// collectDescendants flattens v's subtree in pre-order, including v
// itself, for `**`'s "any depth, including zero" search (spec.md
// §4.3.3).
func collectDescendants(v value.Value, path value.Path) []descendant {
	out := []descendant{{value: v, path: path}}
	switch v.Kind() {
	case value.KindObject:
		v.Object().Each(func(k string, cv value.Value) bool {
			out = append(out, collectDescendants(cv, path.Child(k))...)
			return true
		})
	case value.KindArray:
		for i, it := range v.Items() {
			out = append(out, collectDescendants(it, path.Elem(i))...)
		}
	}
	return out
}

func lastKeyStep(p value.Path) (string, bool) {
	if len(p) == 0 {
		return "", false
	}
	last := p[len(p)-1]
	if last.Kind != value.KeyStep {
		return "", false
	}
	return last.Key, true
}

// matchFieldClause implements spec.md §4.3.3: enumerate candidate keys,
// navigate breadcrumbs, match the value pattern (or run the flow
// directive), enforce the key-value quantifier, and record every
// candidate (whether or not its value matched) into coverage.
func (m *matcher) matchFieldClause(fc *ast.FieldClause, obj *value.Object, objPath value.Path, st *state, coverage map[string]struct{}, cont func(*state, map[string]struct{}) bool) bool {
	candidates := m.candidateKeys(fc.Key, obj, st, objPath)
	newCoverage := cloneCoverage(coverage)
	for _, c := range candidates {
		newCoverage[c.key] = struct{}{}
	}

	if fc.Flow != nil {
		return m.matchFlowClause(fc, candidates, st, obj, objPath, newCoverage, cont)
	}

	type witness struct {
		key   string
		state *state
	}
	var successes []witness
	for _, cand := range candidates {
		v0, _ := obj.Get(cand.key)
		targets := m.navigateBreadcrumbs(fc.Breadcrumbs, 0, v0, objPath.Child(cand.key), cand.state)
		for _, t := range targets {
			m.matchItem(fc.Value, t.value, t.path, t.state, func(st2 *state) bool {
				successes = append(successes, witness{cand.key, st2})
				return true
			})
		}
	}

	min, max := 1, ast.Unbounded
	if fc.Optional {
		min = 0
	}
	if fc.KVQuant != nil {
		min, max = fc.KVQuant.Min, fc.KVQuant.Max
	}
	successKeys := map[string]struct{}{}
	for _, w := range successes {
		successKeys[w.key] = struct{}{}
	}
	total := len(successKeys)
	if total < min || (max != ast.Unbounded && total > max) {
		return true
	}

	if fc.Strong {
		if len(candidates) > 0 && total != len(candidates) {
			return true
		}
		merged := st
		seen := map[string]bool{}
		for _, w := range successes {
			if seen[w.key] {
				continue
			}
			seen[w.key] = true
			next, ok := mergeState(merged, w.state)
			if !ok {
				return true
			}
			merged = next
		}
		return cont(merged, newCoverage)
	}

	for _, w := range successes {
		if !cont(w.state, newCoverage) {
			return false
		}
	}
	return true
}

// matchFlowClause implements the `VALUE -> BUCKET (else VALUE -> BUCKET)*
// (else !)?` directive (spec.md §4.3.3, §4.5, §8 scenario 4). Candidates
// are processed in object order, writing into a running, per-key
// accumulated bucket state; every candidate whose value matches some arm
// becomes its own witness branch, carrying the buckets accumulated up to
// and including that candidate.
func (m *matcher) matchFlowClause(fc *ast.FieldClause, candidates []keyCandidate, st *state, obj *value.Object, objPath value.Path, coverage map[string]struct{}, cont func(*state, map[string]struct{}) bool) bool {
	if len(candidates) == 0 && !fc.Optional {
		return true
	}
	runningBuckets := st.buckets
	anyMatched := false
	for _, cand := range candidates {
		v0, _ := obj.Get(cand.key)
		targets := m.navigateBreadcrumbs(fc.Breadcrumbs, 0, v0, objPath.Child(cand.key), cand.state)

		var chosenArm *ast.FlowArm
		var chosenState *state
		for ai := range fc.Flow.Arms {
			arm := &fc.Flow.Arms[ai]
			found := false
			for _, t := range targets {
				m.matchItem(arm.Value, t.value, t.path, t.state, func(st2 *state) bool {
					found = true
					chosenState = st2
					return false
				})
				if found {
					break
				}
			}
			if found {
				chosenArm = arm
				break
			}
		}

		if chosenArm == nil {
			if fc.Flow.Strong {
				return true
			}
			continue
		}

		newBuckets, ok := writeBucket(runningBuckets, chosenArm.Bucket, cand.key, v0)
		if !ok {
			if fc.Flow.Strong {
				return true
			}
			continue
		}
		runningBuckets = newBuckets
		anyMatched = true

		branchSt := chosenState.clone()
		branchSt.buckets = runningBuckets
		if !cont(branchSt, coverage) {
			return false
		}
	}
	if !anyMatched && fc.Flow.Strong && len(candidates) > 0 {
		return true
	}
	return true
}

// writeBucket applies the bucket collision policy (spec.md §4.5): an
// array bucket (`@name`) always appends; an object bucket (`%name`)
// re-inserting an equal value is a no-op, re-inserting a different value
// fails (returns ok=false).
func writeBucket(buckets map[string]*bucketState, ref *ast.BucketRef, key string, v value.Value) (map[string]*bucketState, bool) {
	nb := cloneBuckets(buckets)
	existing, ok := nb[ref.Name]
	var b bucketState
	if ok {
		b = *existing
	} else {
		b.isArray = ref.Sigil == ast.SigilAt
	}
	if ref.Sigil == ast.SigilAt {
		b.items = append(append([]value.Value{}, b.items...), v)
	} else {
		if b.obj == nil {
			b.obj = value.NewObject()
		} else {
			b.obj = b.obj.Clone()
		}
		if prior, found := b.obj.Get(key); found {
			if !value.SameValueZero(prior, v) {
				return nil, false
			}
		} else {
			b.obj.Set(key, v)
		}
	}
	nb[ref.Name] = &b
	return nb, true
}

// finishObject applies the trailing remainder clause (if any) and emits
// the object's final state (spec.md §4.3.3 "Remainder").
func (m *matcher) finishObject(node *ast.Object, obj *value.Object, st *state, coverage map[string]struct{}, finish func(*state, map[string]struct{}) bool) bool {
	r := node.Remainder
	if r == nil {
		return finish(st, coverage)
	}

	remainderKeys := map[string]struct{}{}
	obj.Each(func(k string, _ value.Value) bool {
		if _, ok := coverage[k]; !ok {
			remainderKeys[k] = struct{}{}
		}
		return true
	})
	count := len(remainderKeys)

	min, max := 0, ast.Unbounded
	if r.Quant != nil {
		min, max = r.Quant.Min, r.Quant.Max
	} else if r.Assertion {
		min = 1
	}
	if count < min || (max != ast.Unbounded && count > max) {
		return true
	}

	st2 := st
	if r.Bind != "" {
		subset := obj.Subset(remainderKeys)
		captured := value.FromObject(subset)
		next, ok := bindGroup(st, r.Bind, captured, nil)
		if !ok {
			return true
		}
		m.ctx.hooks.OnBind("group", r.Bind, captured)
		st2 = next
	}
	return finish(st2, coverage)
}
