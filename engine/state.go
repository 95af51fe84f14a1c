package engine

import "github.com/tendril-lang/tendril/value"

// scalarBinding is one `$name` variable's current value and every site
// (path) that contributed to it (spec.md §3.2, §5 "bindings are cloned
// on branch").
type scalarBinding struct {
	value value.Value
	sites []value.Path
}

// groupBinding is one `%name`/`@name` variable's captured array or
// object subset, plus its contributing sites.
type groupBinding struct {
	value value.Value
	sites []value.Path
}

// bucketState is one flow-directive aggregation target's accumulated
// contents. Array buckets (`@name`) always append; object buckets
// (`%name`) apply the collision policy in writeBucket (spec.md §4.5).
type bucketState struct {
	isArray bool
	items   []value.Value
	obj     *value.Object
}

// state is one backtracking branch's bindings. It is cloned (shallow,
// since value.Value is immutable) whenever a branch forks, so a failed
// continuation never perturbs its sibling (spec.md §5).
type state struct {
	scalars map[string]scalarBinding
	groups  map[string]groupBinding
	buckets map[string]*bucketState
}

func newState() *state {
	return &state{
		scalars: map[string]scalarBinding{},
		groups:  map[string]groupBinding{},
		buckets: map[string]*bucketState{},
	}
}

func (st *state) clone() *state {
	out := &state{
		scalars: make(map[string]scalarBinding, len(st.scalars)),
		groups:  make(map[string]groupBinding, len(st.groups)),
		buckets: make(map[string]*bucketState, len(st.buckets)),
	}
	for k, v := range st.scalars {
		out.scalars[k] = v
	}
	for k, v := range st.groups {
		out.groups[k] = v
	}
	for k, v := range st.buckets {
		out.buckets[k] = v
	}
	return out
}

func cloneBuckets(b map[string]*bucketState) map[string]*bucketState {
	out := make(map[string]*bucketState, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func cloneCoverage(c map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(c))
	for k := range c {
		out[k] = struct{}{}
	}
	return out
}

// bindScalar unifies name (if non-empty) against v in a cloned copy of
// st: a fresh name is recorded, a name already bound must agree with v
// under value.SameValueZero or the branch silently fails (spec.md
// §4.3.4).
func bindScalar(st *state, name string, v value.Value, site value.Path) (*state, bool) {
	if name == "" {
		return st, true
	}
	out := st.clone()
	if existing, ok := out.scalars[name]; ok {
		if !value.SameValueZero(existing.value, v) {
			return nil, false
		}
		existing.sites = append(append([]value.Path{}, existing.sites...), site)
		out.scalars[name] = existing
		return out, true
	}
	out.scalars[name] = scalarBinding{value: v, sites: []value.Path{site}}
	return out, true
}

// bindGroup is bindScalar's counterpart for `%name`/`@name` captures.
func bindGroup(st *state, name string, v value.Value, site value.Path) (*state, bool) {
	if name == "" {
		return st, true
	}
	out := st.clone()
	if existing, ok := out.groups[name]; ok {
		if !value.SameValueZero(existing.value, v) {
			return nil, false
		}
		existing.sites = append(append([]value.Path{}, existing.sites...), site)
		out.groups[name] = existing
		return out, true
	}
	out.groups[name] = groupBinding{value: v, sites: []value.Path{site}}
	return out, true
}

// mergeState folds src's scalar/group bindings into a clone of dst,
// unifying names present in both and failing on disagreement. Used by
// the strong (`else !`) field-clause path, which must check every
// candidate key's value against the same committed state (spec.md
// §4.3.3).
func mergeState(dst, src *state) (*state, bool) {
	out := dst.clone()
	for name, b := range src.scalars {
		if existing, ok := out.scalars[name]; ok {
			if !value.SameValueZero(existing.value, b.value) {
				return nil, false
			}
			existing.sites = append(append([]value.Path{}, existing.sites...), b.sites...)
			out.scalars[name] = existing
		} else {
			out.scalars[name] = b
		}
	}
	for name, g := range src.groups {
		if existing, ok := out.groups[name]; ok {
			if !value.SameValueZero(existing.value, g.value) {
				return nil, false
			}
			existing.sites = append(append([]value.Path{}, existing.sites...), g.sites...)
			out.groups[name] = existing
		} else {
			out.groups[name] = g
		}
	}
	for name, b := range src.buckets {
		if _, ok := out.buckets[name]; !ok {
			out.buckets[name] = b
		}
	}
	return out, true
}
