package engine

import "github.com/tendril-lang/tendril/value"

// BindingKind distinguishes a scalar (`$name`) capture from a group
// (`%name`/`@name`) capture within a Solution.
type BindingKind int

const (
	ScalarBinding BindingKind = iota
	GroupBindingKind
)

// Site is one location in the matched tree that contributed to a
// binding (spec.md §3.2).
type Site struct {
	Path value.Path
	Kind BindingKind
}

// Binding is one named variable's final value and every site that
// produced it.
type Binding struct {
	Kind  BindingKind
	Value value.Value
	Sites []value.Path
}

// Bucket is one flow directive's accumulated aggregation target.
type Bucket struct {
	IsArray bool
	Items   []value.Value
	Object  *value.Object
}

// Solution is one successful, fully-bound match (spec.md §3.2, §6.2).
// It is immutable; callers get their own copies of its collections.
type Solution struct {
	bindings map[string]Binding
	buckets  map[string]Bucket
	coverage map[string]struct{}
}

func newSolution(st *state, coverage map[string]struct{}) *Solution {
	bindings := make(map[string]Binding, len(st.scalars)+len(st.groups))
	for name, b := range st.scalars {
		bindings[name] = Binding{Kind: ScalarBinding, Value: b.value, Sites: append([]value.Path{}, b.sites...)}
	}
	for name, g := range st.groups {
		bindings[name] = Binding{Kind: GroupBindingKind, Value: g.value, Sites: append([]value.Path{}, g.sites...)}
	}
	buckets := make(map[string]Bucket, len(st.buckets))
	for name, b := range st.buckets {
		buckets[name] = Bucket{IsArray: b.isArray, Items: append([]value.Value{}, b.items...), Object: b.obj}
	}
	cov := make(map[string]struct{}, len(coverage))
	for k := range coverage {
		cov[k] = struct{}{}
	}
	return &Solution{bindings: bindings, buckets: buckets, coverage: cov}
}

// Bindings returns every named scalar and group capture.
func (s *Solution) Bindings() map[string]Binding {
	out := make(map[string]Binding, len(s.bindings))
	for k, v := range s.bindings {
		out[k] = v
	}
	return out
}

// Sites returns every location that contributed to name, or nil if name
// was never bound.
func (s *Solution) Sites(name string) []Site {
	b, ok := s.bindings[name]
	if !ok {
		return nil
	}
	out := make([]Site, len(b.Sites))
	for i, p := range b.Sites {
		out[i] = Site{Path: p, Kind: b.Kind}
	}
	return out
}

// Buckets returns every flow directive's accumulated aggregation
// target.
func (s *Solution) Buckets() map[string]Bucket {
	out := make(map[string]Bucket, len(s.buckets))
	for k, v := range s.buckets {
		out[k] = v
	}
	return out
}

// Coverage returns the object keys touched by the top-level object
// pattern's field clauses, used to compute the remainder.
func (s *Solution) Coverage() []string {
	out := make([]string, 0, len(s.coverage))
	for k := range s.coverage {
		out = append(out, k)
	}
	return out
}
