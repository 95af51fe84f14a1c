package engine

import (
	"github.com/tendril-lang/tendril/guard"
	"github.com/tendril-lang/tendril/value"
)

// guardEnv bridges a branch's state to the guard package's evaluation
// environment: "" / "_" resolves to the value the enclosing binding is
// currently testing, every other name to a previously bound scalar
// (spec.md §4.3.5). Groups are not visible to guards — guards only ever
// reason about scalars and the anonymous underscore.
func guardEnv(st *state, underscore value.Value, hasUnderscore bool) guard.Env {
	return func(name string) (value.Value, bool) {
		if name == "" {
			if hasUnderscore {
				return underscore, true
			}
			return value.Value{}, false
		}
		b, ok := st.scalars[name]
		if !ok {
			return value.Value{}, false
		}
		return b.value, true
	}
}
