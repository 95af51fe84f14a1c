// Package engine matches a compiled Tendril pattern (package ast)
// against a value.Value tree, enumerating every solution in
// deterministic, document order (spec.md §4.3-§4.7, §6.2).
package engine

import (
	"errors"

	"github.com/tendril-lang/tendril/ast"
	"github.com/tendril-lang/tendril/hooks"
	"github.com/tendril-lang/tendril/value"
)

// DefaultStepBudget bounds the number of internal matcher steps before a
// match aborts with LimitExceeded, guarding against pathological
// backtracking over adversarial input (spec.md §4.6, §7).
const DefaultStepBudget = 2_000_000

// Options configures one Match/Scan call.
type Options struct {
	// StepBudget caps internal matcher steps; 0 uses DefaultStepBudget.
	// A negative value disables the budget entirely.
	StepBudget int
	// MaxSolutions stops enumeration after this many solutions are
	// emitted; 0 means unbounded.
	MaxSolutions int
	Hooks        hooks.EngineHooks
}

// LimitExceeded reports that a match aborted after exhausting its step
// budget (spec.md §7). Already-emitted solutions remain valid; the
// search was simply cut short.
type LimitExceeded struct {
	Steps int
}

func (e *LimitExceeded) Error() string { return "tendril: step budget exceeded during matching" }

// errAnchoredSlice is returned when Match is asked to run a `@{...}`/
// `@[...]` slice pattern, which is scan-only (spec.md §9 Open Question:
// "top-level slice patterns vs anchored match").
var errAnchoredSlice = errors.New("tendril: a slice pattern (@{...} / @[...]) cannot be used with an anchored match; use Scan")

type ctx struct {
	hooks   hooks.EngineHooks
	budget  int
	steps   int
	limited bool
}

func (c *ctx) step() bool {
	if c.limited {
		return false
	}
	c.steps++
	if c.budget > 0 && c.steps > c.budget {
		c.limited = true
		return false
	}
	return true
}

type matcher struct {
	ctx *ctx
}

func newCtx(opts Options) *ctx {
	h := opts.Hooks
	if h == nil {
		h = hooks.NoopEngineHooks{}
	}
	budget := opts.StepBudget
	if budget == 0 {
		budget = DefaultStepBudget
	}
	if budget < 0 {
		budget = 0
	}
	return &ctx{hooks: h, budget: budget}
}

// emitSolution wraps a caller's emit callback, stamping MaxSolutions.
func emitSolution(opts Options, emit func(*Solution) bool) func(*state, map[string]struct{}) bool {
	count := 0
	return func(st *state, coverage map[string]struct{}) bool {
		count++
		cont := emit(newSolution(st, coverage))
		if opts.MaxSolutions > 0 && count >= opts.MaxSolutions {
			return false
		}
		return cont
	}
}

// Match runs an anchored match of pattern against root, calling emit for
// every solution in order until emit returns false or the search is
// exhausted (spec.md §4.3, §6.2). A non-nil *LimitExceeded means the
// step budget was hit before the search finished; solutions already
// emitted are still valid.
func Match(pattern *ast.Pattern, root value.Value, opts Options, emit func(*Solution) bool) (*LimitExceeded, error) {
	if _, ok := pattern.Root.(*ast.Slice); ok {
		return nil, errAnchoredSlice
	}
	c := newCtx(opts)
	m := &matcher{ctx: c}
	produce := emitSolution(opts, emit)

	if obj, ok := pattern.Root.(*ast.Object); ok {
		m.matchObject(obj, root, nil, newState(), produce)
	} else {
		m.matchItem(pattern.Root, root, nil, newState(), func(st *state) bool {
			return produce(st, map[string]struct{}{})
		})
	}
	if c.limited {
		return &LimitExceeded{Steps: c.steps}, nil
	}
	return nil, nil
}

// scanTarget converts a root-only Slice pattern into the plain Object/
// Array item it wraps, so Scan can match it against every candidate
// descendant the same way it matches any other root shape.
func scanTarget(root ast.Item) ast.Item {
	sl, ok := root.(*ast.Slice)
	if !ok {
		return root
	}
	switch sl.Kind {
	case ast.SliceArray:
		if seq, ok := sl.Body.(*ast.Seq); ok {
			return ast.NewArray(sl.Span(), seq, "")
		}
	case ast.SliceObject:
		if obj, ok := sl.Body.(*ast.Object); ok {
			return obj
		}
	}
	return root
}

// Scan tries pattern against every node of root (root itself and every
// descendant, pre-order), emitting a solution for each match at each
// candidate node (spec.md §4.3, §6.1 "unanchored search").
func Scan(pattern *ast.Pattern, root value.Value, opts Options, emit func(*Solution) bool) (*LimitExceeded, error) {
	c := newCtx(opts)
	m := &matcher{ctx: c}
	produce := emitSolution(opts, emit)
	target := scanTarget(pattern.Root)

	candidates := collectDescendants(root, nil)
	for _, d := range candidates {
		if c.limited {
			break
		}
		var cont bool
		if obj, ok := target.(*ast.Object); ok {
			cont = m.matchObject(obj, d.value, d.path, newState(), produce)
		} else {
			cont = m.matchItem(target, d.value, d.path, newState(), func(st *state) bool {
				return produce(st, map[string]struct{}{})
			})
		}
		if !cont {
			break
		}
	}
	if c.limited {
		return &LimitExceeded{Steps: c.steps}, nil
	}
	return nil, nil
}

// FirstMatch returns the first solution Match would produce, or nil if
// there is none (spec.md §6.2).
func FirstMatch(pattern *ast.Pattern, root value.Value, opts Options) (*Solution, *LimitExceeded, error) {
	var found *Solution
	limit, err := Match(pattern, root, opts, func(sol *Solution) bool {
		found = sol
		return false
	})
	return found, limit, err
}

// FirstScan returns the first solution Scan would produce, or nil if
// there is none.
func FirstScan(pattern *ast.Pattern, root value.Value, opts Options) (*Solution, *LimitExceeded, error) {
	var found *Solution
	limit, err := Scan(pattern, root, opts, func(sol *Solution) bool {
		found = sol
		return false
	})
	return found, limit, err
}

// HasMatch reports whether pattern matches root at all, short-circuiting
// at the first solution.
func HasMatch(pattern *ast.Pattern, root value.Value, opts Options) (bool, *LimitExceeded, error) {
	sol, limit, err := FirstMatch(pattern, root, opts)
	return sol != nil, limit, err
}

// HasScan reports whether pattern matches anywhere in root, short-
// circuiting at the first solution.
func HasScan(pattern *ast.Pattern, root value.Value, opts Options) (bool, *LimitExceeded, error) {
	sol, limit, err := FirstScan(pattern, root, opts)
	return sol != nil, limit, err
}
