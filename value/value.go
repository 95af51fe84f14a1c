// Package value implements the tagged-union representation of JSON-like
// trees that the tokenizer, parser, and engine all share: a Value is
// either a Null, a Bool, a Number, a String, an Array, or an Object.
//
// Object preserves source key order (the Open Question in spec.md §9 about
// "precise determinism of object key enumeration" is resolved here: the
// chosen order is insertion order) using an ordered map rather than a bare
// Go map, so callers never need to sort keys to get a stable result order.
package value

import (
	"fmt"
	"math"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON-like value. The zero Value is KindNull.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  *Object
}

// Object is an ordered string->Value map. Iteration order is insertion
// order, matching how the source document's object keys appeared.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, Value]()}
}

// Set inserts or replaces key's value, preserving the original insertion
// position on replace.
func (o *Object) Set(key string, v Value) {
	o.m.Set(key, v)
}

// Get returns the value stored at key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	return o.m.Get(key)
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil || o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the object's keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every entry in insertion order. Stops early if fn
// returns false.
func (o *Object) Each(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a shallow copy with its own backing map (values are
// immutable, so a shallow copy is a full structural copy).
func (o *Object) Clone() *Object {
	clone := NewObject()
	o.Each(func(k string, v Value) bool {
		clone.Set(k, v)
		return true
	})
	return clone
}

// Subset builds a new Object containing only the given keys, in the
// order they appear in o (used to materialize remainder / group-bound
// object slices).
func (o *Object) Subset(keys map[string]struct{}) *Object {
	out := NewObject()
	o.Each(func(k string, v Value) bool {
		if _, ok := keys[k]; ok {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// Constructors.

func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func Array(items []Value) Value { return Value{kind: KindArray, arr: items} }

func FromObject(o *Object) Value { return Value{kind: KindObject, obj: o} }

// Accessors. Each panics if called against the wrong Kind; callers must
// check Kind() first (matching how the engine only ever calls these
// behind a prior type-tag switch).

func (v Value) Kind() Kind { return v.kind }

func (v Value) Bool() bool { return v.b }

func (v Value) Number() float64 { return v.n }

func (v Value) Str() string { return v.s }

func (v Value) Items() []Value { return v.arr }

func (v Value) Object() *Object { return v.obj }

// String renders a Value as compact JSON-ish text, for diagnostics only.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindArray:
		out := "["
		for i, it := range v.arr {
			if i > 0 {
				out += ","
			}
			out += it.String()
		}
		return out + "]"
	case KindObject:
		out := "{"
		first := true
		v.obj.Each(func(k string, item Value) bool {
			if !first {
				out += ","
			}
			first = false
			out += strconv.Quote(k) + ":" + item.String()
			return true
		})
		return out + "}"
	default:
		return fmt.Sprintf("<invalid:%d>", v.kind)
	}
}

// SameValueZero implements the structural-equality predicate shared by
// literal matching, unification, and guard `== / !=` (spec.md §3.3):
// NaN equals NaN, +0 equals -0, otherwise ECMAScript SameValueZero
// generalized structurally to arrays and objects.
func SameValueZero(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !SameValueZero(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		match := true
		a.obj.Each(func(k string, av Value) bool {
			bv, ok := b.obj.Get(k)
			if !ok || !SameValueZero(av, bv) {
				match = false
				return false
			}
			return true
		})
		return match
	default:
		return false
	}
}

// Stringify converts v to a string the way an object-key lookup on a bound
// scalar must (spec.md §9 Open Question: "$x used as an object key when
// bound to a non-string"). Tendril resolves the ambiguity by stringifying
// non-string scalars using the same textual form String() produces for
// scalars, and rejecting arrays/objects (they cannot be object keys).
func Stringify(v Value) (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64), true
	case KindBool:
		if v.b {
			return "true", true
		}
		return "false", true
	case KindNull:
		return "null", true
	default:
		return "", false
	}
}
