package value

import (
	"math"
	"testing"
)

func TestSameValueZero(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nan equals nan", Number(math.NaN()), Number(math.NaN()), true},
		{"zero equals neg zero", Number(0), Number(math.Copysign(0, -1)), true},
		{"numbers differ", Number(1), Number(2), false},
		{"strings equal", String("a"), String("a"), true},
		{"kind mismatch", String("1"), Number(1), false},
		{"bool mismatch", Bool(true), Bool(false), false},
		{"null equals null", Null(), Null(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameValueZero(tt.a, tt.b); got != tt.want {
				t.Errorf("SameValueZero(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSameValueZeroArraysAndObjects(t *testing.T) {
	a := Array([]Value{Number(1), String("x")})
	b := Array([]Value{Number(1), String("x")})
	if !SameValueZero(a, b) {
		t.Fatalf("expected equal arrays to be SameValueZero")
	}
	c := Array([]Value{Number(1), String("y")})
	if SameValueZero(a, c) {
		t.Fatalf("expected different arrays to not be SameValueZero")
	}

	o1 := NewObject()
	o1.Set("a", Number(1))
	o1.Set("b", Number(2))
	o2 := NewObject()
	o2.Set("b", Number(2))
	o2.Set("a", Number(1))
	if !SameValueZero(FromObject(o1), FromObject(o2)) {
		t.Fatalf("expected objects with same entries in different insertion order to be SameValueZero")
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("z", Number(1))
	o.Set("a", Number(2))
	o.Set("m", Number(3))
	got := o.Keys()
	want := []string{"z", "a", "m"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFromJSONPreservesOrder(t *testing.T) {
	v, err := FromJSONBytes([]byte(`{"z":1,"a":2,"nested":{"y":1,"x":2}}`))
	if err != nil {
		t.Fatalf("FromJSONBytes: %v", err)
	}
	if v.Kind() != KindObject {
		t.Fatalf("expected object, got %v", v.Kind())
	}
	keys := v.Object().Keys()
	if keys[0] != "z" || keys[1] != "a" {
		t.Fatalf("unexpected top-level key order: %v", keys)
	}
	nested, ok := v.Object().Get("nested")
	if !ok {
		t.Fatalf("expected nested key")
	}
	nk := nested.Object().Keys()
	if nk[0] != "y" || nk[1] != "x" {
		t.Fatalf("unexpected nested key order: %v", nk)
	}
}

func TestStringify(t *testing.T) {
	if s, ok := Stringify(String("hi")); !ok || s != "hi" {
		t.Errorf("Stringify(string) = %q, %v", s, ok)
	}
	if s, ok := Stringify(Number(3)); !ok || s != "3" {
		t.Errorf("Stringify(number) = %q, %v", s, ok)
	}
	if _, ok := Stringify(Array(nil)); ok {
		t.Errorf("Stringify(array) should fail")
	}
}

func TestPathString(t *testing.T) {
	p := Path{}.Child("planets").Child("Earth").Elem(0)
	if got, want := p.String(), ".planets.Earth[0]"; got != want {
		t.Errorf("Path.String() = %q, want %q", got, want)
	}
}

func TestGet(t *testing.T) {
	root, err := FromJSONBytes([]byte(`{"a":[1,2,{"b":"x"}]}`))
	if err != nil {
		t.Fatalf("FromJSONBytes: %v", err)
	}
	p := Path{}.Child("a").Elem(2).Child("b")
	got, ok := Get(root, p)
	if !ok {
		t.Fatalf("Get failed")
	}
	if got.Kind() != KindString || got.Str() != "x" {
		t.Errorf("Get = %v, want string x", got)
	}
}
