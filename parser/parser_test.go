package parser

import (
	"testing"

	"github.com/tendril-lang/tendril/ast"
)

func mustParse(t *testing.T, src string) *ast.Pattern {
	t.Helper()
	pat, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return pat
}

func mustFail(t *testing.T, src string) *ParseError {
	t.Helper()
	_, err := Parse(src, nil)
	if err == nil {
		t.Fatalf("Parse(%q): expected an error, got none", src)
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("Parse(%q): error %v is not a *ParseError", src, err)
	}
	return pe
}

func TestLiteralsAndWildcards(t *testing.T) {
	cases := []struct {
		src  string
		kind ast.LiteralKind
	}{
		{`1`, ast.LitNumber},
		{`-3.5`, ast.LitNumber},
		{`true`, ast.LitBool},
		{`false`, ast.LitBool},
		{`null`, ast.LitNull},
		{`"hi"`, ast.LitString},
		{`'hi'`, ast.LitString},
		{`bareword`, ast.LitString},
	}
	for _, c := range cases {
		pat := mustParse(t, c.src)
		lit, ok := pat.Root.(*ast.Literal)
		if !ok {
			t.Fatalf("%q: root is %T, want *ast.Literal", c.src, pat.Root)
		}
		if lit.Kind != c.kind {
			t.Errorf("%q: Kind = %v, want %v", c.src, lit.Kind, c.kind)
		}
	}
}

func TestTypedWildcards(t *testing.T) {
	cases := []struct {
		src  string
		kind ast.WildcardKind
	}{
		{`_`, ast.WildAny},
		{`_string`, ast.WildString},
		{`_number`, ast.WildNumber},
		{`_boolean`, ast.WildBoolean},
	}
	for _, c := range cases {
		pat := mustParse(t, c.src)
		w, ok := pat.Root.(*ast.TypedWildcard)
		if !ok {
			t.Fatalf("%q: root is %T, want *ast.TypedWildcard", c.src, pat.Root)
		}
		if w.Kind != c.kind {
			t.Errorf("%q: Kind = %v, want %v", c.src, w.Kind, c.kind)
		}
	}
}

func TestRegexLiteral(t *testing.T) {
	pat := mustParse(t, `/a.*/i`)
	lit, ok := pat.Root.(*ast.Literal)
	if !ok || lit.Kind != ast.LitRegex {
		t.Fatalf("root = %#v, want regex literal", pat.Root)
	}
	if lit.RegexPattern != "a.*" {
		t.Errorf("RegexPattern = %q, want %q", lit.RegexPattern, "a.*")
	}
	if lit.RegexFlags != "i" {
		t.Errorf("RegexFlags = %q, want %q", lit.RegexFlags, "i")
	}
}

// TestArrayWhitespaceSeparated grounds spec.md §8 scenario 2: `[1 2 $x]`.
func TestArrayWhitespaceSeparated(t *testing.T) {
	pat := mustParse(t, `[1 2 $x]`)
	arr, ok := pat.Root.(*ast.Array)
	if !ok {
		t.Fatalf("root is %T, want *ast.Array", pat.Root)
	}
	if len(arr.Body.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(arr.Body.Items))
	}
	if _, ok := arr.Body.Items[0].(*ast.Literal); !ok {
		t.Errorf("Items[0] = %T, want *ast.Literal", arr.Body.Items[0])
	}
	bind, ok := arr.Body.Items[2].(*ast.ScalarBind)
	if !ok {
		t.Fatalf("Items[2] = %T, want *ast.ScalarBind", arr.Body.Items[2])
	}
	if bind.Name != "x" {
		t.Errorf("Items[2].Name = %q, want %q", bind.Name, "x")
	}
}

// TestObjectFieldClausesWhitespaceSeparated grounds spec.md §8 scenario 1.
func TestObjectFieldClausesWhitespaceSeparated(t *testing.T) {
	pat := mustParse(t, `{planets.$name.size:$size  aka[$i][0]:$name  aka[$i][_]:$alias}`)
	obj, ok := pat.Root.(*ast.Object)
	if !ok {
		t.Fatalf("root is %T, want *ast.Object", pat.Root)
	}
	if len(obj.Terms) != 3 {
		t.Fatalf("len(Terms) = %d, want 3", len(obj.Terms))
	}

	fc0 := obj.Terms[0]
	if _, ok := fc0.Key.(*ast.Literal); !ok {
		t.Fatalf("Terms[0].Key = %T, want *ast.Literal", fc0.Key)
	}
	if len(fc0.Breadcrumbs) != 2 || fc0.Breadcrumbs[0].Kind != ast.DotKey || fc0.Breadcrumbs[1].Kind != ast.DotKey {
		t.Fatalf("Terms[0].Breadcrumbs = %#v, want two DotKey steps (.$name, .size)", fc0.Breadcrumbs)
	}
	if nameBind, ok := fc0.Breadcrumbs[0].Key.(*ast.ScalarBind); !ok || nameBind.Name != "name" {
		t.Fatalf("Terms[0].Breadcrumbs[0].Key = %#v, want $name binding", fc0.Breadcrumbs[0].Key)
	}
	if sizeLit, ok := fc0.Breadcrumbs[1].Key.(*ast.Literal); !ok || sizeLit.Str != "size" {
		t.Fatalf("Terms[0].Breadcrumbs[1].Key = %#v, want literal \"size\"", fc0.Breadcrumbs[1].Key)
	}
	if sb, ok := fc0.Value.(*ast.ScalarBind); !ok || sb.Name != "size" {
		t.Fatalf("Terms[0].Value = %#v, want $size binding", fc0.Value)
	}

	fc1 := obj.Terms[1]
	if len(fc1.Breadcrumbs) != 2 {
		t.Fatalf("Terms[1].Breadcrumbs = %#v, want 2 steps", fc1.Breadcrumbs)
	}
	if fc1.Breadcrumbs[0].Kind != ast.IndexKey || fc1.Breadcrumbs[0].Index != -1 {
		t.Errorf("Terms[1].Breadcrumbs[0] = %#v, want a key-pattern IndexKey", fc1.Breadcrumbs[0])
	}
	if fc1.Breadcrumbs[1].Kind != ast.IndexKey || fc1.Breadcrumbs[1].Index != 0 {
		t.Errorf("Terms[1].Breadcrumbs[1] = %#v, want IndexKey(0)", fc1.Breadcrumbs[1])
	}

	fc2 := obj.Terms[2]
	if fc2.Breadcrumbs[1].Kind != ast.IndexKey || fc2.Breadcrumbs[1].Index != -1 {
		t.Errorf("Terms[2].Breadcrumbs[1] = %#v, want a key-pattern IndexKey ([_])", fc2.Breadcrumbs[1])
	}
}

// TestStrongFieldClause grounds spec.md §8 scenario 3: `{ /a.*/: 1 else ! }`.
func TestStrongFieldClause(t *testing.T) {
	pat := mustParse(t, `{ /a.*/: 1 else ! }`)
	obj := pat.Root.(*ast.Object)
	fc := obj.Terms[0]
	if !fc.Strong {
		t.Fatal("Strong = false, want true")
	}
	if fc.Flow != nil {
		t.Fatalf("Flow = %#v, want nil", fc.Flow)
	}
	if _, ok := fc.Value.(*ast.Literal); !ok {
		t.Fatalf("Value = %T, want *ast.Literal", fc.Value)
	}
}

// TestFlowClause grounds spec.md §8 scenario 4.
func TestFlowClause(t *testing.T) {
	pat := mustParse(t, `{ $k: 1 -> %ones else 2 -> %twos }`)
	obj := pat.Root.(*ast.Object)
	fc := obj.Terms[0]
	if fc.Value != nil {
		t.Fatalf("Value = %#v, want nil (flow present)", fc.Value)
	}
	if fc.Flow == nil || len(fc.Flow.Arms) != 2 {
		t.Fatalf("Flow = %#v, want 2 arms", fc.Flow)
	}
	if fc.Flow.Arms[0].Bucket.Name != "ones" || fc.Flow.Arms[1].Bucket.Name != "twos" {
		t.Errorf("Flow.Arms bucket names = %q, %q", fc.Flow.Arms[0].Bucket.Name, fc.Flow.Arms[1].Bucket.Name)
	}
	if fc.Flow.Strong {
		t.Error("Flow.Strong = true, want false (no trailing else !)")
	}
}

func TestFlowClauseWithStrongTerminator(t *testing.T) {
	pat := mustParse(t, `{ $k: 1 -> %ones else ! }`)
	obj := pat.Root.(*ast.Object)
	fc := obj.Terms[0]
	if fc.Flow == nil || !fc.Flow.Strong {
		t.Fatalf("Flow = %#v, want Strong = true", fc.Flow)
	}
	if len(fc.Flow.Arms) != 1 {
		t.Fatalf("len(Flow.Arms) = %d, want 1", len(fc.Flow.Arms))
	}
}

// TestScalarBindWithGuard grounds spec.md §8 scenario 5.
func TestScalarBindWithGuard(t *testing.T) {
	pat := mustParse(t, `(_number as $n where $n > 0 && $n % 2 == 0)`)
	bind, ok := pat.Root.(*ast.ScalarBind)
	if !ok {
		t.Fatalf("root is %T, want *ast.ScalarBind", pat.Root)
	}
	if bind.Name != "n" {
		t.Errorf("Name = %q, want %q", bind.Name, "n")
	}
	if _, ok := bind.Inner.(*ast.TypedWildcard); !ok {
		t.Fatalf("Inner = %T, want *ast.TypedWildcard", bind.Inner)
	}
	if bind.Guard == nil {
		t.Fatal("Guard = nil, want an expression")
	}
	top, ok := bind.Guard.(*ast.ExprBinary)
	if !ok || top.Op != ast.OpAnd {
		t.Fatalf("Guard top = %#v, want && at the top", bind.Guard)
	}
	left, ok := top.Left.(*ast.ExprBinary)
	if !ok || left.Op != ast.OpGt {
		t.Fatalf("Guard.Left = %#v, want > comparison", top.Left)
	}
	right, ok := top.Right.(*ast.ExprBinary)
	if !ok || right.Op != ast.OpEq {
		t.Fatalf("Guard.Right = %#v, want == comparison", top.Right)
	}
	mod, ok := right.Left.(*ast.ExprBinary)
	if !ok || mod.Op != ast.OpMod {
		t.Fatalf("Guard.Right.Left = %#v, want %% comparison", right.Left)
	}
}

// TestBareGroupBackreference grounds spec.md §8 scenario 6: `[@x @x]`.
func TestBareGroupBackreference(t *testing.T) {
	pat := mustParse(t, `[@x @x]`)
	arr := pat.Root.(*ast.Array)
	if len(arr.Body.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(arr.Body.Items))
	}
	for i, it := range arr.Body.Items {
		gb, ok := it.(*ast.GroupBind)
		if !ok {
			t.Fatalf("Items[%d] = %T, want *ast.GroupBind", i, it)
		}
		if gb.Name != "x" || gb.Sigil != ast.SigilAt {
			t.Errorf("Items[%d] = %#v, want @x", i, gb)
		}
		seq, ok := gb.Inner.(*ast.Seq)
		if !ok || len(seq.Items) != 1 {
			t.Fatalf("Items[%d].Inner = %#v, want a one-item Seq", i, gb.Inner)
		}
		q, ok := seq.Items[0].(*ast.Quantified)
		if !ok || q.Min != 0 || q.Max != ast.Unbounded || q.Mode != ast.Greedy {
			t.Fatalf("Items[%d].Inner quantifier = %#v, want greedy 0..unbounded", i, seq.Items[0])
		}
	}
}

func TestExplicitGroupBind(t *testing.T) {
	pat := mustParse(t, `((1 2) as @pair)`)
	gb, ok := pat.Root.(*ast.GroupBind)
	if !ok {
		t.Fatalf("root is %T, want *ast.GroupBind", pat.Root)
	}
	if gb.Name != "pair" || gb.Sigil != ast.SigilAt {
		t.Fatalf("gb = %#v", gb)
	}
	seq, ok := gb.Inner.(*ast.Seq)
	if !ok || len(seq.Items) != 2 {
		t.Fatalf("Inner = %#v, want a two-item Seq", gb.Inner)
	}
}

func TestQuantifierSuffixes(t *testing.T) {
	cases := []struct {
		src  string
		min  int
		max  int
		mode ast.QuantMode
	}{
		{`[1*]`, 0, ast.Unbounded, ast.Greedy},
		{`[1*?]`, 0, ast.Unbounded, ast.Lazy},
		{`[1*+]`, 0, ast.Unbounded, ast.Possessive},
		{`[1+]`, 1, ast.Unbounded, ast.Greedy},
		{`[1+?]`, 1, ast.Unbounded, ast.Lazy},
		{`[1++]`, 1, ast.Unbounded, ast.Possessive},
		{`[1?]`, 0, 1, ast.Greedy},
		{`[1??]`, 0, 1, ast.Lazy},
		{`[1?+]`, 0, 1, ast.Possessive},
		{`[1#{2,4}]`, 2, 4, ast.Greedy},
		{`[1#{2,4}?]`, 2, 4, ast.Lazy},
		{`[1#{2,4}+]`, 2, 4, ast.Possessive},
		{`[1#{3}]`, 3, 3, ast.Greedy},
		{`[1#{3,}]`, 3, ast.Unbounded, ast.Greedy},
	}
	for _, c := range cases {
		pat := mustParse(t, c.src)
		arr := pat.Root.(*ast.Array)
		q, ok := arr.Body.Items[0].(*ast.Quantified)
		if !ok {
			t.Fatalf("%q: Items[0] = %T, want *ast.Quantified", c.src, arr.Body.Items[0])
		}
		if q.Min != c.min || q.Max != c.max || q.Mode != c.mode {
			t.Errorf("%q: got {%d,%d,%v}, want {%d,%d,%v}", c.src, q.Min, q.Max, q.Mode, c.min, c.max, c.mode)
		}
	}
}

func TestDotDotDesugarsToLazyAnyStar(t *testing.T) {
	pat := mustParse(t, `[1 .. 2]`)
	arr := pat.Root.(*ast.Array)
	q, ok := arr.Body.Items[1].(*ast.Quantified)
	if !ok {
		t.Fatalf("Items[1] = %T, want *ast.Quantified", arr.Body.Items[1])
	}
	if q.Min != 0 || q.Max != ast.Unbounded || q.Mode != ast.Lazy {
		t.Errorf("got {%d,%d,%v}, want {0,unbounded,lazy}", q.Min, q.Max, q.Mode)
	}
	if _, ok := q.Inner.(*ast.TypedWildcard); !ok {
		t.Errorf("Inner = %T, want *ast.TypedWildcard", q.Inner)
	}
}

func TestLookahead(t *testing.T) {
	pat := mustParse(t, `[(? 1) 2]`)
	arr := pat.Root.(*ast.Array)
	la, ok := arr.Body.Items[0].(*ast.Lookahead)
	if !ok {
		t.Fatalf("Items[0] = %T, want *ast.Lookahead", arr.Body.Items[0])
	}
	if la.Sign != ast.Positive {
		t.Errorf("Sign = %v, want Positive", la.Sign)
	}

	pat = mustParse(t, `[(! 1) 2]`)
	arr = pat.Root.(*ast.Array)
	la, ok = arr.Body.Items[0].(*ast.Lookahead)
	if !ok || la.Sign != ast.Negative {
		t.Fatalf("got %#v, want a negative lookahead", arr.Body.Items[0])
	}
}

func TestAlternationAnyOfAndElse(t *testing.T) {
	pat := mustParse(t, `1 | 2 | 3`)
	alt, ok := pat.Root.(*ast.Alt)
	if !ok || alt.Kind != ast.AnyOf || len(alt.Branches) != 3 {
		t.Fatalf("got %#v, want a 3-branch AnyOf alt", pat.Root)
	}

	pat = mustParse(t, `1 else 2 else 3`)
	alt, ok = pat.Root.(*ast.Alt)
	if !ok || alt.Kind != ast.Else || len(alt.Branches) != 3 {
		t.Fatalf("got %#v, want a 3-branch Else alt", pat.Root)
	}
}

func TestMixedSeparatorRejected(t *testing.T) {
	mustFail(t, `1 | 2 else 3`)
}

func TestNameSigilCollisionRejected(t *testing.T) {
	pe := mustFail(t, `[1 as $x 2 as @x]`)
	if pe.Kind != SemanticError {
		t.Errorf("Kind = %v, want SemanticError", pe.Kind)
	}
}

func TestLabeledArrayAndFlowLabelReference(t *testing.T) {
	pat := mustParse(t, `§outer[ {$k: 1 -> %b<^outer>} ]`)
	arr, ok := pat.Root.(*ast.Array)
	if !ok || arr.Label != "outer" {
		t.Fatalf("root = %#v, want a §outer-labeled array", pat.Root)
	}
}

func TestFlowLabelUnresolvedIsSemanticError(t *testing.T) {
	pe := mustFail(t, `[{$k: 1 -> %b<^nope>}]`)
	if pe.Kind != SemanticError {
		t.Errorf("Kind = %v, want SemanticError", pe.Kind)
	}
}

func TestRemainderBareAssertion(t *testing.T) {
	pat := mustParse(t, `{a: 1  %}`)
	obj := pat.Root.(*ast.Object)
	if obj.Remainder == nil || !obj.Remainder.Assertion || obj.Remainder.Bind != "" {
		t.Fatalf("Remainder = %#v, want a bare non-empty assertion", obj.Remainder)
	}
}

func TestRemainderClosed(t *testing.T) {
	pat := mustParse(t, `{a: 1  (! %)}`)
	obj := pat.Root.(*ast.Object)
	if obj.Remainder == nil || obj.Remainder.Quant == nil || obj.Remainder.Quant.Min != 0 || obj.Remainder.Quant.Max != 0 {
		t.Fatalf("Remainder = %#v, want a closed (0,0) assertion", obj.Remainder)
	}
}

func TestRemainderCardinality(t *testing.T) {
	pat := mustParse(t, `{a: 1  %#{1,3}}`)
	obj := pat.Root.(*ast.Object)
	if obj.Remainder == nil || obj.Remainder.Quant == nil || obj.Remainder.Quant.Min != 1 || obj.Remainder.Quant.Max != 3 {
		t.Fatalf("Remainder = %#v, want {1,3}", obj.Remainder)
	}
}

func TestRemainderBound(t *testing.T) {
	pat := mustParse(t, `{a: 1  (% as %rest #{1,2})}`)
	obj := pat.Root.(*ast.Object)
	if obj.Remainder == nil || obj.Remainder.Bind != "rest" || obj.Remainder.Sigil != ast.SigilPercent {
		t.Fatalf("Remainder = %#v, want bound to %%rest", obj.Remainder)
	}
	if obj.Remainder.Quant == nil || obj.Remainder.Quant.Min != 1 || obj.Remainder.Quant.Max != 2 {
		t.Fatalf("Remainder.Quant = %#v, want {1,2}", obj.Remainder.Quant)
	}
}

func TestRemainderMustBeLastClause(t *testing.T) {
	mustFail(t, `{a: 1  (! %)  b: 2}`)
}

func TestBareGroupKeyIsNotMistakenForRemainder(t *testing.T) {
	pat := mustParse(t, `{%bucket: 1}`)
	obj := pat.Root.(*ast.Object)
	if obj.Remainder != nil {
		t.Fatalf("Remainder = %#v, want nil (bare %% was a field key)", obj.Remainder)
	}
	if len(obj.Terms) != 1 {
		t.Fatalf("len(Terms) = %d, want 1", len(obj.Terms))
	}
	if _, ok := obj.Terms[0].Key.(*ast.GroupBind); !ok {
		t.Fatalf("Terms[0].Key = %T, want *ast.GroupBind", obj.Terms[0].Key)
	}
}

func TestOptionalFieldClause(t *testing.T) {
	pat := mustParse(t, `{a?:1}`)
	obj := pat.Root.(*ast.Object)
	if !obj.Terms[0].Optional {
		t.Fatal("Optional = false, want true")
	}
}

// ** is a self-delimiting breadcrumb operator, a peer of `.` and `[]`
// (spec.md §4.2 precedence list: "breadcrumb operators (., **, [])"),
// so it needs no leading `.`: `a**.b` means "descend through a, skip
// any depth, then take .b", not `a.**.b`.
func TestSkipAnyBreadcrumb(t *testing.T) {
	pat := mustParse(t, `{a**.b:1}`)
	obj := pat.Root.(*ast.Object)
	bc := obj.Terms[0].Breadcrumbs
	if len(bc) != 2 || bc[0].Kind != ast.SkipAny || bc[1].Kind != ast.DotKey {
		t.Fatalf("Breadcrumbs = %#v, want [SkipAny, DotKey]", bc)
	}
	if !bc[0].OptionalKey {
		t.Error("OptionalKey = false, want true (next breadcrumb connects via its own operator)")
	}

	pat = mustParse(t, `{a**size:1}`)
	obj = pat.Root.(*ast.Object)
	bc = obj.Terms[0].Breadcrumbs
	if len(bc) != 1 || bc[0].OptionalKey {
		t.Fatalf("Breadcrumbs = %#v, want a single non-optional SkipAny with an inline key", bc)
	}
	if lit, ok := bc[0].Key.(*ast.Literal); !ok || lit.Str != "size" {
		t.Fatalf("Breadcrumbs[0].Key = %#v, want literal \"size\"", bc[0].Key)
	}

	pat = mustParse(t, `{a**:1}`)
	obj = pat.Root.(*ast.Object)
	bc = obj.Terms[0].Breadcrumbs
	if len(bc) != 1 || !bc[0].OptionalKey {
		t.Fatalf("Breadcrumbs = %#v, want a bare optional-key SkipAny", bc)
	}
}

func TestTopLevelSlicePatterns(t *testing.T) {
	pat := mustParse(t, `@{a: 1}`)
	if pat.Anchored {
		t.Error("Anchored = true, want false for a slice pattern")
	}
	if _, ok := pat.Root.(*ast.Slice); !ok {
		t.Fatalf("root = %T, want *ast.Slice", pat.Root)
	}

	pat = mustParse(t, `[1 2 3]`)
	if !pat.Anchored {
		t.Error("Anchored = false, want true for a plain array pattern")
	}
}

func TestGuardFunctions(t *testing.T) {
	pat := mustParse(t, `(_ as $v where size($v) > 0)`)
	bind := pat.Root.(*ast.ScalarBind)
	call, ok := bind.Guard.(*ast.ExprBinary)
	if !ok {
		t.Fatalf("Guard = %T, want *ast.ExprBinary", bind.Guard)
	}
	fn, ok := call.Left.(*ast.ExprCall)
	if !ok || fn.Func != ast.FuncSize {
		t.Fatalf("Guard.Left = %#v, want a size(...) call", call.Left)
	}
}

func TestTrailingInputRejected(t *testing.T) {
	mustFail(t, `1 2`)
}

func TestUnterminatedObjectRejected(t *testing.T) {
	mustFail(t, `{a: 1`)
}
