package engine

import (
	"testing"

	"github.com/tendril-lang/tendril/hooks"
	"github.com/tendril-lang/tendril/lexer"
	"github.com/tendril-lang/tendril/parser"
	"github.com/tendril-lang/tendril/value"
)

// Fixed corpus of patterns and a matching document, used to keep the
// step-budget and backtracking cost model (spec.md §4.6, §9) honest
// over time, in the teacher's own parser/benchmark_test.go style: plain
// testing.B, no third-party benchmark framework (SPEC_FULL.md §12.3).
const benchPatternSimple = `{name:$n size:$s}`
const benchPatternGreedy = `[$a#{1,} "sep" $b#{1,}]`
const benchPatternFlow = `{$k: _number -> %nums else _string -> %strs}`

const benchDocJSON = `{"name":"Earth","size":6371,"extra":[1,2,3,4,5,"sep",6,7,8]}`

func BenchmarkLexerSimple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := lexer.Tokenize(benchPatternSimple); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseSimple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := parser.Parse(benchPatternSimple, hooks.NoopParserHooks{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseGreedy(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := parser.Parse(benchPatternGreedy, hooks.NoopParserHooks{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMatchSimple(b *testing.B) {
	pattern, err := parser.Parse(benchPatternSimple, hooks.NoopParserHooks{})
	if err != nil {
		b.Fatal(err)
	}
	root, err := value.FromJSONBytes([]byte(benchDocJSON))
	if err != nil {
		b.Fatal(err)
	}
	opts := Options{StepBudget: DefaultStepBudget}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Match(pattern, root, opts, func(*Solution) bool { return true })
	}
}

func BenchmarkMatchFlow(b *testing.B) {
	pattern, err := parser.Parse(benchPatternFlow, hooks.NoopParserHooks{})
	if err != nil {
		b.Fatal(err)
	}
	root, err := value.FromJSONBytes([]byte(`{"a":1,"b":2,"c":3,"d":4}`))
	if err != nil {
		b.Fatal(err)
	}
	opts := Options{StepBudget: DefaultStepBudget}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Match(pattern, root, opts, func(*Solution) bool { return true })
	}
}

func BenchmarkScanNested(b *testing.B) {
	pattern, err := parser.Parse(`@{size:$s}`, hooks.NoopParserHooks{})
	if err != nil {
		b.Fatal(err)
	}
	root, err := value.FromJSONBytes([]byte(`{"planets":{"Earth":{"size":6371},"Mars":{"size":3390}}}`))
	if err != nil {
		b.Fatal(err)
	}
	opts := Options{StepBudget: DefaultStepBudget}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Scan(pattern, root, opts, func(*Solution) bool { return true })
	}
}
