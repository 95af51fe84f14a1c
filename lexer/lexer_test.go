package lexer

import (
	"testing"

	"github.com/tendril-lang/tendril/token"
)

func tokenTypes(t *testing.T, input string) []token.Type {
	t.Helper()
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", input, err)
	}
	types := make([]token.Type, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	return types
}

func TestNextTokenPunctuation(t *testing.T) {
	input := `{ } [ ] ( ) : , . .. ... ** ?: ?= ?! *? *+ +? ++ ?? ?+ -> #{ <^`
	want := []token.Type{
		token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET,
		token.LPAREN, token.RPAREN, token.COLON, token.COMMA,
		token.DOT, token.DOTDOT, token.ELLIPSIS, token.STARSTAR,
		token.QCOLON, token.QEQ, token.QBANG, token.STARQ, token.STARPLUS,
		token.PLUSQ, token.PLUSPLUS, token.QQ, token.QPLUS, token.ARROW,
		token.HASHBRACE, token.LANGLECARET, token.EOF,
	}
	got := tokenTypes(t, input)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNextTokenGuardOperators(t *testing.T) {
	input := `< <= > >= == != && ||`
	want := []token.Type{
		token.LT, token.LE, token.GT, token.GE, token.EQEQ, token.NOTEQ,
		token.ANDAND, token.OROR, token.EOF,
	}
	got := tokenTypes(t, input)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNextTokenKeywordsAndWildcards(t *testing.T) {
	input := `true false null else as where remainder _string _number _boolean foo`
	want := []token.Type{
		token.TRUE, token.FALSE, token.NULL, token.ELSE, token.AS, token.WHERE,
		token.REMAINDER, token.STRING_WILD, token.NUMBER_WILD, token.BOOL_WILD,
		token.IDENT, token.EOF,
	}
	got := tokenTypes(t, input)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNextTokenNumbers(t *testing.T) {
	toks, err := Tokenize(`42 3.14 0`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"42", "3.14", "0"}
	for i, w := range want {
		if toks[i].Literal != w {
			t.Errorf("token[%d].Literal = %q, want %q", i, toks[i].Literal, w)
		}
	}
}

func TestNextTokenStrings(t *testing.T) {
	toks, err := Tokenize(`"hello\nworld" 'single\t' "A" "\u{1F600}"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"hello\nworld", "single\t", "A", "\U0001F600"}
	for i, w := range want {
		if toks[i].Literal != w {
			t.Errorf("token[%d].Literal = %q, want %q", i, toks[i].Literal, w)
		}
	}
}

func TestNextTokenCaseInsensitiveSuffix(t *testing.T) {
	toks, err := Tokenize(`"Foo"/i bareword/i`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if !toks[0].CaseInsensitive {
		t.Errorf("expected string literal to be case-insensitive")
	}
	if toks[0].Literal != "Foo" {
		t.Errorf("literal corrupted by /i suffix: %q", toks[0].Literal)
	}
	if !toks[1].CaseInsensitive {
		t.Errorf("expected bareword to be case-insensitive")
	}
}

func TestNextTokenRegex(t *testing.T) {
	toks, err := Tokenize(`/a.*b/i /[a/b]/`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Type != token.REGEX || toks[0].Literal != "/a.*b/i" {
		t.Errorf("unexpected regex token: %+v", toks[0])
	}
	if toks[1].Type != token.REGEX || toks[1].Literal != "/[a/b]/" {
		t.Errorf("expected char-class slash to not end literal: %+v", toks[1])
	}
}

func TestNextTokenRegexRejectsGYFlags(t *testing.T) {
	for _, input := range []string{"/x/g", "/x/y"} {
		if _, err := Tokenize(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestNextTokenRegexDisallowedBecomesSlash(t *testing.T) {
	l := New("5 / 2")
	l.SetRegexAllowed(false)
	var types []token.Type
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken: %v", err)
		}
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	want := []token.Type{token.NUMBER, token.SLASH, token.NUMBER, token.EOF}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, types[i], want[i])
		}
	}
}

func TestNextTokenComments(t *testing.T) {
	input := "1 // line comment\n/* block\ncomment */ 2"
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 3 { // NUMBER, NUMBER, EOF
		t.Fatalf("expected comments to be skipped, got %d tokens: %+v", len(toks), toks)
	}
}

func TestNextTokenUnterminatedBlockComment(t *testing.T) {
	if _, err := Tokenize("1 /* never closes"); err == nil {
		t.Fatalf("expected error for unterminated block comment")
	}
}

func TestNextTokenUnterminatedString(t *testing.T) {
	if _, err := Tokenize(`"abc`); err == nil {
		t.Fatalf("expected error for unterminated string")
	}
}

func TestNextTokenIllegalCharacter(t *testing.T) {
	if _, err := Tokenize("~"); err == nil {
		t.Fatalf("expected error for illegal character")
	}
}

func TestBookmarkRoundtrip(t *testing.T) {
	l := New("foo bar")
	first, err := l.NextToken()
	if err != nil {
		t.Fatalf("NextToken: %v", err)
	}
	mark := l.Mark()
	second, err := l.NextToken()
	if err != nil {
		t.Fatalf("NextToken: %v", err)
	}
	l.Reset(mark)
	secondAgain, err := l.NextToken()
	if err != nil {
		t.Fatalf("NextToken: %v", err)
	}
	if first.Literal != "foo" || second.Literal != "bar" || secondAgain.Literal != "bar" {
		t.Fatalf("bookmark reset did not reproduce the same token stream: %q %q %q", first.Literal, second.Literal, secondAgain.Literal)
	}
}
