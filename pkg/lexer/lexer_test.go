package lexer

import (
	"fmt"
	"testing"

	"its-hmny.dev/minic64/pkg/token"
)

func lexString(t *testing.T, src string) []*token.Token {
	t.Helper()
	lx, err := NewBasicLexer()
	if err != nil {
		t.Fatalf("NewBasicLexer: %s", err)
	}
	toks, err := lx.Lex([]byte(src), "test.mc")
	if err != nil {
		t.Fatalf("Lex(%q): %s", src, err)
	}
	return toks
}

func values(toks []*token.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Value
	}
	return out
}

func TestLexRoundTripKeywordsAndNames(t *testing.T) {
	toks := lexString(t, "var x i32 = 42;\n")
	want := []string{"var", "x", "i32", "=", "42", ";"}
	got := values(toks)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[0].Kind != token.Keyword {
		t.Errorf("expected 'var' to be Keyword, got %s", toks[0].Kind)
	}
	if toks[2].Kind != token.Type {
		t.Errorf("expected 'i32' to be Type, got %s", toks[2].Kind)
	}
}

func TestLexMaximalMunchOperators(t *testing.T) {
	toks := lexString(t, "a != b;\n")
	want := []string{"a", "!=", "b", ";"}
	if got := values(toks); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// "a<<b" must tokenize as the single '<<' operator, not two '<' operators.
	toks = lexString(t, "a<<b;\n")
	want = []string{"a", "<<", "b", ";"}
	if got := values(toks); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("maximal munch failed: got %v, want %v", got, want)
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks := lexString(t, `var s = "line\n\ttab\x41";` + "\n")
	var str *token.Token
	for _, tok := range toks {
		if tok.Kind == token.Str {
			str = tok
		}
	}
	if str == nil {
		t.Fatalf("no string token produced")
	}
	want := "line\n\ttabA"
	if str.Value != want {
		t.Fatalf("got %q, want %q", str.Value, want)
	}
}

func TestLexSingleAndMultiLineComments(t *testing.T) {
	toks := lexString(t, "var x i32; // trailing comment\nvar y i32;\n")
	if len(toks) != 8 {
		t.Fatalf("expected 8 tokens (comment dropped), got %d: %v", len(toks), values(toks))
	}

	toks = lexString(t, "var x /* spans\nmultiple\nlines */ i32;\n")
	want := []string{"var", "x", "i32", ";"}
	if got := values(toks); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexIsOneShot(t *testing.T) {
	lx, err := NewBasicLexer()
	if err != nil {
		t.Fatalf("NewBasicLexer: %s", err)
	}
	if _, err := lx.Lex([]byte("var x i32;\n"), "a.mc"); err != nil {
		t.Fatalf("first Lex: %s", err)
	}
	if _, err := lx.Lex([]byte("var y i32;\n"), "a.mc"); err == nil {
		t.Fatalf("expected second Lex call on the same Lexer to fail")
	}
}

// stubImporter lets #IMPORT be exercised without touching the real
// filesystem: it serves canned file contents keyed by the requested path.
type stubImporter struct{ files map[string]string }

func (s stubImporter) Import(fromFile, path string) (string, []byte, error) {
	content, ok := s.files[path]
	if !ok {
		return "", nil, fmt.Errorf("no such file %q", path)
	}
	return path, []byte(content), nil
}

func TestLexImportSplicesTokensWithAnchor(t *testing.T) {
	imp := stubImporter{files: map[string]string{
		"lib.mc": "var imported i32;\n",
	}}
	lx, err := newBasicLexer(nil, imp)
	if err != nil {
		t.Fatalf("newBasicLexer: %s", err)
	}

	toks, err := lx.Lex([]byte("#IMPORT \"lib.mc\"\nvar x i32;\n"), "main.mc")
	if err != nil {
		t.Fatalf("Lex: %s", err)
	}

	want := []string{"var", "imported", "i32", ";", "var", "x", "i32", ";"}
	if got := values(toks); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[0].Parent == nil {
		t.Fatalf("expected imported token to carry a Parent anchor")
	}
	if toks[0].Parent.Value != "lib.mc" {
		t.Fatalf("expected anchor value 'lib.mc', got %q", toks[0].Parent.Value)
	}
	if toks[4].Parent != nil {
		t.Fatalf("expected top-level token to have no Parent anchor, got %v", toks[4].Parent)
	}
}

func TestLexImportDepthExceeded(t *testing.T) {
	imp := stubImporter{files: map[string]string{}}
	for i := 0; i <= token.MaxImportDepth+1; i++ {
		self := fmt.Sprintf("lib%d.mc", i)
		next := fmt.Sprintf("lib%d.mc", i+1)
		imp.files[self] = fmt.Sprintf("#IMPORT \"%s\"\n", next)
	}
	imp.files[fmt.Sprintf("lib%d.mc", token.MaxImportDepth+2)] = "var x i32;\n"

	lx, err := newBasicLexer(nil, imp)
	if err != nil {
		t.Fatalf("newBasicLexer: %s", err)
	}

	_, err = lx.Lex([]byte("#IMPORT \"lib0.mc\"\n"), "main.mc")
	if err == nil {
		t.Fatalf("expected import chain depth error")
	}
}

func TestLexRejectsUnimplementedDirectives(t *testing.T) {
	for _, directive := range []string{"#DEFINE FOO", "#UNDEFINE FOO", "#IFDEF FOO", "#ENDIF"} {
		lx, err := NewBasicLexer()
		if err != nil {
			t.Fatalf("NewBasicLexer: %s", err)
		}
		if _, err := lx.Lex([]byte(directive+"\n"), "test.mc"); err == nil {
			t.Errorf("expected %q to be rejected", directive)
		}
	}
}
