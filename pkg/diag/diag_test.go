package diag_test

import (
	"strings"
	"testing"

	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/token"
)

func testToken(filename string, lines []string, line, col int) *token.Token {
	return &token.Token{
		Kind: token.Name, Value: "x", Line: line, Column: col,
		Source: &token.Source{Filename: filename, Lines: lines},
	}
}

func TestRenderSingleSite(t *testing.T) {
	tok := testToken("main.mc", []string{"var i32 x\n", "x = 5\n"}, 1, 0)
	d := diag.New(diag.TypeError, tok, "unknown name '%s'", "x")

	out := d.Render()
	if !strings.Contains(out, "(TypeError): unknown name 'x'") {
		t.Errorf("expected banner line, got: %s", out)
	}
	if !strings.Contains(out, "in main.mc:2") {
		t.Errorf("expected file:line reference, got: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("expected caret in output, got: %s", out)
	}
}

func TestRenderImportChain(t *testing.T) {
	outerSrc := &token.Source{Filename: "a.mc", Lines: []string{"#IMPORT \"b.mc\"\n"}}
	anchor := &token.Token{Kind: token.Anchor, Value: "anchor", Line: 0, Column: 0, Source: outerSrc}

	innerSrc := &token.Source{Filename: "b.mc", Lines: []string{"bogus !!\n"}}
	tok := &token.Token{Kind: token.Operator, Value: "!!", Line: 0, Column: 6, Source: innerSrc, Parent: anchor, Depth: 1}

	d := diag.New(diag.LexError, tok, "unexpected byte")
	out := d.Render()

	if !strings.Contains(out, "in b.mc:1") {
		t.Errorf("expected error site in b.mc, got: %s", out)
	}
	if !strings.Contains(out, "imported from:") {
		t.Errorf("expected import chain trace, got: %s", out)
	}
	if !strings.Contains(out, "in a.mc:1") {
		t.Errorf("expected import site in a.mc, got: %s", out)
	}
}

func TestWithRelated(t *testing.T) {
	open := testToken("f.mc", []string{"( a, b ]\n"}, 0, 0)
	closeTok := testToken("f.mc", []string{"( a, b ]\n"}, 0, 7)

	d := diag.New(diag.ParseError, closeTok, "mismatched closing bracket").WithRelated(open)
	out := d.Render()
	if !strings.Contains(out, "also see:") {
		t.Errorf("expected related site section, got: %s", out)
	}
}

func TestDepthExceeded(t *testing.T) {
	var parent *token.Token
	var lastErr error
	// Build a chain of MaxImportDepth+2 tokens; the last one has
	// Depth == MaxImportDepth+1, which must be rejected.
	for i := 0; i < token.MaxImportDepth+2; i++ {
		tok, err := token.NewToken(token.Anchor, "anchor", 0, 0, nil, parent)
		lastErr = err
		parent = tok
	}
	if lastErr == nil {
		t.Fatalf("expected depth-exceeded error once the chain passes %d", token.MaxImportDepth)
	}
	if parent.Depth != token.MaxImportDepth+1 {
		t.Fatalf("expected final depth %d, got %d", token.MaxImportDepth+1, parent.Depth)
	}
}
