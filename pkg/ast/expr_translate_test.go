package ast

import (
	"testing"

	"its-hmny.dev/minic64/pkg/reducer"
	"its-hmny.dev/minic64/pkg/token"
)

func tok(kind token.Kind, value string) *token.Token {
	t, err := token.NewToken(kind, value, 0, 0, nil, nil)
	if err != nil {
		panic(err)
	}
	return t
}

func translateExpr(t *testing.T, toks []*token.Token) Expression {
	t.Helper()
	out, err := reducer.Reduce(reducer.Root(toks), reducer.Pipeline())
	if err != nil {
		t.Fatalf("Reduce: %s", err)
	}
	expr, err := translateExprGroup(out)
	if err != nil {
		t.Fatalf("translateExprGroup: %s", err)
	}
	return expr
}

// TestMidSequenceRightUnary exercises spec.md §4.3's same-precedence chain
// case: 'a - -b' reduces to a single node with Tokens=[-,-] and the middle
// Groups entry empty, so the right-unary '-' must be recognized at token
// index 1, not just index 0.
func TestMidSequenceRightUnary(t *testing.T) {
	toks := []*token.Token{
		tok(token.Name, "a"), tok(token.Operator, "-"),
		tok(token.Operator, "-"), tok(token.Name, "b"),
	}
	expr := translateExpr(t, toks)

	bin, ok := expr.(*BinOp)
	if !ok {
		t.Fatalf("expected *BinOp, got %T", expr)
	}
	if bin.Op != "-" {
		t.Fatalf("expected top-level '-', got %q", bin.Op)
	}
	if _, ok := bin.LHS.(*Name); !ok {
		t.Fatalf("expected LHS to be *Name, got %T", bin.LHS)
	}
	rhs, ok := bin.RHS.(*UnaryOp)
	if !ok {
		t.Fatalf("expected RHS to be *UnaryOp (the right-unary '-' on 'b'), got %T", bin.RHS)
	}
	if rhs.Op != "-" || !rhs.Right {
		t.Fatalf("expected a right-unary '-', got op=%q right=%v", rhs.Op, rhs.Right)
	}
	if _, ok := rhs.Arg.(*Name); !ok {
		t.Fatalf("expected the unary operand to be *Name, got %T", rhs.Arg)
	}
}

// TestNestedRightUnaryChain exercises a deeper run: 'a - - -b' recurses
// through two nested right-unary layers before reaching 'b'.
func TestNestedRightUnaryChain(t *testing.T) {
	toks := []*token.Token{
		tok(token.Name, "a"), tok(token.Operator, "-"),
		tok(token.Operator, "-"), tok(token.Operator, "-"), tok(token.Name, "b"),
	}
	expr := translateExpr(t, toks)

	bin, ok := expr.(*BinOp)
	if !ok {
		t.Fatalf("expected *BinOp, got %T", expr)
	}
	outer, ok := bin.RHS.(*UnaryOp)
	if !ok {
		t.Fatalf("expected outer RHS to be *UnaryOp, got %T", bin.RHS)
	}
	inner, ok := outer.Arg.(*UnaryOp)
	if !ok {
		t.Fatalf("expected a second nested *UnaryOp, got %T", outer.Arg)
	}
	if _, ok := inner.Arg.(*Name); !ok {
		t.Fatalf("expected the innermost operand to be *Name, got %T", inner.Arg)
	}
}

// TestLeadingRightUnaryStillWorks guards the original case the old
// index-0-only check handled: '-a - b'.
func TestLeadingRightUnaryStillWorks(t *testing.T) {
	toks := []*token.Token{
		tok(token.Operator, "-"), tok(token.Name, "a"),
		tok(token.Operator, "-"), tok(token.Name, "b"),
	}
	expr := translateExpr(t, toks)

	bin, ok := expr.(*BinOp)
	if !ok {
		t.Fatalf("expected *BinOp, got %T", expr)
	}
	lhs, ok := bin.LHS.(*UnaryOp)
	if !ok {
		t.Fatalf("expected LHS to be *UnaryOp, got %T", bin.LHS)
	}
	if lhs.Op != "-" || !lhs.Right {
		t.Fatalf("expected a right-unary '-' on the LHS, got op=%q right=%v", lhs.Op, lhs.Right)
	}
}
