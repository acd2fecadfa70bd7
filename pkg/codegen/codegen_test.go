package codegen

import (
	"strings"
	"testing"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/token"
	"its-hmny.dev/minic64/pkg/types"
)

func tk(value string) *token.Token {
	t, err := token.NewToken(token.Name, value, 0, 0, nil, nil)
	if err != nil {
		panic(err)
	}
	return t
}

func number(name string) ast.Type { return ast.Number{Name: name} }

func numLit(literal string) ast.Expression {
	return &ast.Number{Literal: literal}
}

func newUnitWith(globals ...*ast.VarConst) *ast.Unit {
	u := ast.NewUnit()
	for _, g := range globals {
		u.Vars.Set(g.Ident, g)
		u.Names.Set(g.Ident, g)
		u.Globals = append(u.Globals, g)
	}
	return u
}

func mustBuildContext(t *testing.T, u *ast.Unit) *types.Context {
	t.Helper()
	ctx, err := types.BuildContext(u)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	return ctx
}

// var i32 x = 5; -> data section contains "x:" with ".long 5" and ".globl x".
func TestGlobalIntInitializer(t *testing.T) {
	x := &ast.VarConst{Tok: tk("x"), Mutable: true, Type: number("i32"), Ident: "x", Init: numLit("5")}
	u := newUnitWith(x)
	ctx := mustBuildContext(t, u)

	out, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "x:") || !strings.Contains(out, ".long\t5") || !strings.Contains(out, ".globl\tx") {
		t.Fatalf("expected a .long 5 global x, got:\n%s", out)
	}
}

// var double d = 1.5; -> emitted as the IEEE-754 bit pattern of 1.5 as a
// .quad (0x3FF8000000000000).
func TestGlobalDoubleInitializerBitPattern(t *testing.T) {
	d := &ast.VarConst{Tok: tk("d"), Mutable: true, Type: number("double"), Ident: "d", Init: numLit("1.5")}
	u := newUnitWith(d)
	ctx := mustBuildContext(t, u)

	out, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "0x3ff8000000000000") {
		t.Fatalf("expected the IEEE-754 bit pattern of 1.5, got:\n%s", out)
	}
}

// const u64 k = 1 + 2; -> folded at generation time to a single .quad 3.
func TestConstFoldedAtGeneration(t *testing.T) {
	k := &ast.VarConst{
		Tok: tk("k"), Mutable: false, Type: number("u64"), Ident: "k",
		Init: &ast.BinOp{Op: "+", LHS: numLit("1"), RHS: numLit("2")},
	}
	u := newUnitWith(k)
	ctx := mustBuildContext(t, u)

	out, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, ".quad\t3") {
		t.Fatalf("expected a folded '.quad 3', got:\n%s", out)
	}
}

func funcUnit(fn *ast.Function) *ast.Unit {
	u := ast.NewUnit()
	u.Functions.Set(fn.Ident, fn)
	u.Names.Set(fn.Ident, fn)
	return u
}

// function i32 f() { var i32 a; a = 7; } -> pushes/pops %rbp, adjusts %rsp
// for one local, writes $7 to -<offset>(%rbp), restores and returns.
func TestFunctionLocalAssignment(t *testing.T) {
	fn := &ast.Function{
		Tok: tk("f"), Ident: "f", Return: number("i32"),
		Body: []ast.Expression{
			&ast.Declaration{Mutable: true, Type: number("i32"), Name: "a"},
			&ast.Assignment{Op: "=", LHS: &ast.Name{Ident: "a"}, RHS: numLit("7")},
		},
	}
	u := funcUnit(fn)
	ctx := mustBuildContext(t, u)

	out, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{"pushq\t%rbp", "movq\t%rsp, %rbp", "subq\t$8, %rsp", "$7, -8(%rbp)", "popq\t%rbp", "ret"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected generated assembly to contain %q, got:\n%s", want, out)
		}
	}
}

// function i32 g() { return -1; } -> the unary-minus-on-immediate path
// writes -1 into the integer return register before the epilogue.
func TestFunctionReturnUnaryMinusImmediate(t *testing.T) {
	fn := &ast.Function{
		Tok: tk("g"), Ident: "g", Return: number("i32"),
		Body: []ast.Expression{
			&ast.Return{Expr: &ast.UnaryOp{Op: "-", Arg: numLit("1"), Right: true}},
		},
	}
	u := funcUnit(fn)
	ctx := mustBuildContext(t, u)

	out, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "movq\t$-1, %rax") {
		t.Fatalf("expected '-1' materialized into %%rax before the epilogue, got:\n%s", out)
	}
}

// function i32 f() { return 5; var i32 x; x = 10; } -> the declaration and
// assignment lexically after the unconditional 'return' must never be
// generated: nothing should clobber %rax after it holds 5, and the dead
// local's allocate/deallocate instructions must not appear at all.
func TestDeadCodeAfterReturnIsNotGenerated(t *testing.T) {
	fn := &ast.Function{
		Tok: tk("f"), Ident: "f", Return: number("i32"),
		Body: []ast.Expression{
			&ast.Return{Expr: numLit("5")},
			&ast.Declaration{Mutable: true, Type: number("i32"), Name: "x"},
			&ast.Assignment{Op: "=", LHS: &ast.Name{Ident: "x"}, RHS: numLit("10")},
		},
	}
	u := funcUnit(fn)
	ctx := mustBuildContext(t, u)

	out, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "movq\t$5, %rax") {
		t.Fatalf("expected '5' materialized into %%rax, got:\n%s", out)
	}
	if strings.Contains(out, "$10") {
		t.Fatalf("expected no trace of the unreachable assignment to 'x', got:\n%s", out)
	}
}

// function i32 f() { { return 5; } var i32 x; x = 10; } -> a return nested
// inside a '{ }' scope still terminates the function; the scope allocates
// nothing, so closing it emits no stack adjustment, and everything after
// the scope stays unreachable.
func TestDeadCodeAfterNestedReturnIsNotGenerated(t *testing.T) {
	fn := &ast.Function{
		Tok: tk("f"), Ident: "f", Return: number("i32"),
		Body: []ast.Expression{
			&ast.Scope{Body: []ast.Expression{&ast.Return{Expr: numLit("5")}}},
			&ast.Declaration{Mutable: true, Type: number("i32"), Name: "x"},
			&ast.Assignment{Op: "=", LHS: &ast.Name{Ident: "x"}, RHS: numLit("10")},
		},
	}
	u := funcUnit(fn)
	ctx := mustBuildContext(t, u)

	out, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "movq\t$5, %rax") {
		t.Fatalf("expected '5' materialized into %%rax, got:\n%s", out)
	}
	if strings.Contains(out, "$10") {
		t.Fatalf("expected no trace of the unreachable assignment to 'x', got:\n%s", out)
	}
}

// function i32 add(i32 a, i32 b) { return a + b; }
// function i32 main() { return add(1, 2); } -> the call site moves both
// immediates into %rdi/%rsi and emits a direct 'call add'.
func TestFunctionCallLowersToSysVCall(t *testing.T) {
	add := &ast.Function{
		Tok: tk("add"), Ident: "add", Return: number("i32"),
		Args: []*ast.Param{
			{Tok: tk("a"), Type: number("i32"), Ident: "a"},
			{Tok: tk("b"), Type: number("i32"), Ident: "b"},
		},
		Body: []ast.Expression{
			&ast.Return{Expr: &ast.BinOp{Op: "+", LHS: &ast.Name{Ident: "a"}, RHS: &ast.Name{Ident: "b"}}},
		},
	}
	main := &ast.Function{
		Tok: tk("main"), Ident: "main", Return: number("i32"),
		Body: []ast.Expression{
			&ast.Return{Expr: &ast.FunctionCall{
				Target: &ast.Name{Ident: "add"},
				Args:   []ast.Expression{numLit("1"), numLit("2")},
			}},
		},
	}
	u := ast.NewUnit()
	u.Functions.Set("add", add)
	u.Functions.Set("main", main)
	u.Names.Set("add", add)
	u.Names.Set("main", main)
	ctx := mustBuildContext(t, u)

	out, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{"movl\t$1,", "movl\t$2,", "%edi", "%esi", "call\tadd"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected generated assembly to contain %q, got:\n%s", want, out)
		}
	}
}

// A global 'const i32 c = 1;' followed by 'c = 2;' inside a function rejects
// with a write-to-constant error for c.
func TestWriteToConstantRejected(t *testing.T) {
	c := &ast.VarConst{Tok: tk("c"), Mutable: false, Type: number("i32"), Ident: "c", Init: numLit("1")}
	fn := &ast.Function{
		Tok: tk("h"), Ident: "h", Return: ast.Void{},
		Body: []ast.Expression{
			&ast.Assignment{Op: "=", LHS: &ast.Name{Ident: "c"}, RHS: numLit("2")},
		},
	}
	u := ast.NewUnit()
	u.Vars.Set("c", c)
	u.Globals = append(u.Globals, c)
	u.Functions.Set("h", fn)
	ctx := mustBuildContext(t, u)

	_, err := NewCodeGenerator(u, ctx, "in.mc").Generate()
	if err == nil {
		t.Fatalf("expected a write-to-constant error")
	}
	if !strings.Contains(err.Error(), "c") {
		t.Errorf("expected the error to name %q, got: %v", "c", err)
	}
}
