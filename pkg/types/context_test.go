package types

import (
	"testing"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/token"
)

func tok(value string) *token.Token {
	t, err := token.NewToken(token.Name, value, 0, 0, nil, nil)
	if err != nil {
		panic(err)
	}
	return t
}

func param(name string, ty ast.Type) *ast.Param {
	return &ast.Param{Tok: tok(name), Type: ty, Ident: name}
}

func unitWithStructs(structs ...*ast.Struct) *ast.Unit {
	u := ast.NewUnit()
	for _, s := range structs {
		u.Structs.Set(s.Ident, s)
		u.Names.Set(s.Ident, s)
	}
	return u
}

// struct S { i32 a; i64 b; i8 c } should lay out as {a:0, b:8, c:16},
// alignment 8, size 24 (spec.md §8).
func TestStructLayoutOffsetsAlignmentSize(t *testing.T) {
	s := &ast.Struct{
		Tok:   tok("S"),
		Ident: "S",
		Members: []*ast.Param{
			param("a", ast.Number{Name: "i32"}),
			param("b", ast.Number{Name: "i64"}),
			param("c", ast.Number{Name: "i8"}),
		},
	}

	ctx, err := BuildContext(unitWithStructs(s))
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}

	layout, ok := ctx.Structs["S"]
	if !ok {
		t.Fatalf("struct S not registered")
	}

	wantOffsets := map[string]int{"a": 0, "b": 8, "c": 16}
	for name, want := range wantOffsets {
		if got := layout.Offsets[name]; got != want {
			t.Errorf("offset of %s = %d, want %d", name, got, want)
		}
	}
	if layout.Alignment != 8 {
		t.Errorf("alignment = %d, want 8", layout.Alignment)
	}
	if layout.Size != 24 {
		t.Errorf("size = %d, want 24", layout.Size)
	}
}

// A struct referencing an undeclared struct type must be rejected.
func TestStructUnknownMemberType(t *testing.T) {
	s := &ast.Struct{
		Tok:   tok("A"),
		Ident: "A",
		Members: []*ast.Param{
			param("b", ast.StructRef{Name: "B"}),
		},
	}

	if _, err := BuildContext(unitWithStructs(s)); err == nil {
		t.Fatalf("expected an error for an unknown struct member type")
	}
}

// Two structs embedding each other by value form a cycle and must be
// rejected (spec.md §4.4: "Any struct left unresolved is part of a cycle").
func TestStructCycleRejected(t *testing.T) {
	a := &ast.Struct{
		Tok:   tok("A"),
		Ident: "A",
		Members: []*ast.Param{
			param("b", ast.StructRef{Name: "B"}),
		},
	}
	b := &ast.Struct{
		Tok:   tok("B"),
		Ident: "B",
		Members: []*ast.Param{
			param("a", ast.StructRef{Name: "A"}),
		},
	}

	_, err := BuildContext(unitWithStructs(a, b))
	if err == nil {
		t.Fatalf("expected a cycle error")
	}
}

// A struct member typed 'void' or a function type must be rejected.
func TestStructRejectsVoidAndFunctionMembers(t *testing.T) {
	voidMember := &ast.Struct{
		Tok:     tok("V"),
		Ident:   "V",
		Members: []*ast.Param{param("x", ast.Void{})},
	}
	if _, err := BuildContext(unitWithStructs(voidMember)); err == nil {
		t.Fatalf("expected an error for a void-typed member")
	}

	fnMember := &ast.Struct{
		Tok:   tok("F"),
		Ident: "F",
		Members: []*ast.Param{
			param("cb", ast.FuncType{Return: ast.Void{}}),
		},
	}
	if _, err := BuildContext(unitWithStructs(fnMember)); err == nil {
		t.Fatalf("expected an error for a function-typed member")
	}
}

// A function declared without a body type-checks cleanly. Merging repeated
// declarations (and rejecting a second body) happens earlier, in
// pkg/ast/translator.go's registerTopLevel/checkCompatibleRedeclaration,
// and is not exercised here.
func TestFunctionDeclarationWithoutBodyTypeChecks(t *testing.T) {
	u := ast.NewUnit()
	decl := &ast.Function{Tok: tok("f"), Ident: "f", Return: ast.Number{Name: "i32"}, Args: []*ast.Param{param("x", ast.Number{Name: "i32"})}}
	u.Functions.Set("f", decl)
	u.Names.Set("f", decl)

	if _, err := BuildContext(u); err != nil {
		t.Fatalf("a function declaration with no body should type-check: %v", err)
	}
}

func TestRankMaxPrefersWiderOperand(t *testing.T) {
	cases := []struct{ a, b, want string }{
		{"i8", "i32", "i32"},
		{"i32", "u32", "u32"},
		{"i64", "float", "float"},
		{"float", "double", "double"},
	}
	for _, c := range cases {
		if got := RankMax(c.a, c.b); got != c.want {
			t.Errorf("RankMax(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}
