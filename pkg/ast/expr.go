package ast

import "its-hmny.dev/minic64/pkg/token"

// Expression is any AST node that can appear where a value (or statement,
// since this language has no separate statement grammar) is expected.
// Every variant carries the token it should be flagged on for an error
// (spec.md §3) and declares the L-value/R-value contract (spec.md §4.3).
type Expression interface {
	Token() *token.Token
	Readable() bool
	Writable() bool
	isExpression()
}

// base is embedded by every Expression variant to hold the shared Location
// field (spec.md §9: "keep one shared Location field per variant").
type base struct{ Tok *token.Token }

func (b base) Token() *token.Token { return b.Tok }
func (base) isExpression()        {}

// Name is a bare identifier reference.
type Name struct {
	base
	Ident string
}

func (Name) Readable() bool { return true }
func (Name) Writable() bool { return true }

// Number is a numeric literal, still in its lexed textual form (the type
// context assigns it a concrete numeric type from context).
type Number struct {
	base
	Literal string
}

func (Number) Readable() bool { return true }
func (Number) Writable() bool { return false }

// String is a string literal (decoded already by the lexer).
type String struct {
	base
	Literal string
}

func (String) Readable() bool { return true }
func (String) Writable() bool { return false }

// Declaration introduces a name of a given type, optionally mutable; the
// surrounding context (top-level VarConst vs. a local declaration used as an
// expression) decides how it is lowered.
type Declaration struct {
	base
	Mutable bool
	Type    Type
	Name    string
}

func (Declaration) Readable() bool { return false }
func (Declaration) Writable() bool { return true }

// Assignment covers '= += -= /= *='; Op is the literal operator text.
type Assignment struct {
	base
	Op       string
	LHS, RHS Expression
}

func (Assignment) Readable() bool { return true }
func (Assignment) Writable() bool { return false }

// BinOp is a binary arithmetic operator with AST lowering: only '+ - * /'
// reach this variant (spec.md §9: unlowered operators are rejected by the
// translator, see translateOperatorNode in expr_translate.go).
type BinOp struct {
	base
	Op       string
	LHS, RHS Expression
}

func (BinOp) Readable() bool { return true }
func (BinOp) Writable() bool { return false }

// UnaryOp is a right-unary prefix operator; only '-' and '*' may appear here
// (spec.md §4.3).
type UnaryOp struct {
	base
	Op    string
	Arg   Expression
	Right bool
}

func (UnaryOp) Readable() bool { return true }
func (UnaryOp) Writable() bool { return false }

// FunctionCall is 'target(args...)'; chained calls 'f a b' fold right-to-left
// into nested FunctionCalls by the translator.
type FunctionCall struct {
	base
	Target Expression
	Args   []Expression
}

func (FunctionCall) Readable() bool { return true }
func (FunctionCall) Writable() bool { return false }

// Return is 'return expr'.
type Return struct {
	base
	Expr Expression
}

func (Return) Readable() bool { return false }
func (Return) Writable() bool { return false }

// Scope is a brace-delimited block of expressions/declarations.
type Scope struct {
	base
	Body []Expression
}

func (Scope) Readable() bool { return false }
func (Scope) Writable() bool { return false }
