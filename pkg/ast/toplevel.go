package ast

import (
	"its-hmny.dev/minic64/pkg/token"
	"its-hmny.dev/minic64/pkg/utils"
)

// TopLevel is one of {VarConst, Function, Struct} (spec.md §3).
type TopLevel interface {
	Token() *token.Token
	Name() string
	isTopLevel()
}

// VarConst is a top-level 'var'/'const' declaration, optionally initialized.
type VarConst struct {
	Tok     *token.Token
	Mutable bool
	Type    Type
	Ident   string
	Init    Expression // nil if uninitialized
}

func (v *VarConst) Token() *token.Token { return v.Tok }
func (v *VarConst) Name() string        { return v.Ident }
func (*VarConst) isTopLevel()           {}

// Function is a top-level function declaration ('Body == nil') or
// definition ('Body != nil').
type Function struct {
	Tok    *token.Token
	Return Type
	Ident  string
	Args   []*Param
	Body   []Expression // nil for a declaration with no body
}

func (f *Function) Token() *token.Token { return f.Tok }
func (f *Function) Name() string        { return f.Ident }
func (*Function) isTopLevel()           {}

// Param is a function argument or struct member: a plain (mutable?, type,
// name) triple, kept distinct from the Declaration expression variant since
// neither carries an initializer.
type Param struct {
	Tok     *token.Token
	Mutable bool
	Type    Type
	Ident   string
}

// Struct is a top-level struct declaration.
type Struct struct {
	Tok     *token.Token
	Ident   string
	Members []*Param
}

func (s *Struct) Token() *token.Token { return s.Tok }
func (s *Struct) Name() string        { return s.Ident }
func (*Struct) isTopLevel()           {}

// Unit is the whole translated program (spec.md §3): an ordered name table
// unique across all top-level kinds, plus per-kind lookup tables and the
// ordered list of global definitions (those carrying an initializer).
type Unit struct {
	Names     *utils.OrderedMap[string, TopLevel]
	Structs   *utils.OrderedMap[string, *Struct]
	Functions *utils.OrderedMap[string, *Function]
	Vars      *utils.OrderedMap[string, *VarConst]
	Globals   []*VarConst
}

// NewUnit returns an empty Unit ready to be populated by the translator.
func NewUnit() *Unit {
	return &Unit{
		Names:     utils.NewOrderedMap[string, TopLevel](),
		Structs:   utils.NewOrderedMap[string, *Struct](),
		Functions: utils.NewOrderedMap[string, *Function](),
		Vars:      utils.NewOrderedMap[string, *VarConst](),
	}
}
