// Package ast defines the typed syntax tree produced by the translator
// (spec.md §4.3) out of the reducer's generic tree, and the translator
// itself. The AST variants are modeled as closed Go interfaces with concrete
// struct implementations rather than the source's runtime-polymorphic base
// class (spec.md §9: "represent this as a closed tagged variant with
// exhaustive pattern matching on the variant tag").
package ast

import "fmt"

// Type is one of {Void, Number, Pointer, Struct, Function} (spec.md §3).
type Type interface {
	isType()
	String() string
}

// Void is the unit type; valid only as a function return type.
type Void struct{}

func (Void) isType()        {}
func (Void) String() string { return "void" }

// Number is a primitive numeric type, named from the closed set in
// spec.md §4.4 (i8/i16/i32/i64/u8/u16/u32/u64/float/double).
type Number struct{ Name string }

func (Number) isType()          {}
func (n Number) String() string { return n.Name }

// Pointer is "*Inner"; chained '*' nests (spec.md §4.3).
type Pointer struct{ Inner Type }

func (Pointer) isType()          {}
func (p Pointer) String() string { return "*" + p.Inner.String() }

// StructRef names a struct type by its declared name; resolved against the
// type context's struct table at validation time.
type StructRef struct{ Name string }

func (StructRef) isType()          {}
func (s StructRef) String() string { return s.Name }

// FuncType is a function *type*, e.g. "i32(i32, i32)" — distinct from a
// Function top-level declaration.
type FuncType struct {
	Return Type
	Args   []Type
}

func (FuncType) isType() {}
func (f FuncType) String() string {
	s := f.Return.String() + "("
	for i, a := range f.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

var numberNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"float": true, "double": true,
}

// IsNumberName reports whether 'name' is one of the closed primitive
// numeric type names from spec.md §4.4.
func IsNumberName(name string) bool { return numberNames[name] }

func (n Number) GoString() string { return fmt.Sprintf("Number(%s)", n.Name) }
