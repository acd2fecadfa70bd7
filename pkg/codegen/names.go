package codegen

import (
	"fmt"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/token"
)

// resolved is where a name lowers to: either a local slot '-offset(%rbp)'
// or a global symbol 'name(%rip)' (spec.md §4.5 "Name lowering").
type resolved struct {
	operand string
	typ     ast.Type
	mutable bool
	isFloat bool
}

// resolveName looks a name up first in the current function frame, then in
// the unit's global table.
func (cg *CodeGenerator) resolveName(f *frame, tok *token.Token, name string) (resolved, error) {
	if f != nil {
		if l, ok := f.lookup(name); ok {
			return resolved{
				operand: asmLocalOperand(l.offset),
				typ:     l.typ,
				mutable: l.mutable,
				isFloat: isFloatType(l.typ),
			}, nil
		}
	}

	if g, ok := cg.unit.Vars.Get(name); ok {
		return resolved{
			operand: name + "(%rip)",
			typ:     g.Type,
			mutable: g.Mutable,
			isFloat: isFloatType(g.Type),
		}, nil
	}

	return resolved{}, diag.New(diag.CodeError, tok, "undefined name %q", name)
}

func isFloatType(t ast.Type) bool {
	n, ok := t.(ast.Number)
	return ok && (n.Name == "float" || n.Name == "double")
}

func sizeSuffix(size int) string {
	switch size {
	case 1:
		return "b"
	case 2:
		return "w"
	case 4:
		return "l"
	default:
		return "q"
	}
}

func asmLocalOperand(offset int) string {
	return fmt.Sprintf("-%d(%%rbp)", offset)
}
