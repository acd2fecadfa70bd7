package codegen

import (
	"fmt"
	"strings"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/types"
)

// dataDirective returns the GNU-assembler directive and natural alignment
// for a scalar data item of the given numeric type name (spec.md §4.5:
// "byte/.byte (1), short/.value (2, align 2), long/.long (4, align 4),
// quad/.quad (8, align 8)").
func dataDirective(name string) (directive string, align int, err error) {
	switch types.NumberSize(name) {
	case 1:
		return ".byte", 1, nil
	case 2:
		return ".value", 2, nil
	case 4:
		return ".long", 4, nil
	case 8:
		return ".quad", 8, nil
	default:
		return "", 0, fmt.Errorf("no data directive for numeric type %q", name)
	}
}

// emitGlobal renders one top-level 'var'/'const' as a data-section item.
// The initializer (if any) must already have been folded down to an
// immediate value (spec.md §4.5 step 4 run with needImmediate=true).
func (cg *CodeGenerator) emitGlobal(v *ast.VarConst, init value) error {
	switch t := v.Type.(type) {
	case ast.Pointer:
		cg.emitScalar(v.Ident, "quad", 8, init.immLiteral())
		return nil
	case ast.Number:
		directive, align, err := dataDirective(t.Name)
		if err != nil {
			return diag.New(diag.CodeError, v.Tok, "%v", err)
		}
		cg.emitScalar(v.Ident, directive, align, init.immLiteral())
		return nil
	default:
		return diag.New(diag.CodeError, v.Tok, "global %q has no data representation", v.Ident)
	}
}

func (cg *CodeGenerator) emitScalar(name, directive string, align int, literal string) {
	cg.data = append(cg.data,
		fmt.Sprintf("\t.globl\t%s", name),
		fmt.Sprintf("\t.align %d", align),
		fmt.Sprintf("\t.type\t%s, @object", name),
		fmt.Sprintf("\t.size\t%s, %d", name, align),
		fmt.Sprintf("%s:", name),
		fmt.Sprintf("\t%s\t%s", directive, literal),
	)
}

// emitString interns a string literal into .rodata under a fresh '.LC<n>'
// label (spec.md §6: "Anonymous rodata items get tags of the form .LC<n>")
// and returns that label for callers to reference.
func (cg *CodeGenerator) emitString(decoded string) string {
	label := fmt.Sprintf(".LC%d", cg.stringCounter)
	cg.stringCounter++
	cg.rodata = append(cg.rodata,
		fmt.Sprintf("%s:", label),
		fmt.Sprintf("\t.string %q", decoded),
	)
	return label
}

func (cg *CodeGenerator) dataSection() string {
	var b strings.Builder
	if len(cg.rodata) > 0 {
		b.WriteString("\t.section\t.rodata\n")
		for _, line := range cg.rodata {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if len(cg.data) > 0 {
		b.WriteString("\t.data\n")
		for _, line := range cg.data {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
