// Package codegen implements spec.md §4.5: it lowers a type-checked
// *ast.Unit into GNU-assembler (AT&T) x86-64 text, the same "build one
// textual instruction per AST/IR node, validate along the way" shape the
// teacher's own pkg/asm.CodeGenerator and pkg/vm.Lowerer use
// (its-hmny-nand2tetris/code/pkg/asm/codegen.go,
// its-hmny-nand2tetris/code/pkg/vm/lowering.go), generalized from a fixed
// 16-bit instruction set to this language's struct/pointer/function model.
package codegen

import (
	"fmt"
	"path/filepath"
	"strings"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/types"
)

// CodeGenerator accumulates the full assembly text buffer for one
// translation unit: a data section, one text block per function body, and
// the trailing ident/footer block (spec.md §4.5: "a fixed structure:
// .file, a data section ..., then one text section per function, then an
// ident/footer block").
type CodeGenerator struct {
	unit *ast.Unit
	ctx  *types.Context

	filename string

	data   []string
	rodata []string
	text   []string

	stringCounter int
	funcIDCounter int
}

// NewCodeGenerator builds a CodeGenerator for a type-checked unit.
// 'filename' is the input path, used for the leading '.file' directive.
func NewCodeGenerator(unit *ast.Unit, ctx *types.Context, filename string) *CodeGenerator {
	return &CodeGenerator{unit: unit, ctx: ctx, filename: filename}
}

// Generate produces the complete assembly text for the unit (spec.md
// §4.6: the driver's final stage).
func (cg *CodeGenerator) Generate() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "\t.file\t%q\n", filepath.Base(cg.filename))

	for _, e := range cg.unit.Globals {
		init, err := cg.genGlobalInit(e)
		if err != nil {
			return "", err
		}
		if err := cg.emitGlobal(e, init); err != nil {
			return "", err
		}
	}

	for _, e := range cg.unit.Functions.Entries() {
		fn := e.Value
		if fn.Body == nil {
			continue // a declaration with no body emits nothing
		}
		if err := cg.genFunction(fn); err != nil {
			return "", err
		}
	}

	b.WriteString(cg.dataSection())
	for _, fnText := range cg.text {
		b.WriteString(fnText)
	}
	b.WriteString(footer())
	return b.String(), nil
}

// genGlobalInit folds a global's initializer down to a compile-time
// immediate (spec.md §4.5: the 'needImmediate' case), or synthesizes the
// implicit zero value if there is none.
func (cg *CodeGenerator) genGlobalInit(v *ast.VarConst) (value, error) {
	if v.Init == nil {
		return zeroValue(v.Type), nil
	}
	init, err := cg.genExpr(nil, v.Init, true)
	if err != nil {
		return value{}, err
	}
	return cg.convertTo(nil, init, v.Type)
}

func zeroValue(t ast.Type) value {
	if n, ok := t.(ast.Number); ok && types.IsFloating(n.Name) {
		return regFlt(t, 0)
	}
	return regImm(t, 0)
}

// genFunction lowers one function definition: prologue, body, epilogue,
// wrapped in the CFI directives and unique LFB/LFE label pair spec.md
// §4.5/§6 require.
func (cg *CodeGenerator) genFunction(fn *ast.Function) error {
	cg.funcIDCounter++
	id := cg.funcIDCounter

	f := newFrame(cg.ctx, fn)
	next := map[bool]int{} // next free argument register, keyed by isFloatType
	for _, p := range fn.Args {
		isFlt := isFloatType(p.Type)
		regs := map[bool][]string{false: intArgRegs[:], true: floatArgRegs[:]}[isFlt]
		if next[isFlt] >= len(regs) {
			return diag.New(diag.CodeError, p.Tok, "function %q has more parameters than the SysV argument registers hold", fn.Ident)
		}
		off, err := f.allocate(p.Ident, p.Type, p.Mutable)
		if err != nil {
			return err
		}
		f.emit("movq\t%%%s, %s", regs[next[isFlt]], asmLocalOperand(off))
		next[isFlt]++
	}
	terminated := false
	for _, stmt := range fn.Body {
		if _, err := cg.genExpr(f, stmt, false); err != nil {
			return err
		}
		if stmtTerminates(stmt) {
			terminated = true
			break // everything lexically after an unconditional return is unreachable
		}
	}

	if !terminated {
		if err := cg.materializeReturn(f, zeroValue(fn.Return)); err != nil {
			return err
		}
	}

	if err := f.close(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\t.globl\t%s\n", fn.Ident)
	fmt.Fprintf(&b, "\t.type\t%s, @function\n", fn.Ident)
	fmt.Fprintf(&b, "%s:\n", fn.Ident)
	fmt.Fprintf(&b, "\t.cfi_startproc\n")
	fmt.Fprintf(&b, "LFB%d:\n", id)
	fmt.Fprintf(&b, "\tpushq\t%%rbp\n")
	fmt.Fprintf(&b, "\tmovq\t%%rsp, %%rbp\n")
	for _, line := range f.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\tpopq\t%%rbp\n")
	fmt.Fprintf(&b, "\tret\n")
	fmt.Fprintf(&b, "LFE%d:\n", id)
	fmt.Fprintf(&b, "\t.cfi_endproc\n")
	fmt.Fprintf(&b, "\t.size\t%s, .-%s\n", fn.Ident, fn.Ident)

	cg.text = append(cg.text, b.String())
	return nil
}

func footer() string {
	return "\t.ident\t\"minic64\"\n" +
		"\t.section\t.note.GNU-stack,\"\",@progbits\n"
}
