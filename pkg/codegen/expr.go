package codegen

import (
	"strconv"
	"strings"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
)

// genExpr implements the two-result protocol of spec.md §4.5: the returned
// value is either already materialized in the canonical register for its
// kind, or is a compile-time immediate. needImmediate forces the latter
// (used for global initializers, where no function frame/registers exist).
func (cg *CodeGenerator) genExpr(f *frame, e ast.Expression, needImmediate bool) (value, error) {
	switch n := e.(type) {
	case *ast.Number:
		return cg.genNumberLiteral(n)
	case *ast.String:
		if needImmediate {
			return value{}, diag.New(diag.CodeError, n.Token(), "a string literal cannot be used as an immediate initializer")
		}
		label := cg.emitString(n.Literal)
		f.emit("leaq\t%s(%%rip), %%rax", label)
		return value{Type: ast.Pointer{Inner: ast.Number{Name: "i8"}}, InReg: true}, nil
	case *ast.Name:
		return cg.genNameRead(f, n, needImmediate)
	case *ast.Declaration:
		return cg.genDeclaration(f, n)
	case *ast.Assignment:
		return cg.genAssignment(f, n, needImmediate)
	case *ast.BinOp:
		return cg.genBinOp(f, n, needImmediate)
	case *ast.UnaryOp:
		return cg.genUnaryOp(f, n, needImmediate)
	case *ast.Scope:
		return cg.genScope(f, n, needImmediate)
	case *ast.Return:
		return cg.genReturn(f, n)
	case *ast.FunctionCall:
		return cg.genFunctionCall(f, n, needImmediate)
	default:
		return value{}, diag.New(diag.CodeError, e.Token(), "no code generation rule for this expression")
	}
}

// genNumberLiteral parses a decimal literal (spec.md §6: "decimal numbers
// with optional single '.'") into an immediate i32 or double, the same
// default widths the teacher's own numeric defaulting uses absent an
// explicit target type; callers needing a narrower/wider type convert it.
func (cg *CodeGenerator) genNumberLiteral(n *ast.Number) (value, error) {
	if strings.Contains(n.Literal, ".") {
		f, err := strconv.ParseFloat(n.Literal, 64)
		if err != nil {
			return value{}, diag.New(diag.CodeError, n.Token(), "malformed numeric literal %q", n.Literal)
		}
		return regFlt(ast.Number{Name: "double"}, f), nil
	}
	i, err := strconv.ParseInt(n.Literal, 10, 64)
	if err != nil {
		return value{}, diag.New(diag.CodeError, n.Token(), "malformed numeric literal %q", n.Literal)
	}
	return regImm(ast.Number{Name: "i32"}, i), nil
}

func (cg *CodeGenerator) genNameRead(f *frame, n *ast.Name, needImmediate bool) (value, error) {
	if needImmediate {
		return value{}, diag.New(diag.CodeError, n.Token(), "name %q is not a compile-time immediate", n.Ident)
	}
	r, err := cg.resolveName(f, n.Token(), n.Ident)
	if err != nil {
		return value{}, err
	}

	size, _ := cg.ctx.SizeOf(r.typ)
	if r.isFloat {
		mnemonic := "movsd"
		if r.typ.(ast.Number).Name == "float" {
			mnemonic = "movss"
		}
		f.emit("%s\t%s, %%xmm0", mnemonic, r.operand)
	} else {
		f.emit("mov%s\t%s, %%rax", sizeSuffix(size), r.operand)
	}
	return value{Type: r.typ, InReg: true}, nil
}

func (cg *CodeGenerator) genDeclaration(f *frame, d *ast.Declaration) (value, error) {
	if f == nil {
		return value{}, diag.New(diag.CodeError, d.Token(), "declaration outside of a function body")
	}
	if _, err := f.allocate(d.Name, d.Type, d.Mutable); err != nil {
		return value{}, err
	}
	return value{Type: d.Type}, nil
}

func (cg *CodeGenerator) genScope(f *frame, s *ast.Scope, needImmediate bool) (value, error) {
	f.pushScope()
	var last value
	for _, stmt := range s.Body {
		v, err := cg.genExpr(f, stmt, needImmediate)
		if err != nil {
			return value{}, err
		}
		last = v
		if stmtTerminates(stmt) {
			break // everything after an unconditional return is unreachable
		}
	}
	if err := f.popScope(); err != nil {
		return value{}, err
	}
	return last, nil
}

// stmtTerminates reports whether executing 'stmt' unconditionally ends the
// enclosing function: either it is a return itself, or it is a scope whose
// own body unconditionally returns. This language has no conditional
// control flow (spec.md Non-goals: no if/while), so a return's position in
// program order is always exactly where execution stops — nothing lexically
// after it, at any nesting depth, is ever reached.
func stmtTerminates(stmt ast.Expression) bool {
	switch s := stmt.(type) {
	case *ast.Return:
		return true
	case *ast.Scope:
		return scopeTerminates(s.Body)
	default:
		return false
	}
}

func scopeTerminates(body []ast.Expression) bool {
	for _, stmt := range body {
		if stmtTerminates(stmt) {
			return true
		}
	}
	return false
}

func (cg *CodeGenerator) genReturn(f *frame, r *ast.Return) (value, error) {
	if r.Expr == nil {
		return value{}, nil
	}
	v, err := cg.genExpr(f, r.Expr, false)
	if err != nil {
		return value{}, err
	}
	if err := cg.materializeReturn(f, v); err != nil {
		return value{}, err
	}
	return v, nil
}

// materializeReturn places 'v' in the canonical SysV return register for
// its kind ('%rax' for integers/pointers, '%xmm0' for floats), resolving
// spec.md §9's open question ("a strict re-implementation must ... specify
// the canonical SysV return register choice").
func (cg *CodeGenerator) materializeReturn(f *frame, v value) error {
	if isFloatType(v.Type) {
		if v.InReg {
			return nil
		}
		label := cg.emitFloatConst(v)
		f.emit("movsd\t%s(%%rip), %%xmm0", label)
		return nil
	}
	if v.InReg {
		return nil
	}
	f.emit("movq\t$%d, %%rax", v.Int)
	return nil
}

// emitFloatConst interns an immediate float/double value into .rodata so it
// can be loaded with a rip-relative 'movsd'/'movss'.
func (cg *CodeGenerator) emitFloatConst(v value) string {
	label := ".LC" + strconv.Itoa(cg.stringCounter)
	cg.stringCounter++
	directive, bits := ".quad", float64Bits(v.Float)
	if v.numberName() == "float" {
		directive, bits = ".long", uint64(float32Bits(float32(v.Float)))
	}
	cg.rodata = append(cg.rodata, label+":", "\t"+directive+"\t0x"+strconv.FormatUint(bits, 16))
	return label
}

