package codegen

import (
	"fmt"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/token"
	"its-hmny.dev/minic64/pkg/types"
)

// genAssignment lowers '= += -= /= *=' per spec.md §4.5: evaluate the RHS,
// then write the result into the LHS target, applying implicit numeric
// conversion to the target's type. Compound ops ('+=' etc.) first read the
// target's current value and combine it with the RHS via the same operand
// lowering spec.md §4.5 prescribes for a plain binary operator.
func (cg *CodeGenerator) genAssignment(f *frame, a *ast.Assignment, needImmediate bool) (value, error) {
	name, ok := a.LHS.(*ast.Name)
	if !ok {
		return value{}, diag.New(diag.CodeError, a.Token(), "assignment target must be a name")
	}

	target, err := cg.resolveName(f, a.Token(), name.Ident)
	if err != nil {
		return value{}, err
	}
	if !target.mutable {
		return value{}, diag.New(diag.TypeError, a.Token(), "cannot assign to constant %q", name.Ident)
	}

	var rhs value
	if a.Op == "=" {
		rhs, err = cg.genExpr(f, a.RHS, needImmediate)
		if err != nil {
			return value{}, err
		}
	} else {
		op := a.Op[:len(a.Op)-1] // "+=" -> "+"
		rhs, err = cg.genBinaryGeneric(f, op, a.Token(), needImmediate,
			func() (value, error) { return cg.genExpr(f, a.LHS, needImmediate) },
			func() (value, error) { return cg.genExpr(f, a.RHS, needImmediate) },
		)
		if err != nil {
			return value{}, err
		}
	}

	converted, err := cg.convertTo(f, rhs, target.typ)
	if err != nil {
		return value{}, err
	}

	if err := cg.storeTo(f, target, converted); err != nil {
		return value{}, err
	}
	return converted, nil
}

// storeTo writes an already-converted value to a resolved memory operand
// (spec.md §4.5 "Name lowering": "write from the canonical register or an
// immediate directly to the memory operand").
func (cg *CodeGenerator) storeTo(f *frame, target resolved, v value) error {
	size, err := cg.ctx.SizeOf(target.typ)
	if err != nil {
		return err
	}

	if target.isFloat {
		mnemonic := "movsd"
		if target.typ.(ast.Number).Name == "float" {
			mnemonic = "movss"
		}
		if !v.InReg {
			label := cg.emitFloatConst(v)
			f.emit("%s\t%s(%%rip), %%xmm0", mnemonic, label)
		}
		f.emit("%s\t%%xmm0, %s", mnemonic, target.operand)
		return nil
	}

	if v.InReg {
		f.emit("mov%s\t%%rax, %s", sizeSuffix(size), target.operand)
		return nil
	}
	f.emit("mov%s\t$%d, %s", sizeSuffix(size), v.Int, target.operand)
	return nil
}

// genBinOp lowers '+ - * /' between two numeric operands (spec.md §4.5
// "Operator lowering").
func (cg *CodeGenerator) genBinOp(f *frame, b *ast.BinOp, needImmediate bool) (value, error) {
	return cg.genBinaryGeneric(f, b.Op, b.Token(), needImmediate,
		func() (value, error) { return cg.genExpr(f, b.LHS, needImmediate) },
		func() (value, error) { return cg.genExpr(f, b.RHS, needImmediate) },
	)
}

// genBinaryGeneric implements spec.md §4.5's "Operator lowering" in its
// five numbered steps, parameterized over how the two operands are lowered
// so both a plain 'BinOp' and a compound-assignment's implicit operator
// ("+=" -> "+") share one path:
//  1. lower LHS, spilling it to an anonymous temp if it landed in a
//     register (the RHS's own codegen is otherwise free to clobber
//     '%rax'/'%xmm0');
//  2. lower RHS;
//  3. T = rank-max(LHS type, RHS type);
//  4. if both operands are immediate, fold (with overflow wrapping +
//     warning);
//  5. otherwise reload both into their canonical registers, converting to
//     T, and emit the operator.
func (cg *CodeGenerator) genBinaryGeneric(f *frame, op string, tok *token.Token, needImmediate bool, lowerLHS, lowerRHS func() (value, error)) (value, error) {
	lhs, err := lowerLHS()
	if err != nil {
		return value{}, err
	}

	var spillSlot string
	if lhs.InReg {
		spillSlot = fmt.Sprintf("__spill%d", f.tempCounter)
		f.tempCounter++
		if _, err := f.allocate(spillSlot, lhs.Type, true); err != nil {
			return value{}, err
		}
		l, _ := f.lookup(spillSlot)
		if isFloatType(lhs.Type) {
			f.emit("movsd\t%%xmm0, %s", asmLocalOperand(l.offset))
		} else {
			f.emit("movq\t%%rax, %s", asmLocalOperand(l.offset))
		}
	}

	rhs, err := lowerRHS()
	if err != nil {
		return value{}, err
	}

	lhsName, lhsOK := lhs.Type.(ast.Number)
	rhsName, rhsOK := rhs.Type.(ast.Number)
	if !lhsOK || !rhsOK {
		return value{}, diag.New(diag.TypeError, tok, "operator %q requires numeric operands", op)
	}
	result := ast.Number{Name: types.RankMax(lhsName.Name, rhsName.Name)}

	if spillSlot == "" && !lhs.InReg && !rhs.InReg {
		return foldImmediate(op, mustConvertImm(lhs, result), mustConvertImm(rhs, result), result)
	}
	if needImmediate {
		return value{}, diag.New(diag.CodeError, tok, "operator %q cannot be used in a compile-time-immediate context", op)
	}

	// RHS is already in %rax/%xmm0 (or is an immediate); move it to the
	// %rcx/%xmm1 slot spec.md §4.5 reserves for it, converting to T first.
	rhsC, err := cg.convertTo(f, rhs, result)
	if err != nil {
		return value{}, err
	}
	if err := cg.materializeRHS(f, rhsC); err != nil {
		return value{}, err
	}

	// Reload LHS (from its spill slot, or directly if it was never
	// register-resident) into %rax/%xmm0, converting to T.
	var lhsC value
	if spillSlot != "" {
		l, _ := f.lookup(spillSlot)
		lhsC, err = cg.reloadSpill(f, l, result)
	} else {
		lhsC, err = cg.convertTo(f, lhs, result)
		if err == nil {
			err = cg.materializeLHS(f, lhsC)
		}
	}
	if err != nil {
		return value{}, err
	}

	if spillSlot != "" {
		if err := f.deallocateTemp(spillSlot); err != nil {
			return value{}, err
		}
	}

	return cg.emitRegisterBinOp(f, op, lhsC, rhsC, result)
}

// materializeRHS ensures 'v' (already converted to the common type) is
// resident in '%rcx'/'%xmm1'.
func (cg *CodeGenerator) materializeRHS(f *frame, v value) error {
	if types.IsFloating(v.numberName()) {
		if !v.InReg {
			label := cg.emitFloatConst(v)
			f.emit("movsd\t%s(%%rip), %%xmm1", label)
			return nil
		}
		f.emit("movsd\t%%xmm0, %%xmm1")
		return nil
	}
	if !v.InReg {
		f.emit("movq\t$%d, %%rcx", v.Int)
		return nil
	}
	f.emit("movq\t%%rax, %%rcx")
	return nil
}

// materializeLHS ensures an already-converted immediate LHS value is
// resident in '%rax'/'%xmm0' (the register case is already there).
func (cg *CodeGenerator) materializeLHS(f *frame, v value) error {
	if v.InReg {
		return nil
	}
	if types.IsFloating(v.numberName()) {
		label := cg.emitFloatConst(v)
		f.emit("movsd\t%s(%%rip), %%xmm0", label)
		return nil
	}
	f.emit("movq\t$%d, %%rax", v.Int)
	return nil
}

// reloadSpill reloads a spilled LHS from its stack slot into '%rax'/'%xmm0',
// converting it to the binary operator's common result type on the way.
func (cg *CodeGenerator) reloadSpill(f *frame, l *local, result ast.Type) (value, error) {
	if isFloatType(l.typ) {
		f.emit("movsd\t%s, %%xmm0", asmLocalOperand(l.offset))
	} else {
		f.emit("mov%s\t%s, %%rax", sizeSuffix(l.size), asmLocalOperand(l.offset))
	}
	return cg.convertTo(f, value{Type: l.typ, InReg: true}, result)
}

// mustConvertImm converts an already-immediate value to 'to' without
// touching any registers (always reachable: both operands are immediate by
// the time this is called). A float becomes an integer by truncation toward
// zero; an integer keeps its numeric value and is not truncated to the
// width of 'to'.
func mustConvertImm(v value, to ast.Type) value {
	toName := to.(ast.Number)
	if types.IsFloating(toName.Name) {
		if types.IsFloating(v.numberName()) {
			return regFlt(to, v.Float)
		}
		return regFlt(to, float64(v.Int))
	}
	if types.IsFloating(v.numberName()) {
		return regImm(to, int64(v.Float))
	}
	return regImm(to, v.Int)
}

// emitRegisterBinOp emits the register-materialized arithmetic instruction
// for 'op' over two values already converted to the common type 'result'
// (spec.md §4.5 step 5). LHS is assumed already in '%rax'/'%xmm0', RHS in
// '%rcx'/'%xmm1'.
func (cg *CodeGenerator) emitRegisterBinOp(f *frame, op string, lhs, rhs value, result ast.Type) (value, error) {
	name := result.(ast.Number).Name
	size, _ := cg.ctx.SizeOf(result)

	if types.IsFloating(name) {
		suffix := "sd"
		if name == "float" {
			suffix = "ss"
		}
		mnemonic, err := floatMnemonic(op, suffix)
		if err != nil {
			return value{}, err
		}
		f.emit("%s\t%%xmm1, %%xmm0", mnemonic)
		return value{Type: result, InReg: true}, nil
	}

	mnemonic, err := intMnemonic(op, sizeSuffix(size), types.IsUnsigned(name))
	if err != nil {
		return value{}, err
	}
	f.emit("%s\t%%rcx, %%rax", mnemonic)
	return value{Type: result, InReg: true}, nil
}

func floatMnemonic(op, suffix string) (string, error) {
	switch op {
	case "+":
		return "add" + suffix, nil
	case "-":
		return "sub" + suffix, nil
	case "*":
		return "mul" + suffix, nil
	case "/":
		return "div" + suffix, nil
	default:
		return "", diag.New(diag.CodeError, nil, "operator %q has no float lowering", op)
	}
}

func intMnemonic(op, suffix string, unsigned bool) (string, error) {
	switch op {
	case "+":
		return "add" + suffix, nil
	case "-":
		return "sub" + suffix, nil
	case "*":
		if unsigned {
			return "mul" + suffix, nil
		}
		return "imul" + suffix, nil
	case "/":
		if unsigned {
			return "div" + suffix, nil
		}
		return "idiv" + suffix, nil
	default:
		return "", diag.New(diag.CodeError, nil, "operator %q has no integer lowering", op)
	}
}

// genUnaryOp lowers right-unary '-' (arithmetic negation) and '*' (pointer
// dereference); these are the only two right-unary operators the
// translator ever produces (spec.md §4.3).
func (cg *CodeGenerator) genUnaryOp(f *frame, u *ast.UnaryOp, needImmediate bool) (value, error) {
	arg, err := cg.genExpr(f, u.Arg, needImmediate)
	if err != nil {
		return value{}, err
	}

	switch u.Op {
	case "-":
		if !arg.InReg {
			if types.IsFloating(arg.numberName()) {
				return regFlt(arg.Type, -arg.Float), nil
			}
			return regImm(arg.Type, -arg.Int), nil
		}
		if types.IsFloating(arg.numberName()) {
			f.emit("xorpd\t%%xmm1, %%xmm1")
			f.emit("subsd\t%%xmm0, %%xmm1")
			f.emit("movsd\t%%xmm1, %%xmm0")
		} else {
			size, _ := cg.ctx.SizeOf(arg.Type)
			f.emit("neg%s\t%%rax", sizeSuffix(size))
		}
		return arg, nil
	case "*":
		if needImmediate {
			return value{}, diag.New(diag.CodeError, u.Token(), "pointer dereference is not a compile-time immediate")
		}
		ptr, ok := arg.Type.(ast.Pointer)
		if !ok {
			return value{}, diag.New(diag.TypeError, u.Token(), "cannot dereference a non-pointer type")
		}
		if !arg.InReg {
			return value{}, diag.New(diag.CodeError, u.Token(), "cannot dereference an immediate")
		}
		size, _ := cg.ctx.SizeOf(ptr.Inner)
		if isFloatType(ptr.Inner) {
			f.emit("movsd\t(%%rax), %%xmm0")
		} else {
			f.emit("mov%s\t(%%rax), %%rax", sizeSuffix(size))
		}
		return value{Type: ptr.Inner, InReg: true}, nil
	default:
		return value{}, diag.New(diag.CodeError, u.Token(), "unsupported unary operator %q", u.Op)
	}
}
