package codegen

import (
	"fmt"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
)

// intArgRegs/floatArgRegs are the SysV AMD64 ABI §3.2.3 integer- and
// SSE-class argument registers, in order: up to six integer/pointer
// arguments and eight float/double arguments pass in registers. Stack-passed
// arguments beyond that are not supported; spec.md's grammar has no variadic
// or wide-arity call site that would need them.
var intArgRegs = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var floatArgRegs = [8]string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}

// argSubRegister narrows one of intArgRegs to a given byte width. Unlike
// subRegister (convert.go), which only ever narrows '%rax', rdi/rsi/rdx/rcx
// and r8/r9 don't share a single naming scheme (rdi's byte register is
// 'dil', not the 'dl' a generic "base+l" rule would produce), so each is
// spelled out explicitly.
func argSubRegister(reg64 string, size int) string {
	names := map[string][4]string{
		// [byte, word, dword, qword]
		"rdi": {"dil", "di", "edi", "rdi"},
		"rsi": {"sil", "si", "esi", "rsi"},
		"rdx": {"dl", "dx", "edx", "rdx"},
		"rcx": {"cl", "cx", "ecx", "rcx"},
		"r8":  {"r8b", "r8w", "r8d", "r8"},
		"r9":  {"r9b", "r9w", "r9d", "r9"},
	}[reg64]
	switch size {
	case 1:
		return names[0]
	case 2:
		return names[1]
	case 4:
		return names[2]
	default:
		return names[3]
	}
}

// genFunctionCall lowers 'target(args...)' (spec.md §6's grammar, §3's AST)
// to a direct 'call' using the SysV register-passing convention: every
// argument is evaluated and converted to its parameter's declared type
// first, each spilled to its own stack temp (the same LHS-spill discipline
// genBinaryGeneric uses), so that evaluating argument N can never clobber
// '%rax'/'%xmm0' still holding argument N-1. Only once all arguments are
// safely on the stack are they reloaded into their SysV argument registers,
// in order, and the call emitted.
func (cg *CodeGenerator) genFunctionCall(f *frame, call *ast.FunctionCall, needImmediate bool) (value, error) {
	if needImmediate {
		return value{}, diag.New(diag.CodeError, call.Token(), "a function call cannot be used as a compile-time immediate")
	}
	if f == nil {
		return value{}, diag.New(diag.CodeError, call.Token(), "a function call requires a function body context")
	}

	name, ok := call.Target.(*ast.Name)
	if !ok {
		return value{}, diag.New(diag.CodeError, call.Target.Token(), "call target must be a function name")
	}
	fn, ok := cg.unit.Functions.Get(name.Ident)
	if !ok {
		return value{}, diag.New(diag.TypeError, call.Token(), "call to undeclared function %q", name.Ident)
	}
	if len(call.Args) != len(fn.Args) {
		return value{}, diag.New(diag.TypeError, call.Token(), "function %q expects %d argument(s), got %d", name.Ident, len(fn.Args), len(call.Args))
	}

	temps := make([]string, len(call.Args))
	for i, argExpr := range call.Args {
		v, err := cg.genExpr(f, argExpr, false)
		if err != nil {
			return value{}, err
		}
		converted, err := cg.convertTo(f, v, fn.Args[i].Type)
		if err != nil {
			return value{}, err
		}

		tmp := fmt.Sprintf("__arg%d_%d", f.tempCounter, i)
		f.tempCounter++
		if _, err := f.allocate(tmp, fn.Args[i].Type, true); err != nil {
			return value{}, err
		}
		l, _ := f.lookup(tmp)
		if err := cg.spillArg(f, l, converted); err != nil {
			return value{}, err
		}
		temps[i] = tmp
	}

	intIdx, floatIdx := 0, 0
	for _, tmp := range temps {
		l, _ := f.lookup(tmp)
		if isFloatType(l.typ) {
			if floatIdx >= len(floatArgRegs) {
				return value{}, diag.New(diag.CodeError, call.Token(), "call to %q passes more than %d float arguments, beyond the SysV register convention", name.Ident, len(floatArgRegs))
			}
			mnemonic := "movsd"
			if l.typ.(ast.Number).Name == "float" {
				mnemonic = "movss"
			}
			f.emit("%s\t%s, %%%s", mnemonic, asmLocalOperand(l.offset), floatArgRegs[floatIdx])
			floatIdx++
		} else {
			if intIdx >= len(intArgRegs) {
				return value{}, diag.New(diag.CodeError, call.Token(), "call to %q passes more than %d integer/pointer arguments, beyond the SysV register convention", name.Ident, len(intArgRegs))
			}
			f.emit("mov%s\t%s, %%%s", sizeSuffix(l.size), asmLocalOperand(l.offset), argSubRegister(intArgRegs[intIdx], l.size))
			intIdx++
		}
	}

	for i := len(temps) - 1; i >= 0; i-- {
		if err := f.deallocateTemp(temps[i]); err != nil {
			return value{}, err
		}
	}

	f.emit("call\t%s", name.Ident)
	return value{Type: fn.Return, InReg: true}, nil
}

// spillArg writes an already-converted argument value into its freshly
// allocated stack temp, mirroring genBinaryGeneric's own LHS spill (ops.go)
// but also handling the immediate case, since an un-evaluated literal
// argument (e.g. 'f(5)') never touches a register before this point.
func (cg *CodeGenerator) spillArg(f *frame, l *local, v value) error {
	if isFloatType(l.typ) {
		mnemonic := "movsd"
		if l.typ.(ast.Number).Name == "float" {
			mnemonic = "movss"
		}
		if !v.InReg {
			label := cg.emitFloatConst(v)
			f.emit("%s\t%s(%%rip), %%xmm0", mnemonic, label)
		}
		f.emit("%s\t%%xmm0, %s", mnemonic, asmLocalOperand(l.offset))
		return nil
	}
	if !v.InReg {
		f.emit("mov%s\t$%d, %s", sizeSuffix(l.size), v.Int, asmLocalOperand(l.offset))
		return nil
	}
	f.emit("mov%s\t%%rax, %s", sizeSuffix(l.size), asmLocalOperand(l.offset))
	return nil
}
