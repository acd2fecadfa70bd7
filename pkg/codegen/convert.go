package codegen

import (
	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/types"
)

// convertTo implements spec.md §4.5 step 5's "explicit conversion table":
// int->int narrowing/widening via movzx/movsx, float<->float via
// cvtss2sd/cvtsd2ss, int<->float via cvtsi2ss/cvttss2si. When 'v' is still
// an immediate, the conversion is folded directly in Go arithmetic instead
// of emitted as an instruction.
func (cg *CodeGenerator) convertTo(f *frame, v value, to ast.Type) (value, error) {
	toNum, ok := to.(ast.Number)
	if !ok {
		return value{}, diag.New(diag.TypeError, nil, "cannot convert to non-numeric type")
	}
	fromName := v.numberName()
	if fromName == "" {
		return value{}, diag.New(diag.TypeError, nil, "cannot convert a non-numeric value")
	}
	if fromName == toNum.Name {
		return value{Type: to, InReg: v.InReg, Int: v.Int, Float: v.Float}, nil
	}

	if !v.InReg {
		return mustConvertImm(v, to), nil
	}

	fromFloat, toFloat := types.IsFloating(fromName), types.IsFloating(toNum.Name)
	switch {
	case !fromFloat && !toFloat:
		cg.emitIntToIntConversion(f, fromName, toNum.Name)
	case fromFloat && toFloat:
		cg.emitFloatToFloatConversion(f, fromName, toNum.Name)
	case !fromFloat && toFloat:
		cg.emitIntToFloatConversion(f, fromName, toNum.Name)
	case fromFloat && !toFloat:
		cg.emitFloatToIntConversion(f, fromName, toNum.Name)
	}
	return value{Type: to, InReg: true}, nil
}

// emitIntToIntConversion narrows/widens the integer in '%rax' in place.
// Widening a signed source uses movsx, an unsigned one movzx; narrowing
// needs no instruction since the wider register already holds the value
// in its low bytes.
func (cg *CodeGenerator) emitIntToIntConversion(f *frame, from, to string) {
	fromSize, toSize := types.NumberSize(from), types.NumberSize(to)
	if toSize <= fromSize {
		return
	}
	mnemonic := "movzx"
	if !types.IsUnsigned(from) {
		mnemonic = "movsx"
	}
	f.emit("%s\t%%%s, %%rax", mnemonic, subRegister("rax", fromSize))
}

func (cg *CodeGenerator) emitFloatToFloatConversion(f *frame, from, to string) {
	if from == "float" && to == "double" {
		f.emit("cvtss2sd\t%%xmm0, %%xmm0")
	} else if from == "double" && to == "float" {
		f.emit("cvtsd2ss\t%%xmm0, %%xmm0")
	}
}

func (cg *CodeGenerator) emitIntToFloatConversion(f *frame, from, to string) {
	mnemonic := "cvtsi2sd"
	if to == "float" {
		mnemonic = "cvtsi2ss"
	}
	f.emit("%s\t%%rax, %%xmm0", mnemonic)
}

func (cg *CodeGenerator) emitFloatToIntConversion(f *frame, from, to string) {
	mnemonic := "cvttsd2si"
	if from == "float" {
		mnemonic = "cvttss2si"
	}
	f.emit("%s\t%%xmm0, %%rax", mnemonic)
}

// subRegister returns the sub-register name ('%rax' narrowed to a given
// byte width) used as the movzx/movsx source operand.
func subRegister(reg64 string, size int) string {
	base := reg64[1:] // "rax" -> "ax"
	switch size {
	case 1:
		return base[:1] + "l" // "al"
	case 2:
		return base // "ax"
	case 4:
		return "e" + base // "eax"
	default:
		return reg64
	}
}
