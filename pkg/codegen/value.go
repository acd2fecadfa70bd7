package codegen

import (
	"fmt"
	"os"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/types"
)

// value is the two-result protocol of spec.md §4.5: either the expression's
// result already lives in the canonical register for its kind ('%rax' for
// integers/pointers, '%xmm0' for floats), or it is still a compile-time
// immediate carried in Int/Float.
type value struct {
	Type  ast.Type
	InReg bool
	Int   int64   // valid when !InReg and the type is integer/pointer
	Float float64 // valid when !InReg and the type is float/double
}

func (v value) numberName() string {
	n, ok := v.Type.(ast.Number)
	if !ok {
		return ""
	}
	return n.Name
}

func regImm(t ast.Type, i int64) value   { return value{Type: t, Int: i} }
func regFlt(t ast.Type, f float64) value { return value{Type: t, Float: f} }

// immLiteral renders an immediate value's text for use in a '$...' operand
// or a data-section directive.
func (v value) immLiteral() string {
	if types.IsFloating(v.numberName()) {
		if v.numberName() == "float" {
			return fmt.Sprintf("0x%x", float32Bits(float32(v.Float)))
		}
		return fmt.Sprintf("0x%x", float64Bits(v.Float))
	}
	return fmt.Sprintf("%d", v.Int)
}

// foldImmediate folds 'op' over two immediate values whose types have
// already been unified to 'result' (spec.md §4.5 step 4), printing a
// warning and continuing in wrapping mode on integer overflow.
func foldImmediate(op string, lhs, rhs value, result ast.Type) (value, error) {
	name := ""
	if n, ok := result.(ast.Number); ok {
		name = n.Name
	}

	if types.IsFloating(name) {
		out, err := foldFloat(op, lhs.Float, rhs.Float)
		if err != nil {
			return value{}, err
		}
		return regFlt(result, out), nil
	}

	var out int64
	var wrapErr error
	switch name {
	case "i8":
		v, err := foldInt[int8](op, int8(lhs.Int), int8(rhs.Int))
		out, wrapErr = int64(v), err
	case "u8":
		v, err := foldInt[uint8](op, uint8(lhs.Int), uint8(rhs.Int))
		out, wrapErr = int64(v), err
	case "i16":
		v, err := foldInt[int16](op, int16(lhs.Int), int16(rhs.Int))
		out, wrapErr = int64(v), err
	case "u16":
		v, err := foldInt[uint16](op, uint16(lhs.Int), uint16(rhs.Int))
		out, wrapErr = int64(v), err
	case "i32":
		v, err := foldInt[int32](op, int32(lhs.Int), int32(rhs.Int))
		out, wrapErr = int64(v), err
	case "u32":
		v, err := foldInt[uint32](op, uint32(lhs.Int), uint32(rhs.Int))
		out, wrapErr = int64(v), err
	case "i64":
		v, err := foldInt[int64](op, lhs.Int, rhs.Int)
		out, wrapErr = v, err
	case "u64":
		v, err := foldInt[uint64](op, uint64(lhs.Int), uint64(rhs.Int))
		out, wrapErr = int64(v), err
	default:
		return value{}, fmt.Errorf("cannot fold non-numeric type %q", name)
	}

	if wrapErr != nil {
		if _, isOverflow := wrapErr.(*overflowWarning); !isOverflow {
			return value{}, wrapErr
		}
		fmt.Fprintf(os.Stderr, "(Warning): %v\n", wrapErr)
	}
	return regImm(result, out), nil
}
