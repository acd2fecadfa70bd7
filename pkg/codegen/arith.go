// Package codegen's arith.go implements spec.md §4.5 step 4's immediate
// constant folding generically over Go's integer/float constraint sets
// (golang.org/x/exp/constraints), rather than duplicating the same fold
// once per i8/u8/i16/u16/i32/u32/i64/u64/float/double pairing. Overflow
// traps by switching to two's-complement-wrapping arithmetic and returning
// an *overflowWarning, which foldImmediate prints as a non-fatal
// "(Warning): ..." line (spec.md §9: "overflow is silently wrapping and
// accompanied by a warning").
package codegen

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// overflowWarning marks a foldInt error as the non-fatal "wrapped and
// continued" case of spec.md §9, as opposed to a genuinely fatal fold
// error (division by zero, unsupported operator).
type overflowWarning struct{ msg string }

func (e *overflowWarning) Error() string { return e.msg }

// foldInt folds a binary integer operator over two values of the same
// width/signedness 'T', returning the wrapped result and, if the true
// (widened) result didn't fit in T, an *overflowWarning (never a fatal
// error) alongside it.
func foldInt[T constraints.Integer](op string, lhs, rhs T) (T, error) {
	wide := int64(lhs)
	wrhs := int64(rhs)
	var wideResult int64

	switch op {
	case "+":
		wideResult = wide + wrhs
	case "-":
		wideResult = wide - wrhs
	case "*":
		wideResult = wide * wrhs
	case "/":
		if wrhs == 0 {
			return 0, fmt.Errorf("division by zero in constant folding")
		}
		wideResult = wide / wrhs
	default:
		return 0, fmt.Errorf("unsupported integer fold operator %q", op)
	}

	result := T(wideResult)
	if int64(result) != wideResult {
		return result, &overflowWarning{msg: fmt.Sprintf("overflow folding %v %s %v (wrapped to %v)", lhs, op, rhs, result)}
	}
	return result, nil
}

// foldFloat folds a binary float operator over two IEEE-754 values of the
// same width 'T'. Float arithmetic never traps in the integer sense, so no
// warning path exists here (spec.md §9 only calls out integer overflow).
func foldFloat[T constraints.Float](op string, lhs, rhs T) (T, error) {
	switch op {
	case "+":
		return lhs + rhs, nil
	case "-":
		return lhs - rhs, nil
	case "*":
		return lhs * rhs, nil
	case "/":
		return lhs / rhs, nil
	default:
		return 0, fmt.Errorf("unsupported float fold operator %q", op)
	}
}

// float32Bits/float64Bits expose the IEEE-754 bit pattern used when
// emitting a float/double data item as its '.long'/'.quad' encoding
// (spec.md §8 scenario 2: "emitted as the IEEE-754 bit pattern").
func float32Bits(f float32) uint32 { return math.Float32bits(f) }
func float64Bits(f float64) uint64 { return math.Float64bits(f) }
