package types

// numericRank implements spec.md §4.4/§6.2's "precedence rank" table:
// i8<i16<i32<i64, 'u' ranks one above the signed type of the same width,
// and float/double rank above every integer (double above float). The
// rank of the wider operand wins a binary operator's result type.
var numericRank = map[string]int{
	"i8": 0, "u8": 1,
	"i16": 2, "u16": 3,
	"i32": 4, "u32": 5,
	"i64": 6, "u64": 7,
	"float":  8,
	"double": 9,
}

// RankOf returns a primitive numeric type name's precedence rank, or -1 if
// the name isn't a recognized numeric primitive.
func RankOf(name string) int {
	if r, ok := numericRank[name]; ok {
		return r
	}
	return -1
}

// RankMax returns whichever of 'a'/'b' ranks higher per spec.md §6.2 step 3
// ("Let T = rank-max(LHS type, RHS type)").
func RankMax(a, b string) string {
	if RankOf(a) >= RankOf(b) {
		return a
	}
	return b
}

// IsUnsigned reports whether a primitive numeric type name is unsigned.
func IsUnsigned(name string) bool {
	switch name {
	case "u8", "u16", "u32", "u64":
		return true
	default:
		return false
	}
}

// IsFloating reports whether a primitive numeric type name is a
// floating-point type.
func IsFloating(name string) bool {
	return name == "float" || name == "double"
}
