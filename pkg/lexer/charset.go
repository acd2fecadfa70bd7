package lexer

// Character-class helpers, a direct port of the 'CharSets' member functions
// in original_source/pycomp/src/lexer.py.

func whitespaceChars() []byte { return []byte(" \t\n") }

func digitChars() []byte {
	var out []byte
	for c := byte('0'); c <= '9'; c++ {
		out = append(out, c)
	}
	return out
}

func letterChars() []byte {
	var out []byte
	for c := byte('a'); c <= 'z'; c++ {
		out = append(out, c)
	}
	for c := byte('A'); c <= 'Z'; c++ {
		out = append(out, c)
	}
	return out
}

func hexChars() []byte {
	out := digitChars()
	for c := byte('a'); c <= 'f'; c++ {
		out = append(out, c)
	}
	for c := byte('A'); c <= 'F'; c++ {
		out = append(out, c)
	}
	return out
}

func bracketChars() []byte { return []byte("()[]{}") }

// legibleChars is the printable ASCII range plus tab, used to bound string
// body characters.
func legibleChars() []byte {
	var out []byte
	for c := byte(' '); c <= '~'; c++ {
		out = append(out, c)
	}
	out = append(out, '\t')
	return out
}

func allBytes() []byte {
	out := make([]byte, 256)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

// minus returns base with every byte in sub removed, mirroring 'CharSets.minus'.
func minus(base, sub []byte) []byte {
	excl := map[byte]bool{}
	for _, c := range sub {
		excl[c] = true
	}
	var out []byte
	for _, c := range base {
		if !excl[c] {
			out = append(out, c)
		}
	}
	return out
}

func concat(sets ...[]byte) []byte {
	var out []byte
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
