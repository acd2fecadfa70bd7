package lexer

// operatorTrie implements the "maximal munch" operator recognizer from
// spec.md §4.1, built the same way original_source/pycomp/src/lexer.py
// builds 'operator_tree': each operator string is inserted character by
// character; a trie node that terminates an operator carries its literal
// value so "extensible" vs "terminal" can be told apart while scanning.
type operatorTrie struct {
	children map[byte]*operatorTrie
	terminal string // non-empty if an operator ends exactly here
}

func newOperatorTrie(operators []string) *operatorTrie {
	root := &operatorTrie{children: map[byte]*operatorTrie{}}
	for _, op := range operators {
		node := root
		for i := 0; i < len(op); i++ {
			c := op[i]
			next, ok := node.children[c]
			if !ok {
				next = &operatorTrie{children: map[byte]*operatorTrie{}}
				node.children[c] = next
			}
			node = next
		}
		node.terminal = op
	}
	return root
}

// operatorChars returns the set of bytes that can appear anywhere in any
// recognized operator — used to build the 'init'/'oper' state's explicit
// char-class, mirroring 'operator_char' in the Python original.
func operatorChars(operators []string) []byte {
	seen := map[byte]bool{}
	var out []byte
	for _, op := range operators {
		for i := 0; i < len(op); i++ {
			if !seen[op[i]] {
				seen[op[i]] = true
				out = append(out, op[i])
			}
		}
	}
	return out
}

// checkResult is the three-way outcome of extending a partially-scanned
// operator string with one more candidate byte (or, with wantExtend=false,
// of checking whether the string so far is itself a valid operator).
type checkResult int

const (
	checkError checkResult = iota
	checkExtensible
	checkLast
)

// check walks 'last' through the trie, then reports whether 'curr' would
// extend it further ("extensible"), whether 'last' alone is already a
// complete operator ("last"), or neither ("error"). curr < 0 means "just
// check whether 'last' is valid on its own" (the Python '-1' sentinel).
func (t *operatorTrie) check(last string, curr int) checkResult {
	node := t
	for i := 0; i < len(last); i++ {
		next, ok := node.children[last[i]]
		if !ok {
			return checkError
		}
		node = next
	}

	if curr >= 0 {
		if _, ok := node.children[byte(curr)]; ok {
			return checkExtensible
		}
	}
	if node.terminal != "" {
		return checkLast
	}
	return checkError
}
