package reducer

import (
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/token"
)

// Rule rewrites one node-list at one level of nesting. Reduce (below) drives
// every rule through the whole tree post-order: a rule never needs to
// recurse into Groups itself.
type Rule func(nodes []*Node) ([]*Node, error)

// Reduce applies every rule in 'rules', in order, to the whole tree: each
// rule runs post-order (children before the node list itself), matching
// spec.md §4.2 ("each rule is a post-order rewrite").
func Reduce(nodes []*Node, rules []Rule) ([]*Node, error) {
	cur := nodes
	var err error
	for _, rule := range rules {
		cur, err = applyPostOrder(cur, rule)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func applyPostOrder(nodes []*Node, rule Rule) ([]*Node, error) {
	for _, n := range nodes {
		if n.IsLeaf() {
			continue
		}
		for gi, group := range n.Groups {
			rewritten, err := applyPostOrder(group, rule)
			if err != nil {
				return nil, err
			}
			n.Groups[gi] = rewritten
		}
	}
	return rule(nodes)
}

// BracketRule scans a node list left-to-right with a stack of pending opens;
// each '(' '[' '{' pushes, each matching closer pops and wraps the enclosed
// span into an internal node whose Tokens is [open, close] (spec.md §4.2).
func BracketRule(nodes []*Node) ([]*Node, error) {
	type frame struct {
		open     *token.Token
		startIdx int // index into 'out' where this bracket's content begins
	}

	var stack []frame
	var out []*Node

	for _, n := range nodes {
		if n.IsLeaf() && n.Leaf.Kind == token.Bracket {
			switch n.Leaf.Value {
			case "(", "[", "{":
				stack = append(stack, frame{open: n.Leaf, startIdx: len(out)})
				continue
			case ")", "]", "}":
				if len(stack) == 0 {
					return nil, diag.New(diag.ParseError, n.Leaf, "unmatched closing bracket %q", n.Leaf.Value)
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if !bracketsMatch(top.open.Value, n.Leaf.Value) {
					return nil, diag.New(diag.ParseError, n.Leaf,
						"mismatched brackets: %q opened at line %d, closed with %q",
						top.open.Value, top.open.Line+1, n.Leaf.Value).
						WithRelated(top.open)
				}

				enclosed := append([]*Node{}, out[top.startIdx:]...)
				out = out[:top.startIdx]
				out = append(out, NewInner([]*token.Token{top.open, n.Leaf}, [][]*Node{enclosed}))
				continue
			}
		}
		out = append(out, n)
	}

	if len(stack) > 0 {
		unclosed := stack[len(stack)-1]
		return nil, diag.New(diag.ParseError, unclosed.open, "unclosed bracket %q", unclosed.open.Value)
	}

	return out, nil
}

func bracketsMatch(open, close string) bool {
	switch open {
	case "(":
		return close == ")"
	case "[":
		return close == "]"
	case "{":
		return close == "}"
	}
	return false
}

// Pattern identifies a (kind, value) delimiter token the split rule factory
// recognizes; Value == "" matches any token of Kind.
type Pattern struct {
	Kind  token.Kind
	Value string
}

func (p Pattern) matches(tok *token.Token) bool {
	if tok.Kind != p.Kind {
		return false
	}
	return p.Value == "" || tok.Value == p.Value
}

// SplitOn builds a Rule that, if any top-level leaf in the node list matches
// one of 'patterns', collapses the whole list into one internal node whose
// Tokens are the matching occurrences (in order) and whose Groups are the
// n+1 between-spans (spec.md §4.2, "Delimiter-split factory"). A list with
// no match is returned unchanged.
func SplitOn(patterns ...Pattern) Rule {
	return func(nodes []*Node) ([]*Node, error) {
		var delims []*token.Token
		var groups [][]*Node
		var cur []*Node

		matched := false
		for _, n := range nodes {
			if n.IsLeaf() && matchesAny(n.Leaf, patterns) {
				matched = true
				delims = append(delims, n.Leaf)
				groups = append(groups, cur)
				cur = nil
				continue
			}
			cur = append(cur, n)
		}
		groups = append(groups, cur)

		if !matched {
			return nodes, nil
		}
		return []*Node{NewInner(delims, groups)}, nil
	}
}

func matchesAny(tok *token.Token, patterns []Pattern) bool {
	for _, p := range patterns {
		if p.matches(tok) {
			return true
		}
	}
	return false
}

// Pipeline is the fixed, precedence-ordered rule list from spec.md §4.2:
// brackets, then ';', then ',', then operators from loosest to tightest
// binding.
func Pipeline() []Rule {
	op := func(values ...string) Rule {
		patterns := make([]Pattern, len(values))
		for i, v := range values {
			patterns[i] = Pattern{Kind: token.Operator, Value: v}
		}
		return SplitOn(patterns...)
	}

	return []Rule{
		BracketRule,
		SplitOn(Pattern{Kind: token.Semicolon}),
		SplitOn(Pattern{Kind: token.Comma}),
		op("=", "+=", "-=", "/=", "*="),
		op("||"),
		op("&&"),
		op("|"),
		op("^"),
		op("&"),
		op("==", "!="),
		op("<", ">", "<=", ">="),
		op("<<", ">>"),
		op("+", "-"),
		op("*", "/", "%"),
		op("!", "~"),
		op("++", "--"),
		op("->", "."),
	}
}
