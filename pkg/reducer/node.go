// Package reducer turns a flat token stream into a nested parse tree by
// repeatedly applying rewrite rules (spec.md §4.2): bracket matching,
// delimiter splitting, and operator-precedence layering. It is grounded on
// the post-order tree-rewriting style of
// original_source/pycomp/src/parse_tree.py, translated into a Go sum type
// per spec.md §9 ("Tuples-as-tree nodes").
package reducer

import "its-hmny.dev/minic64/pkg/token"

// Node is either a single leftover Token or an internal node produced by a
// rule: 'tokens' are the delimiter tokens consumed at this level (in order)
// and 'groups' are the spans between them. A splitting rule keeps
// len(groups) == len(tokens)+1 (or len(groups) == 1 when tokens is empty);
// a bracket node is the one exception, holding its [open, close] pair as
// tokens and the enclosed span as its sole group.
type Node struct {
	Leaf *token.Token // non-nil for a leaf node

	Tokens []*token.Token // delimiter tokens, in order; empty for a leaf or a bare wrapper
	Groups [][]*Node      // len(Tokens)+1 for a split, 1 for a bracket pair or a bare wrapper
}

// NewLeaf wraps a single token as a leaf Node.
func NewLeaf(tok *token.Token) *Node { return &Node{Leaf: tok} }

// NewInner builds an internal node from delimiter tokens and their spans.
func NewInner(tokens []*token.Token, groups [][]*Node) *Node {
	return &Node{Tokens: tokens, Groups: groups}
}

// IsLeaf reports whether this node wraps a single token.
func (n *Node) IsLeaf() bool { return n.Leaf != nil }

// FirstToken returns the first token reachable from this node by always
// descending into the first group — used to anchor diagnostics and to peek
// at a group's leading keyword (spec.md §4.3's top-level dispatcher).
func (n *Node) FirstToken() *token.Token {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return n.Leaf
	}
	if len(n.Tokens) > 0 {
		if len(n.Groups) > 0 && len(n.Groups[0]) > 0 {
			if t := n.Groups[0][0].FirstToken(); t != nil {
				return t
			}
		}
		return n.Tokens[0]
	}
	for _, g := range n.Groups {
		for _, child := range g {
			if t := child.FirstToken(); t != nil {
				return t
			}
		}
	}
	return nil
}

// Root turns an entire token stream into one leaf node per token. That list
// is the top-level group the rule pipeline starts from (spec.md §4.2); no
// enclosing root node is built around it.
func Root(tokens []*token.Token) []*Node {
	out := make([]*Node, len(tokens))
	for i, tok := range tokens {
		out[i] = NewLeaf(tok)
	}
	return out
}
