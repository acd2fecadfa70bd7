package reducer

import (
	"testing"

	"its-hmny.dev/minic64/pkg/token"
)

func tok(kind token.Kind, value string) *token.Token {
	t, _ := token.NewToken(kind, value, 0, 0, nil, nil)
	return t
}

func leafValues(nodes []*Node) []string {
	var out []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			out = append(out, n.Leaf.Value)
			return
		}
		for _, tk := range n.Tokens {
			_ = tk
		}
		for _, g := range n.Groups {
			for _, c := range g {
				walk(c)
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func delimValues(nodes []*Node) []string {
	var out []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			return
		}
		for _, tk := range n.Tokens {
			out = append(out, tk.Value)
		}
		for _, g := range n.Groups {
			for _, c := range g {
				walk(c)
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// TestBracketRoundTrip exercises spec.md §8: for a balanced-bracket stream,
// the leaves concatenated with the delimiter tokens reproduce the original.
func TestBracketRoundTrip(t *testing.T) {
	toks := []*token.Token{
		tok(token.Name, "f"),
		tok(token.Bracket, "("),
		tok(token.Name, "a"),
		tok(token.Comma, ","),
		tok(token.Name, "b"),
		tok(token.Bracket, ")"),
	}

	out, err := Reduce(Root(toks), []Rule{BracketRule})
	if err != nil {
		t.Fatalf("Reduce: %s", err)
	}

	merged := append(leafValues(out), delimValues(out)...)
	if len(merged) != len(toks) {
		t.Fatalf("expected %d tokens reproduced, got %d: %v", len(toks), len(merged), merged)
	}

	want := map[string]bool{}
	for _, tk := range toks {
		want[tk.Value] = true
	}
	for _, v := range merged {
		if !want[v] {
			t.Errorf("unexpected token %q in reproduced stream", v)
		}
	}
}

func TestBracketRuleMismatch(t *testing.T) {
	toks := []*token.Token{tok(token.Bracket, "("), tok(token.Name, "a"), tok(token.Bracket, "]")}
	if _, err := Reduce(Root(toks), []Rule{BracketRule}); err == nil {
		t.Fatalf("expected mismatched-bracket error")
	}
}

func TestBracketRuleUnclosed(t *testing.T) {
	toks := []*token.Token{tok(token.Bracket, "("), tok(token.Name, "a")}
	if _, err := Reduce(Root(toks), []Rule{BracketRule}); err == nil {
		t.Fatalf("expected unclosed-bracket error")
	}
}

// TestOperatorPrecedence exercises spec.md §8: 'a = b + c * d' groups as
// 'a = (b + (c * d))'.
func TestOperatorPrecedence(t *testing.T) {
	toks := []*token.Token{
		tok(token.Name, "a"), tok(token.Operator, "="),
		tok(token.Name, "b"), tok(token.Operator, "+"),
		tok(token.Name, "c"), tok(token.Operator, "*"), tok(token.Name, "d"),
	}

	out, err := Reduce(Root(toks), Pipeline())
	if err != nil {
		t.Fatalf("Reduce: %s", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected a single root node, got %d", len(out))
	}

	assign := out[0]
	if len(assign.Tokens) != 1 || assign.Tokens[0].Value != "=" {
		t.Fatalf("expected root split on '=', got tokens %v", delimValues([]*Node{assign}))
	}
	if len(assign.Groups) != 2 {
		t.Fatalf("expected 2 groups around '=', got %d", len(assign.Groups))
	}

	rhs := assign.Groups[1]
	if len(rhs) != 1 {
		t.Fatalf("expected rhs to collapse to one node, got %d", len(rhs))
	}
	plus := rhs[0]
	if len(plus.Tokens) != 1 || plus.Tokens[0].Value != "+" {
		t.Fatalf("expected rhs split on '+', got tokens %v", delimValues([]*Node{plus}))
	}

	mulSide := plus.Groups[1]
	if len(mulSide) != 1 {
		t.Fatalf("expected '*' side to collapse to one node, got %d", len(mulSide))
	}
	mul := mulSide[0]
	if len(mul.Tokens) != 1 || mul.Tokens[0].Value != "*" {
		t.Fatalf("expected innermost split on '*', got tokens %v", delimValues([]*Node{mul}))
	}
}

func TestSplitOnNoMatchReturnsUnchanged(t *testing.T) {
	toks := []*token.Token{tok(token.Name, "a"), tok(token.Name, "b")}
	out, err := Reduce(Root(toks), []Rule{SplitOn(Pattern{Kind: token.Semicolon})})
	if err != nil {
		t.Fatalf("Reduce: %s", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected unchanged 2-node list, got %d", len(out))
	}
}
