package ast

import (
	"its-hmny.dev/minic64/pkg/reducer"
	"its-hmny.dev/minic64/pkg/token"
)

// parseType recognizes the type grammar of spec.md §4.3: a primitive name, a
// struct name, '*T' (chained left-to-right into nested pointers), or
// 'return_t(arg_t, arg_t, …)' for a function type.
func parseType(nodes []*reducer.Node) (Type, error) {
	nodes = nonEmpty(nodes)
	if len(nodes) == 0 {
		return nil, errPT(nil, "expected a type, found nothing")
	}

	if len(nodes) == 1 {
		return parseTypeNode(nodes[0])
	}

	// 'return_t(arg_t, ...)': a base type immediately followed by a
	// parenthesized argument-type list.
	if argTokens, ok := unpackBracket(nodes[len(nodes)-1], "("); ok {
		retType, err := parseType(nodes[:len(nodes)-1])
		if err != nil {
			return nil, err
		}
		var argTypes []Type
		for _, slot := range splitOnComma(argTokens) {
			slot = nonEmpty(slot)
			if len(slot) == 0 {
				continue
			}
			argType, err := parseType(slot)
			if err != nil {
				return nil, err
			}
			argTypes = append(argTypes, argType)
		}
		return FuncType{Return: retType, Args: argTypes}, nil
	}

	return nil, errPT(findFirstTokenRecursively(nodes[0]), "malformed type expression")
}

func parseTypeNode(n *reducer.Node) (Type, error) {
	n = strip(n)

	if n.IsLeaf() {
		return baseTypeFromToken(n.Leaf)
	}

	// Chained pointer: the reducer's '* / %' precedence pass produces a node
	// shaped like a right-unary '*' (empty leading group) for '*T', and the
	// same shape repeated for '* * T' (spec.md §4.3: "chained '*' ... is
	// reduced left-to-right as nested pointer types").
	if len(n.Tokens) >= 1 && allStars(n.Tokens) && allEmptyExceptLast(n.Groups) {
		inner, err := parseType(n.Groups[len(n.Groups)-1])
		if err != nil {
			return nil, err
		}
		for range n.Tokens {
			inner = Pointer{Inner: inner}
		}
		return inner, nil
	}

	return nil, errPT(findFirstTokenRecursively(n), "malformed type expression")
}

func allStars(toks []*token.Token) bool {
	for _, tk := range toks {
		if tk.Kind != token.Operator || tk.Value != "*" {
			return false
		}
	}
	return true
}

func allEmptyExceptLast(groups [][]*reducer.Node) bool {
	for i, g := range groups {
		if i == len(groups)-1 {
			continue
		}
		if len(g) != 0 {
			return false
		}
	}
	return true
}

func baseTypeFromToken(tok *token.Token) (Type, error) {
	switch tok.Kind {
	case token.Type:
		if tok.Value == "void" {
			return Void{}, nil
		}
		return Number{Name: tok.Value}, nil
	case token.Name:
		return StructRef{Name: tok.Value}, nil
	default:
		return nil, errPT(tok, "expected a type name, found %q", tok.Value)
	}
}
