package ast

import (
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/reducer"
	"its-hmny.dev/minic64/pkg/token"
)

// translateExprGroup dispatches a node list at expression position through
// the cases of spec.md §4.3: a lone node recurses through translateExprNode;
// a leading 'var'/'const'/'return' keyword is handled before anything else;
// otherwise the list is a function-call chain.
func translateExprGroup(nodes []*reducer.Node) (Expression, error) {
	nodes = nonEmpty(nodes)
	if len(nodes) == 0 {
		return nil, errPT(nil, "expected an expression, found nothing")
	}
	if len(nodes) == 1 {
		return translateExprNode(nodes[0])
	}

	if lead := firstLeaf(nodes[:1]); lead != nil && lead.Kind == token.Keyword {
		switch lead.Value {
		case "var", "const":
			return translateLocalDecl(nodes)
		case "return":
			return translateReturn(nodes)
		}
	}

	return translateCallChain(nodes)
}

// translateExprNode handles a single node: a leaf, a bracket-wrapped group,
// or an operator-split node.
func translateExprNode(n *reducer.Node) (Expression, error) {
	if n.IsLeaf() {
		return leafExpr(n.Leaf)
	}
	if inner, ok := unpackBracket(n, "("); ok {
		return translateExprGroup(inner)
	}
	if inner, ok := unpackBracket(n, "{"); ok {
		body, err := translateScopeBody(inner)
		if err != nil {
			return nil, err
		}
		return &Scope{base: base{Tok: n.Tokens[0]}, Body: body}, nil
	}
	if len(n.Tokens) > 0 && n.Tokens[0].Kind == token.Operator {
		return translateOperatorNode(n)
	}
	if len(n.Tokens) == 0 && len(n.Groups) == 1 {
		return translateExprGroup(n.Groups[0])
	}
	return nil, errPT(findFirstTokenRecursively(n), "unrecognized expression shape")
}

func leafExpr(tok *token.Token) (Expression, error) {
	switch tok.Kind {
	case token.Name:
		return &Name{base: base{Tok: tok}, Ident: tok.Value}, nil
	case token.Num:
		return &Number{base: base{Tok: tok}, Literal: tok.Value}, nil
	case token.Str:
		return &String{base: base{Tok: tok}, Literal: tok.Value}, nil
	default:
		return nil, errPT(tok, "unexpected token %q in expression position", tok.Value)
	}
}

func translateLocalDecl(nodes []*reducer.Node) (Expression, error) {
	if len(nodes) < 3 {
		return nil, errPT(findFirstTokenRecursively(nodes[0]), "malformed local declaration")
	}
	kw := nodes[0].Leaf
	nameNode := nodes[len(nodes)-1]
	if !tokenEquals(nameNode, token.Name, "") {
		return nil, errPT(findFirstTokenRecursively(nameNode), "expected an identifier in declaration")
	}
	typ, err := parseType(nodes[1 : len(nodes)-1])
	if err != nil {
		return nil, err
	}
	return &Declaration{base: base{Tok: kw}, Mutable: kw.Value == "var", Type: typ, Name: nameNode.Leaf.Value}, nil
}

func translateReturn(nodes []*reducer.Node) (Expression, error) {
	kw := nodes[0].Leaf
	rest := nodes[1:]
	if len(rest) == 0 {
		return &Return{base: base{Tok: kw}}, nil
	}
	expr, err := translateExprGroup(rest)
	if err != nil {
		return nil, err
	}
	if !expr.Readable() {
		return nil, diag.New(diag.TypeError, expr.Token(), "return expression is not readable")
	}
	return &Return{base: base{Tok: kw}, Expr: expr}, nil
}

// translateOperatorNode implements spec.md §4.3's operator disambiguation:
// assignment ops fold left-to-right; '+ -' and '* /' fold right-to-left,
// with '-'/'*' recognized as right-unary when their left sub-group is
// empty. Every other operator token reaches this point only to be rejected
// (spec.md §9: "implementations should reject them at AST time").
func translateOperatorNode(n *reducer.Node) (Expression, error) {
	// The reducer splits 'return -1' or 'return a + b' on the operator first,
	// leaving 'return' at the head of the first group: peel it off here.
	if g0 := n.Groups[0]; len(g0) > 0 && tokenEquals(g0[0], token.Keyword, "return") {
		inner := reducer.NewInner(n.Tokens, append([][]*reducer.Node{g0[1:]}, n.Groups[1:]...))
		return translateReturn([]*reducer.Node{g0[0], inner})
	}

	for _, tk := range n.Tokens {
		if tk.Value == "%" {
			return nil, errPT(tk, "operator '%%' has no AST lowering")
		}
	}

	op0 := n.Tokens[0].Value
	switch {
	case isAssignOp(op0):
		return foldAssignment(n)
	case op0 == "+" || op0 == "-":
		return foldBinary(n, true, map[string]bool{"-": true})
	case op0 == "*" || op0 == "/":
		return foldBinary(n, true, map[string]bool{"*": true})
	default:
		return nil, errPT(n.Tokens[0], "operator %q has no AST lowering", op0)
	}
}

func isAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "/=", "*=":
		return true
	}
	return false
}

// foldAssignment folds left-to-right (spec.md §4.3): "a = b = c" groups as
// "(a = b) = c".
func foldAssignment(n *reducer.Node) (Expression, error) {
	operands := make([]Expression, len(n.Groups))
	for i, g := range n.Groups {
		e, err := translateExprGroup(g)
		if err != nil {
			return nil, err
		}
		operands[i] = e
	}

	acc := operands[0]
	for i, tk := range n.Tokens {
		rhs := operands[i+1]
		if !acc.Writable() {
			return nil, diag.New(diag.TypeError, acc.Token(), "left-hand side of assignment is not writable")
		}
		if !rhs.Readable() {
			return nil, diag.New(diag.TypeError, rhs.Token(), "right-hand side of assignment is not readable")
		}
		if tk.Value != "=" && !acc.Readable() {
			return nil, diag.New(diag.TypeError, acc.Token(), "read-modify-write assignment requires a readable left-hand side")
		}
		acc = &Assignment{base: base{Tok: tk}, Op: tk.Value, LHS: acc, RHS: rhs}
	}
	return acc, nil
}

// foldBinary folds '+ -' and '* /' right-to-left, recognizing '-'/'*' as
// right-unary wherever their immediately preceding sub-group is empty — not
// only at the very start of the sequence. Same-precedence chains like
// 'a - -b' or 'a * *b' surface that empty group in the middle of n.Groups
// (the reducer splits "a - -b" into Tokens=[-,-], Groups=[[a],[],[b]]), so
// every group/token position is checked, via parseUnaryOperand.
func foldBinary(n *reducer.Node, rightToLeft bool, unaryOps map[string]bool) (Expression, error) {
	tokens := n.Tokens
	groups := n.Groups

	first, idx, err := parseUnaryOperand(tokens, groups, 0, unaryOps)
	if err != nil {
		return nil, err
	}
	operands := []Expression{first}
	var binTokens []*token.Token
	for idx < len(groups) {
		binTokens = append(binTokens, tokens[idx-1])
		operand, next, err := parseUnaryOperand(tokens, groups, idx, unaryOps)
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
		idx = next
	}

	if len(binTokens) == 0 {
		return operands[0], nil
	}

	if rightToLeft {
		acc := operands[len(operands)-1]
		for i := len(binTokens) - 1; i >= 0; i-- {
			lhs := operands[i]
			if !lhs.Readable() || !acc.Readable() {
				return nil, diag.New(diag.TypeError, binTokens[i], "operands of %q must be readable", binTokens[i].Value)
			}
			acc = &BinOp{base: base{Tok: binTokens[i]}, Op: binTokens[i].Value, LHS: lhs, RHS: acc}
		}
		return acc, nil
	}

	acc := operands[0]
	for i, tk := range binTokens {
		rhs := operands[i+1]
		if !acc.Readable() || !rhs.Readable() {
			return nil, diag.New(diag.TypeError, tk, "operands of %q must be readable", tk.Value)
		}
		acc = &BinOp{base: base{Tok: tk}, Op: tk.Value, LHS: acc, RHS: rhs}
	}
	return acc, nil
}

// parseUnaryOperand parses the operand beginning at groups[idx], absorbing
// a run of empty groups as nested right-unary operators: an empty
// groups[idx] paired with a unary-capable tokens[idx] means tokens[idx]
// applies right-unary to whatever operand starts at idx+1 (which may itself
// be another empty group starting another unary layer, e.g. 'a - - -b').
// Returns the parsed expression and the group index immediately following
// everything it consumed.
func parseUnaryOperand(tokens []*token.Token, groups [][]*reducer.Node, idx int, unaryOps map[string]bool) (Expression, int, error) {
	if len(groups[idx]) == 0 && idx < len(tokens) && unaryOps[tokens[idx].Value] {
		arg, next, err := parseUnaryOperand(tokens, groups, idx+1, unaryOps)
		if err != nil {
			return nil, 0, err
		}
		if !arg.Readable() {
			return nil, 0, diag.New(diag.TypeError, arg.Token(), "unary operand is not readable")
		}
		return &UnaryOp{base: base{Tok: tokens[idx]}, Op: tokens[idx].Value, Arg: arg, Right: true}, next, nil
	}
	expr, err := translateExprGroup(groups[idx])
	if err != nil {
		return nil, err
	}
	return expr, idx + 1, nil
}

// translateCallChain implements spec.md §4.3's call chaining: "f args"
// becomes a FunctionCall; "f a b" folds as "(f a) b", each subsequent node
// becoming a one-argument call on the accumulated target unless it is
// itself a parenthesized, comma-split argument list.
func translateCallChain(nodes []*reducer.Node) (Expression, error) {
	target, err := translateExprNode(nodes[0])
	if err != nil {
		return nil, err
	}
	for _, argNode := range nodes[1:] {
		if !target.Readable() {
			return nil, diag.New(diag.TypeError, target.Token(), "call target is not readable")
		}
		args, err := callArgs(argNode)
		if err != nil {
			return nil, err
		}
		target = &FunctionCall{base: base{Tok: findFirstTokenRecursively(argNode)}, Target: target, Args: args}
	}
	return target, nil
}

func callArgs(n *reducer.Node) ([]Expression, error) {
	if inner, ok := unpackBracket(n, "("); ok {
		var args []Expression
		for _, slot := range splitOnComma(inner) {
			slot = nonEmpty(slot)
			if len(slot) == 0 {
				continue
			}
			e, err := translateExprGroup(slot)
			if err != nil {
				return nil, err
			}
			args = append(args, e)
		}
		return args, nil
	}
	e, err := translateExprNode(n)
	if err != nil {
		return nil, err
	}
	return []Expression{e}, nil
}
