package ast

import (
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/reducer"
	"its-hmny.dev/minic64/pkg/token"
)

// This file implements the recursive-descent translator of spec.md §4.3:
// the reducer's generic Node tree is walked to recognize the language's
// grammatical forms (declarations, definitions, expressions, types). It is
// grounded on the visitor-over-tuples walk of
// original_source/pycomp/src/ast_generator.py, re-expressed with the utility
// predicates spec.md §4.3 names explicitly (strip, unpack-brackets,
// match-delimiter-list, match-exact-children, token-equals,
// find-first-token-recursively).

// ---------------------------------------------------------------------------
// Utility predicates

// strip drops a wrapper node with no delimiter tokens and exactly one child,
// recursively, exposing the one meaningful node underneath.
func strip(n *reducer.Node) *reducer.Node {
	for !n.IsLeaf() && len(n.Tokens) == 0 && len(n.Groups) == 1 && len(n.Groups[0]) == 1 {
		n = n.Groups[0][0]
	}
	return n
}

// stripList applies strip to a single-element node list, returning the list
// unchanged if it doesn't have exactly one element.
func stripList(nodes []*reducer.Node) []*reducer.Node {
	if len(nodes) != 1 {
		return nodes
	}
	return []*reducer.Node{strip(nodes[0])}
}

// unpackBracket reports whether n is a bracket-matched node of the given
// open character and, if so, returns its sole enclosed group.
func unpackBracket(n *reducer.Node, open string) ([]*reducer.Node, bool) {
	if n.IsLeaf() || len(n.Tokens) != 2 || n.Tokens[0].Kind != token.Bracket || n.Tokens[0].Value != open {
		return nil, false
	}
	return n.Groups[0], true
}

// matchDelimiterList reports whether n was produced by a delimiter-split
// rule whose Tokens all satisfy 'pred', returning the delimiter tokens and
// the n+1 groups.
func matchDelimiterList(n *reducer.Node, pred func(*token.Token) bool) ([]*token.Token, [][]*reducer.Node, bool) {
	if n.IsLeaf() || len(n.Tokens) == 0 {
		return nil, nil, false
	}
	for _, tk := range n.Tokens {
		if !pred(tk) {
			return nil, nil, false
		}
	}
	return n.Tokens, n.Groups, true
}

func isOperator(value string) func(*token.Token) bool {
	return func(tk *token.Token) bool { return tk.Kind == token.Operator && tk.Value == value }
}

func anyOperator(values ...string) func(*token.Token) bool {
	set := map[string]bool{}
	for _, v := range values {
		set[v] = true
	}
	return func(tk *token.Token) bool { return tk.Kind == token.Operator && set[tk.Value] }
}

// matchExactChildren reports whether nodes has exactly k elements.
func matchExactChildren(nodes []*reducer.Node, k int) bool { return len(nodes) == k }

// tokenEquals reports whether n is a leaf matching (kind, value).
func tokenEquals(n *reducer.Node, kind token.Kind, value string) bool {
	return n.IsLeaf() && n.Leaf.Kind == kind && (value == "" || n.Leaf.Value == value)
}

// findFirstTokenRecursively anchors a diagnostic or a dispatch decision at
// the leftmost token reachable from n.
func findFirstTokenRecursively(n *reducer.Node) *token.Token { return n.FirstToken() }

func errPT(tok *token.Token, format string, args ...interface{}) error {
	return diag.New(diag.PTParseError, tok, format, args...)
}

// ---------------------------------------------------------------------------
// Program / top-level dispatcher

// TranslateProgram turns the fully-reduced tree (spec.md §4.2's output) into
// a Unit: split on ';', dispatch every non-empty group by its leading token
// (spec.md §4.3).
func TranslateProgram(nodes []*reducer.Node) (*Unit, error) {
	unit := NewUnit()
	for _, group := range topLevelGroups(nodes) {
		group = nonEmpty(group)
		if len(group) == 0 {
			continue
		}
		item, err := translateTopLevel(group)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		if err := registerTopLevel(unit, item); err != nil {
			return nil, err
		}
	}
	return unit, nil
}

func topLevelGroups(nodes []*reducer.Node) [][]*reducer.Node {
	if len(nodes) == 1 {
		if toks, groups, ok := matchDelimiterList(nodes[0], func(tk *token.Token) bool { return tk.Kind == token.Semicolon }); ok {
			_ = toks
			return groups
		}
	}
	return [][]*reducer.Node{nodes}
}

func nonEmpty(nodes []*reducer.Node) []*reducer.Node {
	if nodes == nil {
		return nil
	}
	return nodes
}

func registerTopLevel(unit *Unit, item TopLevel) error {
	name := item.Name()
	if existing, ok := unit.Names.Get(name); ok {
		if err := checkCompatibleRedeclaration(existing, item); err != nil {
			return err
		}
	} else {
		unit.Names.Set(name, item)
	}

	switch it := item.(type) {
	case *VarConst:
		unit.Vars.Set(name, it)
		if it.Init != nil {
			unit.Globals = append(unit.Globals, it)
		}
	case *Function:
		if existing, ok := unit.Functions.Get(name); ok {
			merged := mergeFunctionDecl(existing, it)
			unit.Functions.Set(name, merged)
			unit.Names.Set(name, merged)
		} else {
			unit.Functions.Set(name, it)
		}
	case *Struct:
		unit.Structs.Set(name, it)
	}
	return nil
}

// checkCompatibleRedeclaration enforces spec.md §3: a redeclaration must be
// compatible (identical signature, at most one initializer/body overall).
func checkCompatibleRedeclaration(existing, next TopLevel) error {
	switch e := existing.(type) {
	case *Function:
		n, ok := next.(*Function)
		if !ok {
			return errPT(next.Token(), "redeclaration of %q as a different kind of top-level item", next.Name())
		}
		if e.Return.String() != n.Return.String() || len(e.Args) != len(n.Args) {
			return diag.New(diag.TypeError, n.Tok, "incompatible redeclaration of function %q", n.Ident)
		}
		if e.Body != nil && n.Body != nil {
			return diag.New(diag.TypeError, n.Tok, "function %q defined more than once", n.Ident)
		}
		return nil
	case *VarConst:
		n, ok := next.(*VarConst)
		if !ok {
			return errPT(next.Token(), "redeclaration of %q as a different kind of top-level item", next.Name())
		}
		if e.Type.String() != n.Type.String() || e.Mutable != n.Mutable {
			return diag.New(diag.TypeError, n.Tok, "incompatible redeclaration of %q", n.Ident)
		}
		if e.Init != nil && n.Init != nil {
			return diag.New(diag.TypeError, n.Tok, "%q initialized more than once", n.Ident)
		}
		return nil
	case *Struct:
		return diag.New(diag.TypeError, next.Token(), "struct %q declared more than once", next.Name())
	default:
		return errPT(next.Token(), "redeclaration of %q", next.Name())
	}
}

func mergeFunctionDecl(existing, next *Function) *Function {
	merged := *existing
	if existing.Body == nil && next.Body != nil {
		merged.Body = next.Body
		merged.Tok = next.Tok
	}
	return &merged
}

// ---------------------------------------------------------------------------
// Top-level item translation

func translateTopLevel(group []*reducer.Node) (TopLevel, error) {
	lead := firstLeaf(group)
	if lead == nil {
		return nil, errPT(findFirstTokenRecursively(group[0]), "empty top-level item")
	}

	switch {
	case lead.Kind == token.Keyword && (lead.Value == "var" || lead.Value == "const"):
		return translateVarConst(group)
	case lead.Kind == token.Keyword && lead.Value == "function":
		return translateFunction(group)
	case lead.Kind == token.Keyword && lead.Value == "struct":
		return translateStruct(group)
	default:
		return nil, errPT(lead, "expected 'var', 'const', 'function' or 'struct', found %q", lead.Value)
	}
}

// firstLeaf returns the leaf token at the very front of 'nodes', descending
// into wrapper nodes as needed (so e.g. a lone keyword token inside an
// otherwise-flat group is still found).
func firstLeaf(nodes []*reducer.Node) *token.Token {
	if len(nodes) == 0 {
		return nil
	}
	n := strip(nodes[0])
	if n.IsLeaf() {
		return n.Leaf
	}
	return n.FirstToken()
}

// splitAssignAtTop reports whether 'group' is exactly one node produced by
// the top-level '=' split (spec.md §4.3: "contains '=' at top of group").
// It rejects '+= -= /= *=' here since those make no sense as an initializer.
func splitAssignAtTop(group []*reducer.Node) (lhs, rhs []*reducer.Node, ok bool) {
	if len(group) != 1 {
		return nil, nil, false
	}
	n := group[0]
	if n.IsLeaf() || len(n.Tokens) != 1 || n.Tokens[0].Kind != token.Operator || n.Tokens[0].Value != "=" {
		return nil, nil, false
	}
	return n.Groups[0], n.Groups[1], true
}

func translateVarConst(group []*reducer.Node) (*VarConst, error) {
	declPart, initPart, hasInit := splitAssignAtTop(group)
	if !hasInit {
		declPart = group
	}

	if len(declPart) < 3 {
		return nil, errPT(findFirstTokenRecursively(declPart[0]), "malformed 'var'/'const' declaration")
	}
	kw := declPart[0].Leaf
	mutable := kw.Value == "var"

	nameNode := declPart[len(declPart)-1]
	if !tokenEquals(nameNode, token.Name, "") {
		return nil, errPT(findFirstTokenRecursively(nameNode), "expected an identifier in declaration")
	}

	typ, err := parseType(declPart[1 : len(declPart)-1])
	if err != nil {
		return nil, err
	}

	vc := &VarConst{Tok: kw, Mutable: mutable, Type: typ, Ident: nameNode.Leaf.Value}
	if hasInit {
		init, err := translateExprGroup(initPart)
		if err != nil {
			return nil, err
		}
		if !init.Readable() {
			return nil, diag.New(diag.TypeError, init.Token(), "initializer for %q is not readable", vc.Ident)
		}
		vc.Init = init
	}
	return vc, nil
}

func translateFunction(group []*reducer.Node) (*Function, error) {
	if len(group) < 3 {
		return nil, errPT(findFirstTokenRecursively(group[0]), "malformed function declaration")
	}
	kw := group[0].Leaf

	// The trailing node is either the argument-list bracket node, or (for a
	// definition) preceded by a '{ body }' bracket node.
	var bodyNodes []*reducer.Node
	rest := group[1:]
	var hasBody bool
	if body, ok := unpackBracket(rest[len(rest)-1], "{"); ok {
		hasBody = true
		bodyNodes = body
		rest = rest[:len(rest)-1]
	}

	if len(rest) < 2 {
		return nil, errPT(kw, "malformed function declaration")
	}
	argsNode := rest[len(rest)-1]
	argTokens, ok := unpackBracket(argsNode, "(")
	if !ok {
		return nil, errPT(findFirstTokenRecursively(argsNode), "expected parenthesized argument list")
	}

	nameNode := rest[len(rest)-2]
	if !tokenEquals(nameNode, token.Name, "") {
		return nil, errPT(findFirstTokenRecursively(nameNode), "expected a function name")
	}

	retType, err := parseType(rest[:len(rest)-2])
	if err != nil {
		return nil, err
	}

	args, err := translateArgList(argTokens)
	if err != nil {
		return nil, err
	}

	fn := &Function{Tok: kw, Return: retType, Ident: nameNode.Leaf.Value, Args: args}
	if hasBody {
		body, err := translateScopeBody(bodyNodes)
		if err != nil {
			return nil, err
		}
		fn.Body = body
	}
	return fn, nil
}

// translateArgList splits a "(" ")" node's content on ',' and translates
// each slot as a single (type, name) declaration.
func translateArgList(nodes []*reducer.Node) ([]*Param, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	slots := splitOnComma(nodes)
	args := make([]*Param, 0, len(slots))
	for _, slot := range slots {
		if len(slot) == 0 {
			continue
		}
		nameNode := slot[len(slot)-1]
		if !tokenEquals(nameNode, token.Name, "") {
			return nil, errPT(findFirstTokenRecursively(nameNode), "expected an argument name")
		}
		typ, err := parseType(slot[:len(slot)-1])
		if err != nil {
			return nil, err
		}
		args = append(args, &Param{Tok: findFirstTokenRecursively(slot[0]), Type: typ, Ident: nameNode.Leaf.Value})
	}
	return args, nil
}

func splitOnComma(nodes []*reducer.Node) [][]*reducer.Node {
	if len(nodes) == 1 {
		if toks, groups, ok := matchDelimiterList(nodes[0], func(tk *token.Token) bool { return tk.Kind == token.Comma }); ok {
			_ = toks
			return groups
		}
	}
	return [][]*reducer.Node{nodes}
}

func translateStruct(group []*reducer.Node) (*Struct, error) {
	if len(group) != 3 {
		return nil, errPT(findFirstTokenRecursively(group[0]), "malformed struct declaration")
	}
	kw := group[0].Leaf
	nameNode := group[1]
	if !tokenEquals(nameNode, token.Name, "") {
		return nil, errPT(findFirstTokenRecursively(nameNode), "expected a struct name")
	}
	body, ok := unpackBracket(group[2], "{")
	if !ok {
		return nil, errPT(findFirstTokenRecursively(group[2]), "expected '{ members }' after struct name")
	}

	members := make([]*Param, 0)
	for _, slot := range topLevelGroups(body) {
		slot = nonEmpty(slot)
		if len(slot) == 0 {
			continue
		}
		if len(slot) < 3 {
			return nil, errPT(findFirstTokenRecursively(slot[0]), "malformed struct member declaration")
		}
		memberKw := slot[0].Leaf
		if memberKw == nil || (memberKw.Value != "var" && memberKw.Value != "const") {
			return nil, errPT(findFirstTokenRecursively(slot[0]), "struct members must be 'var'/'const' declarations")
		}
		memberName := slot[len(slot)-1]
		if !tokenEquals(memberName, token.Name, "") {
			return nil, errPT(findFirstTokenRecursively(memberName), "expected a member name")
		}
		typ, err := parseType(slot[1 : len(slot)-1])
		if err != nil {
			return nil, err
		}
		members = append(members, &Param{
			Tok: memberKw, Mutable: memberKw.Value == "var", Type: typ, Ident: memberName.Leaf.Value,
		})
	}

	return &Struct{Tok: kw, Ident: nameNode.Leaf.Value, Members: members}, nil
}

func translateScopeBody(nodes []*reducer.Node) ([]Expression, error) {
	var out []Expression
	for _, slot := range topLevelGroups(nodes) {
		slot = nonEmpty(slot)
		if len(slot) == 0 {
			continue
		}
		expr, err := translateExprGroup(slot)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}
