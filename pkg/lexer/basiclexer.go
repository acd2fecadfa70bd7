package lexer

import "its-hmny.dev/minic64/pkg/token"

// States of the source-language lexer, named after the Python original's
// state strings so the two are easy to cross-reference.
const (
	stateName           State = "name"
	stateOperator       State = "oper"
	stateNum            State = "num"
	stateStr            State = "str"
	stateStrEsc         State = "str_esc"
	stateStrEscHex1     State = "str_esc_h1"
	stateStrEscHex2     State = "str_esc_h2"
	statePreprocessor   State = "pre"
	stateComment        State = "com"
	stateMultiLineComment State = "com2"
	stateMLCommentStar  State = "com2_s"
)

var keywordNames = map[string]bool{
	"struct": true, "function": true, "var": true, "const": true,
	"cast": true, "sizeof": true,
	"if": true, "while": true, "for": true,
	"return": true,
}

var builtinTypeNames = map[string]bool{
	"i64": true, "i32": true, "i16": true, "i8": true,
	"u64": true, "u32": true, "u16": true, "u8": true,
	"float": true, "double": true, "void": true,
}

// operatorList is the fixed operator alphabet from spec.md §4.1/§6, plus the
// two comment openers '//' and '/*' which share the operator trie exactly as
// original_source/pycomp/src/lexer.py does (both fall out of the same
// maximal-munch scan before being redirected into a comment state).
var operatorList = []string{
	"==", "<", ">", "<=", ">=", "!", "!=",
	"&", "&&", "|", "||", "%", "^", ">>", "<<",
	"*", "/", "~",
	"+", "++", "-", "--", "->", ".",
	"=", "+=", "-=", "/=", "*=",
	"//", "/*",
}

// NewBasicLexer builds the source language's FSM rule table and returns a
// ready-to-use Lexer, wired with a real-filesystem Importer for '#IMPORT'.
func NewBasicLexer() (*Lexer, error) {
	return newBasicLexer(nil, fsImporter{})
}

// newBasicLexer is the internal constructor used both by NewBasicLexer and
// by '#IMPORT' to spawn a sub-lexer anchored at the import site.
func newBasicLexer(parent *token.Token, importer Importer) (*Lexer, error) {
	trie := newOperatorTrie(operatorList)
	opChars := operatorChars(operatorList)

	rules := []Rule{
		// whitespace
		{State: StateInit, Chars: whitespaceChars(), Action: actionWhitespace},

		// operators (and comment openers, handled via the trie)
		{State: StateInit, Chars: opChars, Action: makeActionOperator(trie)},
		{State: stateOperator, Chars: opChars, Action: makeActionOperator(trie)},
		{State: stateOperator, Any: true, Action: makeActionOperatorEnd(trie)},

		// names / keywords / types
		{State: StateInit, Chars: concat(letterChars(), []byte{'_'}), Action: actionName},
		{State: stateName, Chars: concat(letterChars(), digitChars(), []byte{'_'}), Action: actionName},
		{State: stateName, Any: true, Action: actionNameEnd},

		// separators
		{State: StateInit, Chars: []byte{';'}, Action: actionSemicolon},
		{State: StateInit, Chars: []byte{','}, Action: actionComma},

		// numbers
		{State: StateInit, Chars: digitChars(), Action: actionDigit},
		{State: stateNum, Chars: concat(digitChars(), []byte{'.'}), Action: actionNum},
		{State: stateNum, Any: true, Action: actionNumEnd},

		// brackets
		{State: StateInit, Chars: bracketChars(), Action: actionBracket},

		// strings
		{State: StateInit, Chars: []byte{'"'}, Action: actionString},
		{State: stateStr, Chars: []byte{'\\'}, Action: actionStringEscape},
		{State: stateStr, Chars: []byte{'"'}, Action: actionStringEnd},
		{State: stateStr, Chars: minus(legibleChars(), []byte{'"', '\\'}), Action: actionString},
		{State: stateStrEsc, Chars: []byte("\"'nt\\"), Action: actionString},
		{State: stateStrEsc, Chars: []byte{'x'}, Action: actionStringEscapeHex1},
		{State: stateStrEscHex1, Chars: hexChars(), Action: actionStringEscapeHex2},
		{State: stateStrEscHex2, Chars: hexChars(), Action: actionString},

		// preprocessor
		{State: StateInit, Chars: []byte{'#'}, Action: actionPreprocessStart},
		{State: statePreprocessor, Chars: minus(allBytes(), []byte{'\n'}), Action: actionPreprocessBody},
		{State: statePreprocessor, Chars: []byte{'\n'}, Action: actionPreprocessEnd},

		// single-line comment
		{State: stateComment, Chars: minus(allBytes(), []byte{'\n'}), Action: actionComment},
		{State: stateComment, Chars: []byte{'\n'}, Action: actionCommentEnd},

		// multi-line comment
		{State: stateMultiLineComment, Chars: minus(allBytes(), []byte{'*'}), Action: actionComment2},
		{State: stateMultiLineComment, Chars: []byte{'*'}, Action: actionComment2Star},
		{State: stateMLCommentStar, Chars: []byte{'*'}, Action: actionComment2Star},
		{State: stateMLCommentStar, Chars: []byte{'/'}, Action: actionComment2End},
		{State: stateMLCommentStar, Chars: minus(allBytes(), []byte{'/', '*'}), Action: actionComment2},
	}

	t, err := buildTable(rules)
	if err != nil {
		return nil, err
	}

	lx := newLexer(t, importer, parent)
	return lx, nil
}

// ----------------------------------------------------------------------------
// Actions

func actionWhitespace(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, StateInit, pos + 1
}

func actionName(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateName, lx.start
}

func actionNameEnd(lx *Lexer, line string, pos int) (bool, State, int) {
	value := line[lx.start:pos]
	switch {
	case keywordNames[value]:
		lx.pushToken(token.Keyword, value)
	case builtinTypeNames[value]:
		lx.pushToken(token.Type, value)
	default:
		lx.pushToken(token.Name, value)
	}
	return false, StateInit, pos
}

func actionSemicolon(lx *Lexer, line string, pos int) (bool, State, int) {
	lx.pushToken(token.Semicolon, ";")
	return true, StateInit, pos + 1
}

func actionComma(lx *Lexer, line string, pos int) (bool, State, int) {
	lx.pushToken(token.Comma, ",")
	return true, StateInit, pos + 1
}

func actionBracket(lx *Lexer, line string, pos int) (bool, State, int) {
	lx.pushToken(token.Bracket, string(line[pos]))
	return true, StateInit, pos + 1
}

func makeActionOperator(trie *operatorTrie) Action {
	return func(lx *Lexer, line string, pos int) (bool, State, int) {
		last := line[lx.start:pos]
		curr := int(line[pos])

		switch trie.check(last, curr) {
		case checkExtensible:
			return true, stateOperator, lx.start
		case checkLast:
			return resolveOperator(lx, last, pos)
		default:
			lx.pendingErr = lx.errAt(pos, "syntax error around operator")
			return false, StateInit, pos
		}
	}
}

func makeActionOperatorEnd(trie *operatorTrie) Action {
	return func(lx *Lexer, line string, pos int) (bool, State, int) {
		value := line[lx.start:pos]
		if trie.check(value, -1) == checkLast {
			return resolveOperator(lx, value, pos)
		}
		lx.pendingErr = lx.errAtStart("syntax error around operator")
		return false, StateInit, pos
	}
}

// resolveOperator pushes an operator token, except for the two comment
// openers '//' and '/*' which instead redirect the FSM into a comment state
// without producing a token — mirroring the Python original's special-casing
// inside action_operator/action_operator_end.
func resolveOperator(lx *Lexer, value string, pos int) (bool, State, int) {
	switch value {
	case "//":
		return false, stateComment, pos
	case "/*":
		return false, stateMultiLineComment, pos
	default:
		lx.pushToken(token.Operator, value)
		return false, StateInit, pos
	}
}

func actionDigit(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateNum, lx.start
}

func actionNum(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateNum, lx.start
}

func actionNumEnd(lx *Lexer, line string, pos int) (bool, State, int) {
	value := line[lx.start:pos]
	if dots := countByte(value, '.'); dots > 1 {
		lx.pendingErr = lx.errAtStart("malformed number literal %q", value)
		return false, StateInit, pos
	}
	lx.pushToken(token.Num, value)
	return false, StateInit, pos
}

func countByte(s string, c byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			n++
		}
	}
	return n
}

func actionString(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateStr, lx.start
}

func actionStringEscape(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateStrEsc, lx.start
}

func actionStringEscapeHex1(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateStrEscHex1, lx.start
}

func actionStringEscapeHex2(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateStrEscHex2, lx.start
}

func actionStringEnd(lx *Lexer, line string, pos int) (bool, State, int) {
	raw := line[lx.start+1 : pos]
	decoded, err := decodeStringEscapes(raw)
	if err != nil {
		lx.pendingErr = lx.errAtStart("%s", err)
		return true, StateInit, pos + 1
	}
	lx.pushToken(token.Str, decoded)
	return true, StateInit, pos + 1
}

func actionComment(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateComment, pos
}

func actionCommentEnd(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, StateInit, pos
}

func actionComment2(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateMultiLineComment, pos
}

func actionComment2Star(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, stateMLCommentStar, pos
}

func actionComment2End(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, StateInit, pos
}

// actionPreprocessStart fires on the '#' itself; the directive text starts
// right after it, so start is pinned to pos+1 for the rest of the line.
func actionPreprocessStart(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, statePreprocessor, pos + 1
}

func actionPreprocessBody(lx *Lexer, line string, pos int) (bool, State, int) {
	return true, statePreprocessor, lx.start
}

func actionPreprocessEnd(lx *Lexer, line string, pos int) (bool, State, int) {
	directive := line[lx.start:pos]
	if err := lx.handleDirective(directive); err != nil {
		lx.pendingErr = err
	}
	return true, StateInit, pos
}

func (lx *Lexer) errAt(pos int, format string, args ...interface{}) error {
	tok := &token.Token{Line: lx.line, Column: pos, Source: lx.src, Parent: lx.parentAnchor}
	return newLexErr(tok, format, args...)
}

func (lx *Lexer) errAtStart(format string, args ...interface{}) error {
	return newLexErr(lx.startToken(), format, args...)
}
