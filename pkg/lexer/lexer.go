// Package lexer implements the table-driven FSM lexer and the preprocessor
// ('#IMPORT', '#ECHO', ...) described in spec.md §4.1. The engine
// (rules.go/lexer.go) is a direct Go rendering of the 'Lexer' class in
// original_source/pycomp/src/lexer.py: a (state, byte) -> action table is
// walked one byte at a time, actions decide whether the byte is consumed and
// what state/start-of-token index comes next, and push_token()-equivalents
// append finished tokens.
package lexer

import (
	"fmt"

	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/token"
)

// Lexer is a one-shot FSM scanner: Lex rejects being called twice on the
// same instance (spec.md §5: "The lexer is one-shot").
type Lexer struct {
	rules *table

	filename string
	lines    []string
	src      *token.Source

	tokens []*token.Token
	state  State
	start  int
	pos    int
	line   int

	used bool

	// parentAnchor is the synthetic Anchor token that caused this Lexer to
	// be spawned via '#IMPORT'; nil for the top-level lexer.
	parentAnchor *token.Token

	// importer resolves and reads an imported file's contents; swappable in
	// tests to avoid touching the real filesystem.
	importer Importer

	// pendingErr lets actions (which must match the Action signature and
	// can't return an error directly) signal a fatal condition back to the
	// Lex loop. Only ever set to a *diag.Diagnostic.
	pendingErr error
}

// Importer resolves '#IMPORT "path"' relative to the importing file's
// directory and returns the imported file's source bytes.
type Importer interface {
	Import(fromFile, path string) (resolvedName string, content []byte, err error)
}

// newLexer builds a Lexer driven by the prebuilt rule table 'rules'.
// parent is nil for the top-level lexer, or the anchor token for a lexer
// spawned by '#IMPORT'.
func newLexer(rules *table, importer Importer, parent *token.Token) *Lexer {
	return &Lexer{rules: rules, importer: importer, parentAnchor: parent, state: StateInit}
}

// Lex scans 'source' (the full contents of 'filename') into a token stream.
// It is one-shot: calling Lex twice on the same Lexer is a programming error.
func (lx *Lexer) Lex(source []byte, filename string) ([]*token.Token, error) {
	if lx.used {
		return nil, fmt.Errorf("lexer instance for %q already used", filename)
	}
	lx.used = true

	lx.filename = filename
	lx.lines = splitLinesKeepEnds(string(source))
	lx.src = &token.Source{Filename: filename, Lines: lx.lines}
	lx.tokens = nil
	lx.start, lx.pos, lx.line = 0, 0, 0
	lx.state = StateInit

	if len(lx.lines) == 0 {
		return lx.tokens, nil
	}

	for {
		curLine := lx.lines[lx.line]
		if lx.pos >= len(curLine) {
			// Defensive: shouldn't happen given the advance logic below.
			break
		}
		c := curLine[lx.pos]

		action, ok := lx.rules.lookup(lx.state, c)
		if !ok {
			return nil, lx.errUnexpectedByte(c)
		}

		accept, next, start := action(lx, curLine, lx.pos)
		if d, isDiag := asAbort(lx.pendingErr); isDiag {
			lx.pendingErr = nil
			return nil, d
		}

		lx.state = next
		lx.start = start

		if accept {
			lx.pos++
			if lx.pos >= len(curLine) {
				if lx.state != StateInit && !lx.isLineContinuationState(lx.state) {
					return nil, diag.New(diag.LexError, lx.posToken(),
						"end of line not in 'init' state (state is %q)", lx.state)
				}
				lx.start = 0
				lx.pos = 0
				lx.line++
				if lx.line >= len(lx.lines) {
					break
				}
			}
		}
	}

	return lx.tokens, nil
}

// isLineContinuationState reports the states allowed to span a line break:
// 'init' always is (checked by the caller separately) and multi-line
// comments, matching the Python original's "com2" exception.
func (lx *Lexer) isLineContinuationState(s State) bool { return s == stateMultiLineComment }

// pushToken appends a finished token to the stream, stamping it with this
// lexer's Source and import-chain parent.
func (lx *Lexer) pushToken(kind token.Kind, value string) {
	tok, err := token.NewToken(kind, value, lx.line, lx.start, lx.src, lx.parentAnchor)
	if err != nil {
		lx.pendingErr = diag.New(diag.LexError, tok, "%s", err)
		return
	}
	lx.tokens = append(lx.tokens, tok)
}

func asAbort(err error) (*diag.Diagnostic, bool) {
	if err == nil {
		return nil, false
	}
	d, ok := err.(*diag.Diagnostic)
	return d, ok
}

// posToken synthesizes a throwaway token at the scanner's current raw
// position, for diagnostics raised before any token has been pushed.
func (lx *Lexer) posToken() *token.Token {
	return &token.Token{Line: lx.line, Column: lx.pos, Source: lx.src, Parent: lx.parentAnchor}
}

// startToken is like posToken but anchored at the current token's start
// column rather than the scanner's live position.
func (lx *Lexer) startToken() *token.Token {
	return &token.Token{Line: lx.line, Column: lx.start, Source: lx.src, Parent: lx.parentAnchor}
}

func (lx *Lexer) errUnexpectedByte(c byte) error {
	return diag.New(diag.LexError, lx.posToken(), "unexpected character %q for state %q", c, lx.state)
}

func splitLinesKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:]+"\n")
	}
	return lines
}
