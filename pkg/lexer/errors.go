package lexer

import (
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/token"
)

// newLexErr is the single constructor every lexer-stage action uses to turn
// a formatting complaint into a *diag.Diagnostic, keeping the 'LexError' kind
// in one place.
func newLexErr(tok *token.Token, format string, args ...interface{}) error {
	return diag.New(diag.LexError, tok, format, args...)
}
