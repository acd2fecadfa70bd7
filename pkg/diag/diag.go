// Package diag implements the error taxonomy and source-snippet rendering
// shared by every compiler stage (spec.md §7). Every stage constructs a
// *diag.Diagnostic instead of a bare error so the driver can print a
// uniform "(<kind>): message" banner, a source line, a caret, and the
// parent-import chain, then abort.
package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"its-hmny.dev/minic64/pkg/token"
)

// Kind is the closed set of error/warning categories from spec.md §7.
type Kind string

const (
	LexError          Kind = "LexError"
	PreprocessorError Kind = "PreprocessorError"
	ParseError        Kind = "ParseError"
	PTParseError      Kind = "PTParseError"
	TypeError         Kind = "TypeError"
	CodeError         Kind = "CodeError"
	SyntaxError       Kind = "SyntaxError"
	Warning           Kind = "Warning"
)

// Diagnostic is a fatal (or, for Warning, non-fatal) compiler message
// anchored at a token. It implements error so it can be threaded through
// ordinary (T, error) returns and unwrapped with errors.Unwrap.
type Diagnostic struct {
	Kind    Kind
	Message string
	At      *token.Token   // primary site, nil for messages with no known location
	Related []*token.Token // secondary sites (e.g. the matching open bracket)
	cause   error
}

// New builds a Diagnostic of the given kind anchored at tok.
func New(kind Kind, tok *token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), At: tok}
}

// WithRelated attaches additional sites to be rendered after the primary one
// (e.g. the opening bracket when reporting a mismatched closer).
func (d *Diagnostic) WithRelated(toks ...*token.Token) *Diagnostic {
	d.Related = append(d.Related, toks...)
	return d
}

// Wrap records a lower-level cause, retrievable through Unwrap.
func Wrap(kind Kind, tok *token.Token, cause error, format string, args ...interface{}) *Diagnostic {
	d := New(kind, tok, format, args...)
	d.cause = errors.Wrap(cause, d.Message)
	return d
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("(%s): %s", d.Kind, d.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Unwrap/errors.Is/errors.As.
func (d *Diagnostic) Unwrap() error { return d.cause }

// Render produces the full multi-line diagnostic: the "(kind): message"
// banner, a source snippet with caret for the primary site (and any related
// sites), followed by the import-chain trace for the primary site.
func (d *Diagnostic) Render() string {
	var b strings.Builder
	b.WriteString(d.Error())
	b.WriteByte('\n')

	if d.At != nil {
		renderSite(&b, d.At)
	}
	for _, site := range d.Related {
		b.WriteString("also see:\n")
		renderSite(&b, site)
	}
	if d.At != nil {
		renderChain(&b, d.At)
	}
	return b.String()
}

// renderSite prints "in <file>:<line>", the raw source line, and a caret
// under the token's column — the same three-line shape as mark_start()/
// mark_pos() in original_source/pycomp/src/lexer.py.
func renderSite(b *strings.Builder, tok *token.Token) {
	filename := "<unknown>"
	line := ""
	if tok.Source != nil {
		filename = tok.Source.Filename
		line = tok.Source.Line(tok.Line)
	}
	fmt.Fprintf(b, "in %s:%d\n", filename, tok.Line+1)
	fmt.Fprintf(b, "%s", strings.TrimRight(line, "\n"))
	b.WriteByte('\n')
	fmt.Fprintf(b, "%s^\n", strings.Repeat(" ", tok.Column))
}

// renderChain prints the "imported from" trace: every anchor token between
// the reporting token and the root file, nearest import site first and the
// root file's import last.
func renderChain(b *strings.Builder, tok *token.Token) {
	chain := tok.Chain()
	// chain[len-1] is tok itself, already rendered by the caller.
	for i := len(chain) - 2; i >= 0; i-- {
		anchor := chain[i]
		b.WriteString("imported from:\n")
		renderSite(b, anchor)
	}
}

// Abort prints the diagnostic to stderr and is the single place a fatal
// error causes process termination (spec.md §5: "Errors are fatal and
// unwind by immediate termination").
func Abort(d *Diagnostic) {
	fmt.Fprintln(stderr(), d.Render())
	osExit(1)
}
