package lexer

import (
	"fmt"
	"os"
	"path/filepath"

	pc "github.com/prataprc/goparsec"

	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/token"
)

// This file parses the single line that follows a '#' (spec.md §4.2). Unlike
// the main language's hand-rolled FSM, the directive grammar is small and
// regular enough to hand to a parser combinator, so it reuses goparsec the
// same way pkg/asm/parsing.go and pkg/vm/parsing.go do for their instruction
// grammars — just pointed at one line instead of a whole program.
var directiveAST = pc.NewAST("preprocessor", 0)

var (
	pQuotedPath = pc.Token(`"[^"]*"`, "PATH")
	pBareWord   = pc.Token(`[A-Za-z_][A-Za-z0-9_]*`, "WORD")
	pRestOfLine = pc.Token(`.*$`, "REST")

	pImport = directiveAST.And("import", nil, pc.Atom("IMPORT", "IMPORT"), pQuotedPath)
	pEcho   = directiveAST.And("echo", nil, pc.Atom("ECHO", "ECHO"), pc.Maybe("maybe-rest", nil, pRestOfLine))

	// These four are recognized, so a misspelling doesn't fall through to
	// "unknown directive", but spec.md §4.2 explicitly leaves their semantics
	// unimplemented: every match is rejected with a PreprocessorError.
	pUnimplemented = directiveAST.And("unimplemented", nil,
		directiveAST.OrdChoice("kw", nil,
			pc.Atom("DEFINE", "DEFINE"), pc.Atom("UNDEFINE", "UNDEFINE"),
			pc.Atom("IFDEF", "IFDEF"), pc.Atom("ENDIF", "ENDIF"),
		),
		pc.Maybe("maybe-rest", nil, pRestOfLine),
	)

	pUnknown = directiveAST.And("unknown", nil, pBareWord, pc.Maybe("maybe-rest", nil, pRestOfLine))

	pDirective = directiveAST.OrdChoice("directive", nil, pImport, pEcho, pUnimplemented, pUnknown)
)

// handleDirective parses and executes one '#...' line. It never returns a
// *diag.Diagnostic for ordinary control flow: only genuine preprocessor
// failures (bad grammar, unresolved import, recursion past token.MaxImportDepth) do.
func (lx *Lexer) handleDirective(directive string) error {
	root, ok := directiveAST.Parsewith(pDirective, pc.NewScanner([]byte(directive)))
	if !ok || root == nil {
		return diag.New(diag.PreprocessorError, lx.startToken(), "malformed preprocessor directive: %q", directive)
	}

	switch root.GetName() {
	case "import":
		quoted := root.GetChildren()[1].GetValue()
		path := quoted[1 : len(quoted)-1] // strip the surrounding quotes
		return lx.handleImport(path)

	case "echo":
		rest := ""
		if children := root.GetChildren(); len(children) > 1 {
			rest = children[1].GetValue()
		}
		fmt.Println(rest)
		return nil

	case "unimplemented":
		kw := root.GetChildren()[0].GetValue()
		return diag.New(diag.PreprocessorError, lx.startToken(), "'#%s' is recognized but not implemented", kw)

	default:
		return diag.New(diag.PreprocessorError, lx.startToken(), "unknown preprocessor directive %q", directive)
	}
}

// handleImport resolves 'path' relative to the importing file, recursively
// lexes it with a fresh one-shot Lexer anchored at an Anchor token placed at
// the '#IMPORT' site, and splices the resulting tokens into this Lexer's
// stream. This mirrors 'Lexer.handle_import' in
// original_source/pycomp/src/lexer.py, including the depth check performed
// by token.NewToken for every token produced inside the imported file.
func (lx *Lexer) handleImport(path string) error {
	anchor, err := token.NewToken(token.Anchor, path, lx.line, lx.start, lx.src, lx.parentAnchor)
	if err != nil {
		return diag.New(diag.PreprocessorError, lx.startToken(), "%s", err)
	}

	resolvedName, content, err := lx.importer.Import(lx.filename, path)
	if err != nil {
		return diag.New(diag.PreprocessorError, lx.startToken(), "cannot import %q: %s", path, err)
	}

	sub, buildErr := newBasicLexer(anchor, lx.importer)
	if buildErr != nil {
		return diag.New(diag.PreprocessorError, lx.startToken(), "cannot build lexer for import %q: %s", path, buildErr)
	}

	imported, err := sub.Lex(content, resolvedName)
	if err != nil {
		return err
	}

	lx.tokens = append(lx.tokens, imported...)
	return nil
}

// fsImporter is the real-filesystem Importer: '#IMPORT "path"' resolves
// relative to the directory of the importing file.
type fsImporter struct{}

func (fsImporter) Import(fromFile, path string) (string, []byte, error) {
	dir := filepath.Dir(fromFile)
	resolved := filepath.Join(dir, path)

	content, err := os.ReadFile(resolved)
	if err != nil {
		return "", nil, err
	}
	return resolved, content, nil
}
