package main

import (
	"fmt"
	"os"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/codegen"
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/lexer"
	"its-hmny.dev/minic64/pkg/reducer"
	"its-hmny.dev/minic64/pkg/types"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Print("USAGE: minic64 [INPUT] [OUTPUT]\n")
		os.Exit(-1)
	}

	input, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("ERROR: Unable to open input file: %s\n", err)
		os.Exit(-1)
	}

	output, err := os.Create(os.Args[2])
	if err != nil {
		fmt.Printf("ERROR: Unable to open output file: %s\n", err)
		os.Exit(-1)
	}
	defer output.Close()

	// Instantiate a lexer (preprocessing directives included) and scan the
	// whole translation unit down to a flat token stream.
	lx, err := lexer.NewBasicLexer()
	if err != nil {
		abort(err)
	}
	tokens, err := lx.Lex(input, os.Args[1])
	if err != nil {
		abort(err)
	}

	// Reduce the flat stream into a bracket-nested parse tree, then fold
	// operators/statements into it, per spec.md §4.2's rule pipeline.
	tree := reducer.Root(tokens)
	tree, err = reducer.Reduce(tree, reducer.Pipeline())
	if err != nil {
		abort(err)
	}

	// Translate the parse tree into the typed AST (struct/function/global
	// declarations, function bodies).
	unit, err := ast.TranslateProgram(tree)
	if err != nil {
		abort(err)
	}

	// Build the type context: struct layouts, and validate every signature
	// and global against it.
	ctx, err := types.BuildContext(unit)
	if err != nil {
		abort(err)
	}

	// Finally, lower the typed unit to GNU-assembler (AT&T) text.
	asm, err := codegen.NewCodeGenerator(unit, ctx, os.Args[1]).Generate()
	if err != nil {
		abort(err)
	}

	if _, err := output.WriteString(asm); err != nil {
		fmt.Printf("ERROR: Unable to write output file: %s\n", err)
		os.Exit(-1)
	}
}

// abort renders a stage's fatal error through pkg/diag's uniform banner
// when it is a *diag.Diagnostic (spec.md §7: "every stage constructs a
// *diag.Diagnostic instead of a bare error"), or prints it bare otherwise.
func abort(err error) {
	if d, ok := err.(*diag.Diagnostic); ok {
		diag.Abort(d)
	}
	fmt.Printf("ERROR: %s\n", err)
	os.Exit(-1)
}
