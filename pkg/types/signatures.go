package types

import (
	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/token"
)

// validateSignaturesAndGlobals walks every function signature and every
// global var/const declaration, validating that each named type they
// mention actually exists (spec.md §4.4: "After structs, walk function
// signatures and global var/const declarations, validating that every
// mentioned named type exists").
func (c *Context) validateSignaturesAndGlobals(unit *ast.Unit) error {
	for _, e := range unit.Functions.Entries() {
		fn := e.Value
		if err := c.checkTypeExists(fn.Tok, fn.Return); err != nil {
			return err
		}
		for _, arg := range fn.Args {
			if err := c.checkTypeExists(arg.Tok, arg.Type); err != nil {
				return err
			}
		}
	}

	for _, e := range unit.Vars.Entries() {
		v := e.Value
		if err := c.checkTypeExists(v.Tok, v.Type); err != nil {
			return err
		}
	}

	return nil
}

// checkTypeExists recurses through pointers and function signatures,
// erroring on the first struct reference that was never registered.
func (c *Context) checkTypeExists(tok *token.Token, t ast.Type) error {
	switch tt := t.(type) {
	case ast.Void, ast.Number:
		return nil
	case ast.Pointer:
		return c.checkTypeExists(tok, tt.Inner)
	case ast.StructRef:
		if _, ok := c.Structs[tt.Name]; !ok {
			return diag.New(diag.TypeError, tok, "unknown type %q", tt.Name)
		}
		return nil
	case ast.FuncType:
		if err := c.checkTypeExists(tok, tt.Return); err != nil {
			return err
		}
		for _, arg := range tt.Args {
			if err := c.checkTypeExists(tok, arg); err != nil {
				return err
			}
		}
		return nil
	default:
		return diag.New(diag.TypeError, tok, "unknown type in signature")
	}
}
