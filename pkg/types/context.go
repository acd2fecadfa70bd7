// Package types implements the type context of spec.md §4.4: struct layout
// (with cycle detection and member-offset computation), function-signature
// and global-declaration validation, and the numeric rank table used to
// pick a binary operator's result type. It is grounded on the layout
// computation in original_source/pycomp/src/ast_nodes.py's 'StructType'
// (member offsets via align_up, struct alignment as the member max) and on
// the teacher's own DFS-over-dependencies style in
// its-hmny-nand2tetris/code/pkg/jack/typechecking.go.
package types

import (
	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
)

// StructLayout is the resolved layout of one struct: every member's byte
// offset, the struct's own alignment, and its total (alignment-rounded) size.
type StructLayout struct {
	Name      string
	Alignment int
	Size      int
	Offsets   map[string]int // member name -> byte offset
	Members   []*ast.Param    // in declaration order
}

// Context is the type context threaded from the AST translator into the
// code generator: type-by-name, size-by-name, alignment-by-name, and
// struct-member-offset-by-(struct, member) (spec.md §4.4).
type Context struct {
	Structs map[string]*StructLayout
}

// NewContext builds an empty Context.
func NewContext() *Context {
	return &Context{Structs: map[string]*StructLayout{}}
}

// BuildContext runs every spec.md §4.4 validation pass over 'unit' in order:
// struct registration (cycle detection + layout), then signatures and
// globals.
func BuildContext(unit *ast.Unit) (*Context, error) {
	ctx := NewContext()
	if err := ctx.registerStructs(unit); err != nil {
		return nil, err
	}
	if err := ctx.validateSignaturesAndGlobals(unit); err != nil {
		return nil, err
	}
	return ctx, nil
}

// NumberSize returns the byte size of a primitive numeric type name
// (spec.md §4.4).
func NumberSize(name string) int {
	switch name {
	case "i8", "u8":
		return 1
	case "i16", "u16":
		return 2
	case "i32", "u32", "float":
		return 4
	case "i64", "u64", "double":
		return 8
	default:
		return 0
	}
}

// SizeOf returns a resolved type's byte size; 0 for Void, 8 for any pointer.
func (c *Context) SizeOf(t ast.Type) (int, error) {
	switch tt := t.(type) {
	case ast.Void:
		return 0, nil
	case ast.Number:
		return NumberSize(tt.Name), nil
	case ast.Pointer:
		return 8, nil
	case ast.StructRef:
		layout, ok := c.Structs[tt.Name]
		if !ok {
			return 0, diag.New(diag.TypeError, nil, "unknown struct type %q", tt.Name)
		}
		return layout.Size, nil
	case ast.FuncType:
		return 0, diag.New(diag.TypeError, nil, "function type has no size")
	default:
		return 0, diag.New(diag.TypeError, nil, "unknown type in SizeOf")
	}
}

// AlignOf returns a resolved type's alignment; equals its size for
// primitives and pointers (spec.md §4.4).
func (c *Context) AlignOf(t ast.Type) (int, error) {
	switch tt := t.(type) {
	case ast.StructRef:
		layout, ok := c.Structs[tt.Name]
		if !ok {
			return 0, diag.New(diag.TypeError, nil, "unknown struct type %q", tt.Name)
		}
		return layout.Alignment, nil
	default:
		return c.SizeOf(t)
	}
}

// AlignUp rounds 'offset' up to the next multiple of 'align' (spec.md §4.4).
func AlignUp(offset, align int) int {
	if align <= 0 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}
