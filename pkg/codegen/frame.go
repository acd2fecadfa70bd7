package codegen

import (
	"fmt"

	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
	"its-hmny.dev/minic64/pkg/types"
	"its-hmny.dev/minic64/pkg/utils"
)

// local is what the function frame tracks for one allocated slot: its
// position relative to '%rbp', its size, its source type and whether it
// may be written to again (spec.md §4.5: "A mapping from variable name to
// (offset, size, type, mutable)").
type local struct {
	offset  int
	size    int
	typ     ast.Type
	mutable bool
}

// frame is the per-function allocation context of spec.md §4.5: a LIFO
// stack discipline over '%rbp'-relative slots, grouped into scopes so a
// closing '{ }' block can deallocate exactly the names it introduced, in
// reverse declaration order.
type frame struct {
	ctx *types.Context

	fn *ast.Function

	offset int // signed distance already carved out of the stack, grows as allocations happen
	locals map[string]*local

	allocOrder utils.Stack[string]   // names in allocation order, asserts LIFO deallocation
	scopes     utils.Stack[[]string] // each entry: names allocated directly in that scope

	labelCounter int
	tempCounter  int

	lines []string // emitted instruction/body text, in order
}

// emit appends one formatted instruction line to the function's body.
func (f *frame) emit(format string, args ...interface{}) {
	f.lines = append(f.lines, "\t"+fmt.Sprintf(format, args...))
}

// newFrame opens a fresh function frame with its single top-level scope
// already pushed (spec.md §5: "closing a function requires exactly one
// scope remaining").
func newFrame(ctx *types.Context, fn *ast.Function) *frame {
	f := &frame{ctx: ctx, fn: fn, locals: map[string]*local{}}
	f.scopes.Push(nil)
	return f
}

// pushScope opens a nested '{ }' block.
func (f *frame) pushScope() { f.scopes.Push(nil) }

// popScope deallocates every variable introduced directly in the current
// scope, in reverse declaration order (spec.md §4.5).
func (f *frame) popScope() error {
	names, err := f.scopes.Pop()
	if err != nil {
		return diag.New(diag.CodeError, nil, "internal allocator error: no open scope to close")
	}

	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		top, err := f.allocOrder.Top()
		if err != nil || top != name {
			return diag.New(diag.CodeError, nil, "internal allocator error: deallocation of %q violates LIFO order", name)
		}
		f.allocOrder.Pop()

		delete(f.locals, name)
		f.offset -= 8
		f.emit("addq\t$8, %%rsp")
	}
	return nil
}

// close asserts exactly one scope remains and the net '%rbp' delta is zero
// (spec.md §4.5/§5), then pops that final scope.
func (f *frame) close() error {
	if f.scopes.Count() != 1 {
		return diag.New(diag.CodeError, nil, "internal allocator error: function closed with %d scopes still open", f.scopes.Count())
	}
	if err := f.popScope(); err != nil {
		return err
	}
	if f.offset != 0 {
		return diag.New(diag.CodeError, nil, "internal allocator error: non-zero net stack delta %d at function close", f.offset)
	}
	return nil
}

// allocate carves out one 8-byte-granularity slot for 'name' (spec.md
// §4.5: "Allocation always uses 8-byte granularity"), recording it in the
// current (innermost) scope, and returns its '%rbp'-relative offset.
func (f *frame) allocate(name string, typ ast.Type, mutable bool) (int, error) {
	if _, exists := f.locals[name]; exists {
		return 0, diag.New(diag.CodeError, f.fn.Tok, "duplicate local symbol %q", name)
	}

	size, err := f.ctx.SizeOf(typ)
	if err != nil {
		return 0, err
	}

	f.offset += 8
	l := &local{offset: f.offset, size: size, typ: typ, mutable: mutable}
	f.locals[name] = l
	f.allocOrder.Push(name)
	f.emit("subq\t$8, %%rsp")

	top, err := f.scopes.Pop()
	if err != nil {
		return 0, diag.New(diag.CodeError, nil, "internal allocator error: no open scope for allocation")
	}
	f.scopes.Push(append(top, name))

	return f.offset, nil
}

// deallocateTemp frees a single anonymous temp allocated mid-scope by
// genBinOp's LHS-spill (spec.md §4.5 step 1), without disturbing any other
// names already recorded in the current scope.
func (f *frame) deallocateTemp(name string) error {
	top, err := f.allocOrder.Top()
	if err != nil || top != name {
		return diag.New(diag.CodeError, nil, "internal allocator error: temp %q freed out of LIFO order", name)
	}
	f.allocOrder.Pop()
	delete(f.locals, name)
	f.offset -= 8
	f.emit("addq\t$8, %%rsp")

	names, err := f.scopes.Pop()
	if err != nil {
		return diag.New(diag.CodeError, nil, "internal allocator error: no open scope for temp deallocation")
	}
	if len(names) == 0 || names[len(names)-1] != name {
		return diag.New(diag.CodeError, nil, "internal allocator error: temp %q not in innermost scope", name)
	}
	f.scopes.Push(names[:len(names)-1])
	return nil
}

func (f *frame) lookup(name string) (*local, bool) {
	l, ok := f.locals[name]
	return l, ok
}

// newLabel returns the next unique local-label suffix for this function
// (e.g. branchless overflow-trap fallbacks would use this; kept for any
// lowering pass that needs a fresh intra-function label).
func (f *frame) newLabel() string {
	f.labelCounter++
	return fmt.Sprintf(".L%d", f.labelCounter)
}
