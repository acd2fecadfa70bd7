package types

import (
	"its-hmny.dev/minic64/pkg/ast"
	"its-hmny.dev/minic64/pkg/diag"
)

// registerStructs builds the child->parent dependency graph (an edge from a
// member struct to the struct containing it, per spec.md §4.4: "edge from
// child struct to containing struct for each member whose type is a
// struct"), processes zero-in-degree structs first, and reports a cycle on
// whatever struct is left unresolved at the end.
func (c *Context) registerStructs(unit *ast.Unit) error {
	entries := unit.Structs.Entries()

	inDegree := map[string]int{}
	dependents := map[string][]string{} // child struct name -> structs that embed it by value
	for _, e := range entries {
		inDegree[e.Key] = 0
	}
	for _, e := range entries {
		s := e.Value
		for _, m := range s.Members {
			if ref, ok := m.Type.(ast.StructRef); ok {
				if _, known := inDegree[ref.Name]; !known {
					return diag.New(diag.TypeError, m.Tok, "struct %q has member of unknown struct type %q", s.Ident, ref.Name)
				}
				dependents[ref.Name] = append(dependents[ref.Name], s.Ident)
				inDegree[s.Ident]++
			}
		}
	}

	var queue []string
	for _, e := range entries {
		if inDegree[e.Key] == 0 {
			queue = append(queue, e.Key)
		}
	}

	byName := map[string]*ast.Struct{}
	for _, e := range entries {
		byName[e.Key] = e.Value
	}

	processed := map[string]bool{}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if processed[name] {
			continue
		}
		processed[name] = true

		layout, err := c.layoutStruct(byName[name])
		if err != nil {
			return err
		}
		c.Structs[name] = layout

		for _, dep := range dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	for _, e := range entries {
		if !processed[e.Key] {
			return diag.New(diag.TypeError, e.Value.Tok, "struct %q participates in a cycle through value members", e.Key)
		}
	}
	return nil
}

// layoutStruct computes member offsets and overall size/alignment for one
// struct whose member struct types are all already registered in c.Structs
// (spec.md §4.4).
func (c *Context) layoutStruct(s *ast.Struct) (*StructLayout, error) {
	layout := &StructLayout{Name: s.Ident, Offsets: map[string]int{}, Members: s.Members}

	offset := 0
	maxAlign := 1
	for _, m := range s.Members {
		switch m.Type.(type) {
		case ast.Void:
			return nil, diag.New(diag.TypeError, m.Tok, "struct member %q cannot have type 'void'", m.Ident)
		case ast.FuncType:
			return nil, diag.New(diag.TypeError, m.Tok, "struct member %q cannot have a function type", m.Ident)
		}

		align, err := c.AlignOf(m.Type)
		if err != nil {
			return nil, err
		}
		size, err := c.SizeOf(m.Type)
		if err != nil {
			return nil, err
		}

		offset = AlignUp(offset, align)
		layout.Offsets[m.Ident] = offset
		offset += size
		if align > maxAlign {
			maxAlign = align
		}
	}

	layout.Alignment = maxAlign
	layout.Size = AlignUp(offset, maxAlign)
	return layout, nil
}
