package chain

import (
	"slices"

	"github.com/kilianc/directify/internal/directify/ast"
)

// Coalesce replaces every run of chain members below root with the node
// produced by the chain's rewrite. Runs never span parents.
func Coalesce(root ast.Node, reg *Registry) {
	if reg == nil {
		return
	}
	coalesce(root, reg)
}

func coalesce(n ast.Node, reg *Registry) {
	kids := ast.ChildrenOf(n)
	if kids == nil {
		return
	}
	for i := 0; i < len(*kids); i++ {
		child := (*kids)[i]
		el, ok := child.(*ast.Element)
		if !ok {
			coalesce(child, reg)
			continue
		}
		def, ok := reg.ByStart(el.ChainKind())
		if !ok {
			coalesce(child, reg)
			continue
		}
		members, end := match(*kids, i, def)
		// Runs nested inside the members are rewritten first; the
		// replacement itself is not scanned again.
		for _, m := range members {
			coalesce(m, reg)
		}
		*kids = slices.Replace(*kids, i, end, def.Rewrite(members))
	}
}

// match returns the members of the run starting at kids[start] and the end
// of the window, which also covers whitespace around and after the members.
// A terminal member (else, default) closes the run even if more continuation
// kinds follow; those start nothing and print as plain elements.
func match(kids []ast.Node, start int, def *Definition) ([]*ast.Element, int) {
	first := kids[start].(*ast.Element)
	members := []*ast.Element{first}
	closed := def.terminal(first.ChainKind())
	j := start + 1
	for j < len(kids) {
		next := kids[j]
		if ast.IsBlank(next) {
			j++
			continue
		}
		if closed {
			break
		}
		el, ok := next.(*ast.Element)
		if !ok || !def.continues(el.ChainKind()) {
			break
		}
		members = append(members, el)
		closed = def.terminal(el.ChainKind())
		j++
	}
	return members, j
}
