package directive

import "github.com/kilianc/directify/internal/directify/ast"

// Replace puts newNode where oldNode sits in parent's children, or in root's
// children when parent is nil. It only splices when index is valid and holds
// oldNode; otherwise it reports UnresolvedReplacementTarget and leaves the
// tree untouched.
func Replace(oldNode, newNode, root, parent ast.Node, index int, report Reporter) bool {
	container := parent
	if container == nil {
		container = root
	}
	kids := ast.ChildrenOf(container)
	switch {
	case kids == nil:
		report.report(UnresolvedReplacementTarget, "no container for %T", oldNode)
		return false
	case index == NoIndex || index < 0 || index >= len(*kids):
		report.report(UnresolvedReplacementTarget, "index %d out of range (len %d)", index, len(*kids))
		return false
	case (*kids)[index] != oldNode:
		report.report(UnresolvedReplacementTarget, "index %d does not hold the node being replaced", index)
		return false
	}
	(*kids)[index] = newNode
	return true
}
