// Package directive defines the handler contract for directive attributes and
// the built-in immediate directives.
//
// A handler runs once per directive attribute, after the whole tree has been
// walked. It may strip its attribute, tag the element for chain coalescing, or
// replace the element in its parent.
package directive

import (
	"fmt"

	"github.com/kilianc/directify/internal/directify/ast"
)

// NoIndex marks an element whose position in its parent is unknown.
const NoIndex = -1

type DiagnosticKind string

const (
	UnresolvedReplacementTarget DiagnosticKind = "unresolved_replacement_target"
	DuplicateChainMark          DiagnosticKind = "duplicate_chain_mark"
)

// Diagnostic is a non-fatal problem found while applying directives.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return string(d.Kind) + ": " + d.Message
}

// Reporter receives diagnostics. A nil Reporter drops them.
type Reporter func(Diagnostic)

func (r Reporter) report(kind DiagnosticKind, format string, args ...any) {
	if r == nil {
		return
	}
	r(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Args is what a handler sees of the directive it was matched on.
type Args struct {
	Tag  *ast.Element
	Attr *ast.Attr
	Root ast.Node
	// Parent is nil when Tag is a direct child of Root.
	Parent ast.Node
	Index  int

	Report Reporter
}

// RemoveAttribute strips the matched attribute from Tag.
func (a *Args) RemoveAttribute() {
	a.Tag.RemoveAttr(a.Attr)
}

// Replace swaps Tag for n at the recorded position.
func (a *Args) Replace(n ast.Node) bool {
	return Replace(a.Tag, n, a.Root, a.Parent, a.Index, a.Report)
}

// Mark tags Tag for chain coalescing.
func (a *Args) Mark(kind, expr string) {
	if !a.Tag.Mark(kind, expr) {
		a.Report.report(DuplicateChainMark, "<%s> already tagged %q, ignoring %q", a.Tag.Tag, a.Tag.ChainKind(), kind)
	}
}

type Handler interface {
	Handle(a *Args)
}

type HandlerFunc func(a *Args)

func (f HandlerFunc) Handle(a *Args) { f(a) }

// Handlers maps a directive name (without prefix) to its handler.
type Handlers map[string]Handler

// Clone returns a shallow copy of h.
func (h Handlers) Clone() Handlers {
	out := make(Handlers, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
