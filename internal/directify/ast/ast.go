package ast

import "strings"

type Node interface {
	node()
}

// Document is the root of a parsed file. It is never replaced itself.
type Document struct {
	Children []Node
}

func (*Document) node() {}

type Text struct {
	Value string
}

func (*Text) node() {}

// Expr is an embedded host-language region. Its children are printed inside
// braces when the Expr sits in markup, and bare when it sits in another Expr.
type Expr struct {
	Children []Node
}

func (*Expr) node() {}

// Fragment groups children without markup of its own. Open and Close hold the
// literal `<>` / `</>` for fragments read from source and are empty for
// synthesized ones.
type Fragment struct {
	Open     string
	Close    string
	Children []Node
}

func (*Fragment) node() {}

type AttrKind int

const (
	AttrBool AttrKind = iota
	AttrString
	AttrExpr
	AttrTemplate
)

func (k AttrKind) String() string {
	switch k {
	case AttrBool:
		return "bool"
	case AttrString:
		return "string"
	case AttrExpr:
		return "expr"
	case AttrTemplate:
		return "template"
	default:
		return "unknown"
	}
}

// AttrPart is one piece of a template-literal attribute value.
type AttrPart struct {
	Expr  bool
	Value string
}

type Attr struct {
	Key  string
	Kind AttrKind
	// Value is the literal string (for AttrString) or expression source (for AttrExpr).
	Value string
	// Parts is set for AttrTemplate only.
	Parts []AttrPart

	// Lead is the whitespace that preceded the attribute and Raw its exact source.
	Lead string
	Raw  string
}

// ChainMark is the transient directive metadata left on an element by the
// attribute pass and consumed by chain coalescing. It is never printed.
type ChainMark struct {
	Kind string
	Expr string
}

type Element struct {
	Tag         string
	Attrs       []*Attr
	Children    []Node
	SelfClosing bool
	// Void elements have neither a self-closing slash nor a closing tag.
	Void bool

	// OpenTail is the whitespace between the last attribute and `>` or `/>`.
	OpenTail string
	// CloseTag is the raw closing tag, empty for self-closing and void elements.
	CloseTag string

	Chain *ChainMark
}

func (*Element) node() {}

// Mark records directive metadata on e. The first mark wins; Mark reports
// whether it was applied.
func (e *Element) Mark(kind, expr string) bool {
	if e.Chain != nil {
		return false
	}
	e.Chain = &ChainMark{Kind: kind, Expr: expr}
	return true
}

// ChainKind returns the directive kind e was tagged with, or "".
func (e *Element) ChainKind() string {
	if e == nil || e.Chain == nil {
		return ""
	}
	return e.Chain.Kind
}

// ChainExpr returns the expression source e was tagged with, or "".
func (e *Element) ChainExpr() string {
	if e == nil || e.Chain == nil {
		return ""
	}
	return e.Chain.Expr
}

// RemoveAttr drops a from e's attribute list by identity.
func (e *Element) RemoveAttr(a *Attr) bool {
	for i, cur := range e.Attrs {
		if cur == a {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// ChildrenOf returns a pointer to n's child list, or nil if n cannot have children.
func ChildrenOf(n Node) *[]Node {
	switch t := n.(type) {
	case *Document:
		return &t.Children
	case *Element:
		return &t.Children
	case *Expr:
		return &t.Children
	case *Fragment:
		return &t.Children
	default:
		return nil
	}
}

// IsBlank reports whether n is a whitespace-only text node.
func IsBlank(n Node) bool {
	t, ok := n.(*Text)
	return ok && strings.TrimSpace(t.Value) == ""
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(n, parent Node, index int) bool) {
	walk(n, nil, -1, fn)
}

func walk(n, parent Node, index int, fn func(n, parent Node, index int) bool) {
	if !fn(n, parent, index) {
		return
	}
	kids := ChildrenOf(n)
	if kids == nil {
		return
	}
	for i, c := range *kids {
		walk(c, n, i, fn)
	}
}

// Locate finds the current parent and index of target below root.
func Locate(root, target Node) (parent Node, index int, ok bool) {
	Walk(root, func(n, p Node, i int) bool {
		if ok {
			return false
		}
		if n == target && p != nil {
			parent, index, ok = p, i, true
			return false
		}
		return true
	})
	return parent, index, ok
}
