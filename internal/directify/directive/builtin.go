package directive

import (
	"regexp"
	"strings"

	"github.com/kilianc/directify/internal/directify/ast"
)

// If renders its element only when the expression holds:
//
//	<div d:if={a}>A</div>  =>  {(a) && <div>A</div>}
var If = HandlerFunc(func(a *Args) {
	a.RemoveAttribute()
	expr := Extract(a.Attr)
	a.Replace(&ast.Fragment{Children: []ast.Node{
		&ast.Expr{Children: []ast.Node{
			&ast.Text{Value: "(" + expr + ") && "},
			a.Tag,
		}},
	}})
})

// For repeats its element over an iterable:
//
//	<li d:for="(u, i) in users">…</li>  =>  {users.map((u, i) => (<li>…</li>))}
var For = HandlerFunc(func(a *Args) {
	a.RemoveAttribute()
	b := ParseForBinding(RawValue(a.Attr))
	a.Replace(&ast.Expr{Children: []ast.Node{
		&ast.Text{Value: b.Items + ".map((" + b.Params() + ") => ("},
		a.Tag,
		&ast.Text{Value: "))"},
	}})
})

// ForBinding is the parsed form of `<item> in <items>` or `(<item>, <index>) in <items>`.
type ForBinding struct {
	Item  string
	Index string
	Items string
}

func (b ForBinding) Params() string {
	if b.Index != "" {
		return b.Item + ", " + b.Index
	}
	return b.Item
}

var forSeparator = regexp.MustCompile(`\s+in\s+`)

// ParseForBinding never fails: text without an `in` separator iterates
// nothing as "item".
func ParseForBinding(raw string) ForBinding {
	fallback := ForBinding{Item: "item", Items: "[]"}
	parts := forSeparator.Split(strings.TrimSpace(raw), 2)
	if len(parts) != 2 {
		return fallback
	}
	lhs, rhs := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if lhs == "" || rhs == "" {
		return fallback
	}

	b := ForBinding{Item: lhs, Items: rhs}
	if strings.HasPrefix(lhs, "(") && strings.HasSuffix(lhs, ")") {
		var names []string
		for _, s := range strings.Split(lhs[1:len(lhs)-1], ",") {
			if s = strings.TrimSpace(s); s != "" {
				names = append(names, s)
			}
		}
		b.Item = "item"
		if len(names) > 0 {
			b.Item = names[0]
		}
		if len(names) > 1 {
			b.Index = names[1]
		}
	}
	return b
}
