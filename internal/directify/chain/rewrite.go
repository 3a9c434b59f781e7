package chain

import "github.com/kilianc/directify/internal/directify/ast"

const (
	KindIf      = "if"
	KindElseIf  = "elseif"
	KindElse    = "else"
	KindSwitch  = "switch"
	KindCase    = "case"
	KindDefault = "default"
)

func IfChain() *Definition {
	return &Definition{
		Name: "if-chain",
		Members: map[string]MemberConfig{
			KindIf:     {NeedsExpression: true},
			KindElseIf: {NeedsExpression: true},
			KindElse:   {},
		},
		Start:     KindIf,
		Continues: []string{KindElseIf, KindElse},
		Terminals: []string{KindElse},
		Rewrite:   RewriteIf,
	}
}

func SwitchChain() *Definition {
	return &Definition{
		Name: "switch-chain",
		Members: map[string]MemberConfig{
			KindSwitch:  {NeedsExpression: true},
			KindCase:    {NeedsExpression: true},
			KindDefault: {},
		},
		Start:     KindSwitch,
		Continues: []string{KindCase, KindDefault},
		Terminals: []string{KindDefault},
		Rewrite:   RewriteSwitch,
	}
}

func text(s string) *ast.Text { return &ast.Text{Value: s} }

func wrap(parts []ast.Node) *ast.Fragment {
	return &ast.Fragment{Children: []ast.Node{&ast.Expr{Children: parts}}}
}

// RewriteIf builds `(a) ? A : (b) ? B : C`, ending in `: null` when the run
// has no else. A lone if becomes `(a) && A`.
func RewriteIf(members []*ast.Element) ast.Node {
	if len(members) == 0 {
		return &ast.Fragment{}
	}
	if len(members) == 1 && members[0].ChainKind() == KindIf {
		m := members[0]
		return wrap([]ast.Node{text("(" + m.ChainExpr() + ") && "), m})
	}

	var parts []ast.Node
	last := len(members) - 1
loop:
	for i, m := range members {
		switch m.ChainKind() {
		case KindIf, KindElseIf:
			parts = append(parts, text("("+m.ChainExpr()+") ? "), m)
			if i == last {
				parts = append(parts, text(" : null"))
			} else {
				parts = append(parts, text(" : "))
			}
		case KindElse:
			parts = append(parts, m)
			break loop
		}
	}
	return wrap(parts)
}

// RewriteSwitch builds `(x === 1) ? One : (x === 2) ? Two : Other` from the
// case and default children of the switch element. Members matched as
// siblings after the switch are appended as further branches.
func RewriteSwitch(members []*ast.Element) ast.Node {
	if len(members) == 0 {
		return &ast.Fragment{}
	}
	sw := members[0]
	base := sw.ChainExpr()

	var branches []*ast.Element
	for _, c := range sw.Children {
		if el, ok := c.(*ast.Element); ok && isBranch(el) {
			branches = append(branches, el)
		}
	}
	for _, m := range members[1:] {
		if isBranch(m) {
			branches = append(branches, m)
		}
	}
	if len(branches) == 0 {
		return &ast.Fragment{}
	}

	hasDefault := false
	for _, b := range branches {
		if b.ChainKind() == KindDefault {
			hasDefault = true
			break
		}
	}

	var parts []ast.Node
	last := len(branches) - 1
loop:
	for i, b := range branches {
		switch b.ChainKind() {
		case KindCase:
			parts = append(parts, text("("+base+" === "+b.ChainExpr()+") ? "), b)
			if i == last && !hasDefault {
				parts = append(parts, text(" : null"))
			} else {
				parts = append(parts, text(" : "))
			}
		case KindDefault:
			parts = append(parts, b)
			break loop
		}
	}
	return wrap(parts)
}

func isBranch(el *ast.Element) bool {
	k := el.ChainKind()
	return k == KindCase || k == KindDefault
}
