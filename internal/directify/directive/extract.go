package directive

import (
	"strings"

	"github.com/kilianc/directify/internal/directify/ast"
)

// Extract returns the expression source carried by a. It never returns "":
// a missing, empty or "undefined" value becomes "false". Only the first
// embedded expression of a template value is used.
func Extract(a *ast.Attr) string {
	if a == nil {
		return "false"
	}
	switch a.Kind {
	case ast.AttrString, ast.AttrExpr:
		if a.Value == "" || a.Value == "undefined" {
			return "false"
		}
		return a.Value
	case ast.AttrTemplate:
		for _, p := range a.Parts {
			if p.Expr && p.Value != "" {
				return p.Value
			}
		}
		if text := strings.TrimSpace(joinParts(a.Parts)); text != "" {
			return text
		}
	}
	return "false"
}

// RawValue returns a's value as plain text, template parts joined.
func RawValue(a *ast.Attr) string {
	if a == nil {
		return ""
	}
	switch a.Kind {
	case ast.AttrString, ast.AttrExpr:
		return a.Value
	case ast.AttrTemplate:
		return strings.TrimSpace(joinParts(a.Parts))
	default:
		return ""
	}
}

func joinParts(parts []ast.AttrPart) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Value)
	}
	return b.String()
}
