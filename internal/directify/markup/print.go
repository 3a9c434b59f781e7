package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/kilianc/directify/internal/directify/ast"
)

// Print writes n as markup. Expr nodes are wrapped in braces in markup
// position and written bare when nested inside another Expr.
func Print(w io.Writer, n ast.Node) error {
	var b strings.Builder
	if err := printNode(&b, n, false); err != nil {
		return err
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the printed form of n.
func String(n ast.Node) (string, error) {
	var b strings.Builder
	if err := printNode(&b, n, false); err != nil {
		return "", err
	}
	return b.String(), nil
}

func printNode(b *strings.Builder, n ast.Node, inExpr bool) error {
	switch t := n.(type) {
	case *ast.Document:
		return printNodes(b, t.Children, false)
	case *ast.Text:
		b.WriteString(t.Value)
	case *ast.Expr:
		if !inExpr {
			b.WriteByte('{')
		}
		if err := printNodes(b, t.Children, true); err != nil {
			return err
		}
		if !inExpr {
			b.WriteByte('}')
		}
	case *ast.Fragment:
		// A literal `<>` opens markup; a synthesized fragment is transparent.
		b.WriteString(t.Open)
		if err := printNodes(b, t.Children, inExpr && t.Open == ""); err != nil {
			return err
		}
		b.WriteString(t.Close)
	case *ast.Element:
		return printElement(b, t)
	case nil:
		return fmt.Errorf("markup: nil node")
	default:
		return fmt.Errorf("markup: unsupported node type %T", n)
	}
	return nil
}

func printNodes(b *strings.Builder, nodes []ast.Node, inExpr bool) error {
	for _, c := range nodes {
		if err := printNode(b, c, inExpr); err != nil {
			return err
		}
	}
	return nil
}

func printElement(b *strings.Builder, el *ast.Element) error {
	b.WriteByte('<')
	b.WriteString(el.Tag)
	for _, a := range el.Attrs {
		printAttr(b, a)
	}
	b.WriteString(el.OpenTail)
	if el.SelfClosing {
		b.WriteString("/>")
		return nil
	}
	b.WriteByte('>')
	if el.Void {
		return nil
	}
	// Element children are markup again, even inside an expression.
	if err := printNodes(b, el.Children, false); err != nil {
		return err
	}
	if el.CloseTag != "" {
		b.WriteString(el.CloseTag)
	} else {
		b.WriteString("</" + el.Tag + ">")
	}
	return nil
}

func printAttr(b *strings.Builder, a *ast.Attr) {
	if a.Raw != "" {
		b.WriteString(a.Lead)
		b.WriteString(a.Raw)
		return
	}
	if a.Lead != "" {
		b.WriteString(a.Lead)
	} else {
		b.WriteByte(' ')
	}
	switch a.Kind {
	case ast.AttrBool:
		b.WriteString(a.Key)
	case ast.AttrString:
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(strings.ReplaceAll(a.Value, `"`, "&quot;"))
		b.WriteByte('"')
	case ast.AttrExpr:
		if a.Key != "" {
			b.WriteString(a.Key)
			b.WriteByte('=')
		}
		b.WriteByte('{')
		b.WriteString(a.Value)
		b.WriteByte('}')
	case ast.AttrTemplate:
		b.WriteString(a.Key)
		b.WriteString("=`")
		for _, p := range a.Parts {
			if p.Expr {
				b.WriteString("${" + p.Value + "}")
				continue
			}
			b.WriteString(p.Value)
		}
		b.WriteByte('`')
	}
}

// Codec bundles Parse and String behind the parser and serializer
// interfaces the transformer expects.
type Codec struct{}

func (Codec) Parse(src string) (*ast.Document, error) { return Parse(src) }

func (Codec) Serialize(doc *ast.Document) (string, error) { return String(doc) }
