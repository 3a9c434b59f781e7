package markup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianc/directify/internal/directify/ast"
)

func TestRoundTrip(t *testing.T) {
	cases := map[string]string{
		"plain":                 `<div>No loops here</div>`,
		"frontmatter":           "---\nconst users = await load();\n---\n<ul>{users.map(u => u.name)}</ul>\n",
		"attrs":                 `<a href="/x" class='y' data-n=3 hidden {...rest} title={t}>go</a>`,
		"spaced attrs":          "<div\n  id = \"a\"\n  d:if={ok}\n>x</div >",
		"template":              "<p class=`card ${active ? 'on' : ''}`>t</p>",
		"void":                  `<br><img src="a.png"><input disabled />`,
		"self closing":          `<Card title="x" />`,
		"comment":               "<!-- <div d:if={x}> -->\n<!DOCTYPE html>",
		"script":                "<script>if (a < b && c) { run('</div>') }</script>",
		"fragment":              `<><b>1</b><i>2</i></>`,
		"expr strings":          `<p>{"}" + '{' + ` + "`${x}}`" + `}</p>`,
		"lt in text":            `<p>a < b</p>`,
		"empty expr":            `<p>{}</p>`,
		"markup in expr":        `<ul>{items.map(i => <li class="x">{i.name}</li>)}</ul>`,
		"apostrophe in expr":    `{ok && <p>It's here</p>}<div d:if={a}>A</div>`,
		"block comment in expr": `<p>{/* don't */}</p><div d:if={a}>A</div>`,
		"line comment in expr":  "<p>{// it's fine\n  x}</p>",
		"comparison in expr":    `<p>{a < b ? <b>y</b> : <>n</>}</p>`,
		"return in expr":        `{(() => { return <p>x</p> })()}`,
		"markup in attr expr":   `<Card fallback={<p>it's empty</p>} />`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(src)
			require.NoError(t, err)
			out, err := String(doc)
			require.NoError(t, err)
			assert.Equal(t, src, out)
		})
	}
}

func TestParse_Structure(t *testing.T) {
	doc, err := Parse(`<div d:if={a > 1} d:else>A{b}</div>`)
	require.NoError(t, err)
	require.Len(t, doc.Children, 1)

	el, ok := doc.Children[0].(*ast.Element)
	require.True(t, ok)
	assert.Equal(t, "div", el.Tag)
	require.Len(t, el.Attrs, 2)
	assert.Equal(t, "d:if", el.Attrs[0].Key)
	assert.Equal(t, ast.AttrExpr, el.Attrs[0].Kind)
	assert.Equal(t, "a > 1", el.Attrs[0].Value)
	assert.Equal(t, "d:else", el.Attrs[1].Key)
	assert.Equal(t, ast.AttrBool, el.Attrs[1].Kind)

	require.Len(t, el.Children, 2)
	assert.Equal(t, &ast.Text{Value: "A"}, el.Children[0])
	ex, ok := el.Children[1].(*ast.Expr)
	require.True(t, ok)
	assert.Equal(t, []ast.Node{&ast.Text{Value: "b"}}, ex.Children)
}

func TestParse_ExprChildren(t *testing.T) {
	doc, err := Parse(`{a < b && <p d:if={c}>it's</p>}`)
	require.NoError(t, err)
	ex, ok := doc.Children[0].(*ast.Expr)
	require.True(t, ok)
	require.Len(t, ex.Children, 2)
	assert.Equal(t, &ast.Text{Value: "a < b && "}, ex.Children[0])
	el, ok := ex.Children[1].(*ast.Element)
	require.True(t, ok)
	assert.Equal(t, "p", el.Tag)
	assert.Equal(t, "d:if", el.Attrs[0].Key)
	assert.Equal(t, []ast.Node{&ast.Text{Value: "it's"}}, el.Children)
}

func TestParse_TemplateParts(t *testing.T) {
	doc, err := Parse("<p d:if=`${user.ok} rest`></p>")
	require.NoError(t, err)
	a := doc.Children[0].(*ast.Element).Attrs[0]
	assert.Equal(t, ast.AttrTemplate, a.Kind)
	assert.Equal(t, []ast.AttrPart{{Expr: true, Value: "user.ok"}, {Value: " rest"}}, a.Parts)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unclosed element":  `<div><p>x</p>`,
		"mismatched close":  `<div></span>`,
		"stray close":       `</div>`,
		"unterminated expr": `<p>{a</p>`,
		"unterminated attr": `<p title="x>`,
		"unterminated tag":  `<p title="x"`,
		"unclosed fragment": `<><b>x</b>`,
		"unclosed in expr":  `{ok && <p>x}`,
		"open comment":      `<p>{/* x }</p>`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax), "err=%v", err)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.GreaterOrEqual(t, se.Line, 1)
		})
	}
}

func TestPrint_ExprNesting(t *testing.T) {
	li := &ast.Element{Tag: "li", Children: []ast.Node{&ast.Expr{Children: []ast.Node{&ast.Text{Value: "x"}}}}}
	inner := &ast.Fragment{Children: []ast.Node{
		&ast.Expr{Children: []ast.Node{&ast.Text{Value: "(x.ok) && "}, li}},
	}}
	doc := &ast.Document{Children: []ast.Node{
		&ast.Expr{Children: []ast.Node{&ast.Text{Value: "xs.map((x) => ("}, inner, &ast.Text{Value: "))"}}},
	}}
	out, err := String(doc)
	require.NoError(t, err)
	assert.Equal(t, `{xs.map((x) => ((x.ok) && <li>{x}</li>))}`, out)
}

func TestPrint_FragmentInExpr(t *testing.T) {
	rewritten := &ast.Fragment{Children: []ast.Node{
		&ast.Expr{Children: []ast.Node{&ast.Text{Value: "(a) && "}, &ast.Element{Tag: "b"}}},
	}}
	doc := &ast.Document{Children: []ast.Node{
		&ast.Expr{Children: []ast.Node{
			&ast.Text{Value: "x && "},
			&ast.Fragment{Open: "<>", Close: "</>", Children: []ast.Node{rewritten}},
		}},
	}}
	out, err := String(doc)
	require.NoError(t, err)
	assert.Equal(t, `{x && <>{(a) && <b></b>}</>}`, out)
}

func TestPrint_SynthesizedAttrs(t *testing.T) {
	el := &ast.Element{
		Tag: "p",
		Attrs: []*ast.Attr{
			{Key: "hidden", Kind: ast.AttrBool},
			{Key: "title", Kind: ast.AttrString, Value: `say "hi"`},
			{Key: "data-n", Kind: ast.AttrExpr, Value: "n"},
			{Kind: ast.AttrExpr, Value: "...rest"},
			{Key: "class", Kind: ast.AttrTemplate, Parts: []ast.AttrPart{{Value: "a "}, {Expr: true, Value: "b"}}},
		},
	}
	out, err := String(el)
	require.NoError(t, err)
	assert.Equal(t, "<p hidden title=\"say &quot;hi&quot;\" data-n={n} {...rest} class=`a ${b}`></p>", out)
}

func TestPrint_NilNode(t *testing.T) {
	_, err := String(&ast.Document{Children: []ast.Node{nil}})
	require.Error(t, err)
}
