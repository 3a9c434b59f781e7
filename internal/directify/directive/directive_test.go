package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianc/directify/internal/directify/ast"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		attr *ast.Attr
		want string
	}{
		{"nil", nil, "false"},
		{"bool", &ast.Attr{Key: "d:else", Kind: ast.AttrBool}, "false"},
		{"empty string", &ast.Attr{Kind: ast.AttrString}, "false"},
		{"undefined", &ast.Attr{Kind: ast.AttrExpr, Value: "undefined"}, "false"},
		{"string", &ast.Attr{Kind: ast.AttrString, Value: "'admin'"}, "'admin'"},
		{"number", &ast.Attr{Kind: ast.AttrExpr, Value: "1"}, "1"},
		{"expr kept verbatim", &ast.Attr{Kind: ast.AttrExpr, Value: " a && b "}, " a && b "},
		{"template first expr wins", &ast.Attr{Kind: ast.AttrTemplate, Parts: []ast.AttrPart{
			{Value: "x "}, {Expr: true, Value: "a"}, {Expr: true, Value: "b"},
		}}, "a"},
		{"template empty expr skipped", &ast.Attr{Kind: ast.AttrTemplate, Parts: []ast.AttrPart{
			{Expr: true}, {Value: "  ok  "},
		}}, "ok"},
		{"template blank", &ast.Attr{Kind: ast.AttrTemplate, Parts: []ast.AttrPart{{Value: "   "}}}, "false"},
		{"template no parts", &ast.Attr{Kind: ast.AttrTemplate}, "false"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.attr)
			assert.Equal(t, tc.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

func TestParseForBinding(t *testing.T) {
	cases := []struct {
		raw    string
		params string
		items  string
	}{
		{"user in users", "user", "users"},
		{"(item, i) in products", "item, i", "products"},
		{"   user    in   users   ", "user", "users"},
		{"( item ,  i ) in  products ", "item, i", "products"},
		{"item in getItems().filter(x => x in y)", "item", "getItems().filter(x => x in y)"},
		{"() in xs", "item", "xs"},
		{"users", "item", "[]"},
		{"", "item", "[]"},
		{"user in", "item", "[]"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			b := ParseForBinding(tc.raw)
			assert.Equal(t, tc.params, b.Params())
			assert.Equal(t, tc.items, b.Items)
		})
	}
}

func TestReplace(t *testing.T) {
	a, b, c := &ast.Text{Value: "a"}, &ast.Text{Value: "b"}, &ast.Text{Value: "c"}
	parent := &ast.Element{Tag: "ul", Children: []ast.Node{a, b, c}}
	root := &ast.Document{Children: []ast.Node{parent}}
	x := &ast.Text{Value: "x"}

	var diags []Diagnostic
	report := Reporter(func(d Diagnostic) { diags = append(diags, d) })

	require.True(t, Replace(b, x, root, parent, 1, report))
	assert.Equal(t, []ast.Node{a, x, c}, parent.Children)

	y := &ast.Text{Value: "y"}
	require.True(t, Replace(parent, y, root, nil, 0, report))
	assert.Equal(t, []ast.Node{y}, root.Children)
	assert.Empty(t, diags)

	assert.False(t, Replace(a, y, root, parent, NoIndex, report))
	assert.False(t, Replace(a, y, root, parent, 7, report))
	assert.False(t, Replace(a, y, root, parent, 2, report))
	assert.False(t, Replace(a, y, nil, &ast.Text{}, 0, report))
	assert.Equal(t, []ast.Node{a, x, c}, parent.Children)
	require.Len(t, diags, 4)
	for _, d := range diags {
		assert.Equal(t, UnresolvedReplacementTarget, d.Kind)
	}

	// nil reporter is allowed
	assert.False(t, Replace(a, y, root, parent, NoIndex, nil))
}

func TestIfHandler(t *testing.T) {
	attr := &ast.Attr{Key: "d:if", Kind: ast.AttrExpr, Value: "a"}
	tag := &ast.Element{Tag: "div", Attrs: []*ast.Attr{attr}}
	root := &ast.Document{Children: []ast.Node{tag}}

	If.Handle(&Args{Tag: tag, Attr: attr, Root: root, Index: 0})

	assert.Empty(t, tag.Attrs)
	frag, ok := root.Children[0].(*ast.Fragment)
	require.True(t, ok)
	require.Len(t, frag.Children, 1)
	ex := frag.Children[0].(*ast.Expr)
	assert.Equal(t, []ast.Node{&ast.Text{Value: "(a) && "}, tag}, ex.Children)
}

func TestForHandler(t *testing.T) {
	attr := &ast.Attr{Key: "d:for", Kind: ast.AttrString, Value: "(item, i) in products"}
	keep := &ast.Attr{Key: "class", Kind: ast.AttrString, Value: "row"}
	tag := &ast.Element{Tag: "li", Attrs: []*ast.Attr{keep, attr}}
	parent := &ast.Element{Tag: "ul", Children: []ast.Node{&ast.Text{Value: "\n"}, tag}}
	root := &ast.Document{Children: []ast.Node{parent}}

	For.Handle(&Args{Tag: tag, Attr: attr, Root: root, Parent: parent, Index: 1})

	assert.Equal(t, []*ast.Attr{keep}, tag.Attrs)
	ex, ok := parent.Children[1].(*ast.Expr)
	require.True(t, ok)
	assert.Equal(t, []ast.Node{
		&ast.Text{Value: "products.map((item, i) => ("},
		tag,
		&ast.Text{Value: "))"},
	}, ex.Children)
}

func TestArgsMark(t *testing.T) {
	tag := &ast.Element{Tag: "div"}
	var diags []Diagnostic
	a := &Args{Tag: tag, Report: func(d Diagnostic) { diags = append(diags, d) }}

	a.Mark("if", "a")
	a.Mark("else", "")

	assert.Equal(t, "if", tag.ChainKind())
	assert.Equal(t, "a", tag.ChainExpr())
	require.Len(t, diags, 1)
	assert.Equal(t, DuplicateChainMark, diags[0].Kind)
}
