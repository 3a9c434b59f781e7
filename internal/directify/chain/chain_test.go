package chain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianc/directify/internal/directify/ast"
	"github.com/kilianc/directify/internal/directify/directive"
	"github.com/kilianc/directify/internal/directify/markup"
)

func marked(tag, kind, expr, body string) *ast.Element {
	el := &ast.Element{Tag: tag, Children: []ast.Node{&ast.Text{Value: body}}}
	el.Mark(kind, expr)
	return el
}

func render(t *testing.T, n ast.Node) string {
	t.Helper()
	out, err := markup.String(n)
	require.NoError(t, err)
	return out
}

func TestRewriteIf(t *testing.T) {
	cases := []struct {
		name    string
		members []*ast.Element
		want    string
	}{
		{"empty", nil, ""},
		{"lone if", []*ast.Element{marked("div", "if", "a", "A")}, "{(a) && <div>A</div>}"},
		{"if else", []*ast.Element{
			marked("div", "if", "a", "A"),
			marked("div", "else", "", "B"),
		}, "{(a) ? <div>A</div> : <div>B</div>}"},
		{"if elseif else", []*ast.Element{
			marked("div", "if", "a", "A"),
			marked("div", "elseif", "b", "B"),
			marked("div", "else", "", "C"),
		}, "{(a) ? <div>A</div> : (b) ? <div>B</div> : <div>C</div>}"},
		{"if elseif", []*ast.Element{
			marked("div", "if", "a", "A"),
			marked("div", "elseif", "b", "B"),
		}, "{(a) ? <div>A</div> : (b) ? <div>B</div> : null}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, render(t, RewriteIf(tc.members)))
		})
	}
}

func TestRewriteSwitch(t *testing.T) {
	nested := func(children ...*ast.Element) *ast.Element {
		sw := &ast.Element{Tag: "div"}
		sw.Mark("switch", "x")
		for _, c := range children {
			sw.Children = append(sw.Children, &ast.Text{Value: "\n  "}, c)
		}
		return sw
	}

	t.Run("cases and default", func(t *testing.T) {
		sw := nested(
			marked("div", "case", "1", "One"),
			marked("div", "case", "2", "Two"),
			marked("div", "default", "", "Other"),
		)
		assert.Equal(t,
			"{(x === 1) ? <div>One</div> : (x === 2) ? <div>Two</div> : <div>Other</div>}",
			render(t, RewriteSwitch([]*ast.Element{sw})))
	})

	t.Run("no default", func(t *testing.T) {
		sw := nested(
			marked("div", "case", "10", "Ten"),
			marked("div", "case", "20", "Twenty"),
		)
		assert.Equal(t,
			"{(x === 10) ? <div>Ten</div> : (x === 20) ? <div>Twenty</div> : null}",
			render(t, RewriteSwitch([]*ast.Element{sw})))
	})

	t.Run("no branches", func(t *testing.T) {
		sw := nested()
		sw.Children = append(sw.Children, &ast.Element{Tag: "p"})
		assert.Equal(t, "", render(t, RewriteSwitch([]*ast.Element{sw})))
		assert.Equal(t, "", render(t, RewriteSwitch(nil)))
	})

	t.Run("sibling branches follow nested ones", func(t *testing.T) {
		sw := nested(marked("b", "case", "1", "One"))
		assert.Equal(t,
			"{(x === 1) ? <b>One</b> : (x === 2) ? <i>Two</i> : <i>Other</i>}",
			render(t, RewriteSwitch([]*ast.Element{
				sw,
				marked("i", "case", "2", "Two"),
				marked("i", "default", "", "Other"),
			})))
	})
}

func TestCoalesce_WindowSwallowsWhitespace(t *testing.T) {
	reg := Default()
	doc := &ast.Document{Children: []ast.Node{
		&ast.Text{Value: "<h1>x</h1>"},
		&ast.Text{Value: "\n  "},
		marked("div", "if", "a", "A"),
		&ast.Text{Value: "\n\n"},
		marked("div", "elseif", "b", "B"),
		&ast.Text{Value: " "},
		marked("div", "else", "", "C"),
		&ast.Text{Value: "\n\t"},
		&ast.Text{Value: "\n"},
		&ast.Element{Tag: "footer"},
	}}

	Coalesce(doc, reg)

	require.Len(t, doc.Children, 4)
	assert.Equal(t, "<h1>x</h1>\n  {(a) ? <div>A</div> : (b) ? <div>B</div> : <div>C</div>}<footer></footer>", render(t, doc))
}

func TestCoalesce_SeparateRuns(t *testing.T) {
	doc := &ast.Document{Children: []ast.Node{
		marked("p", "if", "a", "A"),
		marked("p", "if", "b", "B"),
		&ast.Text{Value: "text"},
		marked("p", "else", "", "C"),
	}}
	Coalesce(doc, Default())
	assert.Equal(t, "{(a) && <p>A</p>}{(b) && <p>B</p>}text<p>C</p>", render(t, doc))
}

func TestCoalesce_ElseClosesRun(t *testing.T) {
	doc := &ast.Document{Children: []ast.Node{
		marked("p", "if", "a", "A"),
		marked("p", "else", "", "B"),
		marked("p", "else", "", "C"),
	}}
	Coalesce(doc, Default())
	assert.Equal(t, "{(a) ? <p>A</p> : <p>B</p>}<p>C</p>", render(t, doc))
}

func TestCoalesce_DoesNotCrossParents(t *testing.T) {
	section := &ast.Element{Tag: "section", Children: []ast.Node{marked("div", "if", "a", "A")}}
	doc := &ast.Document{Children: []ast.Node{
		section,
		&ast.Text{Value: "\n"},
		marked("div", "else", "", "Invalid"),
	}}
	Coalesce(doc, Default())
	out := render(t, doc)
	assert.Equal(t, "<section>{(a) && <div>A</div>}</section>\n<div>Invalid</div>", out)
	assert.NotContains(t, out, "null")
}

func TestCoalesce_NestedInsideMembers(t *testing.T) {
	outer := marked("div", "if", "a", "")
	outer.Children = []ast.Node{
		marked("b", "if", "x", "X"),
		&ast.Text{Value: " "},
		marked("b", "else", "", "Y"),
	}
	doc := &ast.Document{Children: []ast.Node{outer, marked("div", "else", "", "Z")}}
	Coalesce(doc, Default())
	assert.Equal(t, "{(a) ? <div>{(x) ? <b>X</b> : <b>Y</b>}</div> : <div>Z</div>}", render(t, doc))
}

func TestCoalesce_NilRegistry(t *testing.T) {
	doc := &ast.Document{Children: []ast.Node{marked("p", "if", "a", "A")}}
	Coalesce(doc, nil)
	assert.Equal(t, "<p>A</p>", render(t, doc))
}

func TestRegistry_Register(t *testing.T) {
	reg, err := NewRegistry(IfChain())
	require.NoError(t, err)

	d, ok := reg.ByStart("if")
	require.True(t, ok)
	assert.Equal(t, "if-chain", d.Name)
	d, ok = reg.ByMember("else")
	require.True(t, ok)
	assert.Equal(t, "if-chain", d.Name)
	_, ok = reg.ByStart("else")
	assert.False(t, ok)

	err = reg.Register(IfChain())
	assert.True(t, errors.Is(err, ErrInvalidChain))

	bad := []*Definition{
		nil,
		{Name: "", Rewrite: RewriteIf},
		{Name: "x", Members: map[string]MemberConfig{"a": {}}, Start: "a"},
		{Name: "x", Members: map[string]MemberConfig{"a": {}}, Start: "b", Rewrite: RewriteIf},
		{Name: "x", Members: map[string]MemberConfig{"a": {}}, Start: "a", Continues: []string{"c"}, Rewrite: RewriteIf},
		{Name: "x", Members: map[string]MemberConfig{"when": {}, "else": {}}, Start: "when", Rewrite: RewriteIf},
	}
	for i, d := range bad {
		assert.ErrorIs(t, reg.Register(d), ErrInvalidChain, "case %d", i)
	}
	assert.Len(t, reg.Chains(), 1)
}

func TestRegistry_Merge(t *testing.T) {
	reg := Default()
	custom := directive.HandlerFunc(func(a *directive.Args) {})
	user := directive.Handlers{"if": custom, "for": directive.For}

	merged := reg.Merge(user)

	assert.Len(t, user, 2, "input must not be modified")
	for _, name := range []string{"if", "elseif", "else", "switch", "case", "default", "for"} {
		assert.Contains(t, merged, name)
	}
	assert.Len(t, merged, 7)

	// the caller's handler is kept as is
	tag := &ast.Element{Tag: "p"}
	merged["if"].Handle(&directive.Args{Tag: tag})
	assert.Nil(t, tag.Chain)

	assert.Len(t, reg.Merge(nil), 6)
}

func TestMemberHandler(t *testing.T) {
	def := IfChain()
	def.Members["elseif"] = MemberConfig{
		NeedsExpression: true,
		Extract:         func(a *ast.Attr) string { return "custom(" + a.Value + ")" },
	}

	for _, tc := range []struct {
		name, kind, expr string
		attr             *ast.Attr
	}{
		{"if", "if", "a", &ast.Attr{Key: "d:if", Kind: ast.AttrExpr, Value: "a"}},
		{"elseif", "elseif", "custom(b)", &ast.Attr{Key: "d:elseif", Kind: ast.AttrExpr, Value: "b"}},
		{"else", "else", "", &ast.Attr{Key: "d:else", Kind: ast.AttrExpr, Value: "ignored"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tag := &ast.Element{Tag: "div", Attrs: []*ast.Attr{tc.attr}}
			doc := &ast.Document{Children: []ast.Node{tag}}
			MemberHandler(def, tc.name).Handle(&directive.Args{Tag: tag, Attr: tc.attr, Root: doc, Index: 0})

			assert.Empty(t, tag.Attrs)
			assert.Equal(t, tc.kind, tag.ChainKind())
			assert.Equal(t, tc.expr, tag.ChainExpr())
			assert.Same(t, tag, doc.Children[0])
		})
	}
}
