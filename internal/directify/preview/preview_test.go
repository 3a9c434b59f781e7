package preview

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianc/directify/internal/directify/directive"
)

func render(t *testing.T, p Page) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, Render(&b, p))
	return b.String()
}

func TestRender(t *testing.T) {
	out := render(t, Page{
		Key:    "page.astro",
		Source: `<p d:if="a">A</p>`,
		Output: `{(a) && <p>A</p>}`,
	})
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "<title>directify preview</title>")
	assert.Contains(t, out, "<p>page.astro</p>")
	// markup is escaped, not rendered
	assert.Contains(t, out, "&lt;p d:if=&#34;a&#34;&gt;A&lt;/p&gt;")
	assert.Contains(t, out, "{(a) &amp;&amp; &lt;p&gt;A&lt;/p&gt;}")
	assert.NotContains(t, out, "Diagnostics")
	assert.NotContains(t, out, "<form")
}

func TestRender_ErrorAndDiagnostics(t *testing.T) {
	out := render(t, Page{
		Title:  "broken",
		Source: "<p>",
		Err:    errors.New("parse page.astro: unclosed <p>"),
		Diagnostics: []directive.Diagnostic{
			{Kind: directive.DuplicateChainMark, Message: "element already marked"},
		},
	})
	assert.Contains(t, out, "<title>broken</title>")
	assert.Contains(t, out, `<pre class="error">parse page.astro: unclosed &lt;p&gt;</pre>`)
	assert.Contains(t, out, "Diagnostics")
	assert.Contains(t, out, "element already marked")
}

func TestRender_Form(t *testing.T) {
	out := render(t, Page{Form: true, Source: "<p>x</p>"})
	assert.Contains(t, out, `<form method="post" action="/preview">`)
	assert.Contains(t, out, `<textarea name="source" rows="12">&lt;p&gt;x&lt;/p&gt;</textarea>`)
}
