// Package preview renders a before/after HTML page for a transformed document.
package preview

import (
	"io"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/kilianc/directify/internal/directify/directive"
)

type Page struct {
	Title       string
	Key         string
	Source      string
	Output      string
	Diagnostics []directive.Diagnostic
	// Err replaces the output pane when the transform failed.
	Err error
	// Form adds a textarea posting back to FormAction.
	Form       bool
	FormAction string
}

const css = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
main{display:grid;grid-template-columns:1fr 1fr;gap:1rem}
pre{background:#f6f8fa;padding:1rem;overflow:auto;white-space:pre-wrap}
.error{color:#b00020}
.diag{color:#8a6d00}
textarea{width:100%;font-family:monospace}`

func (p Page) Node() g.Node {
	title := p.Title
	if title == "" {
		title = "directify preview"
	}
	return h.Doctype(
		h.HTML(
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.TitleEl(g.Text(title)),
				h.StyleEl(g.Raw(css)),
			),
			h.Body(
				h.H1(g.Text(title)),
				g.If(p.Key != "", h.P(g.Text(p.Key))),
				g.If(p.Form, p.form()),
				h.Main(
					pane("Source", p.Source),
					p.result(),
				),
				g.If(len(p.Diagnostics) > 0, h.Section(
					h.H2(g.Text("Diagnostics")),
					h.Ul(g.Map(p.Diagnostics, func(d directive.Diagnostic) g.Node {
						return h.Li(h.Class("diag"), g.Text(d.String()))
					})),
				)),
			),
		),
	)
}

func (p Page) result() g.Node {
	if p.Err != nil {
		return h.Section(
			h.H2(g.Text("Output")),
			h.Pre(h.Class("error"), g.Text(p.Err.Error())),
		)
	}
	return pane("Output", p.Output)
}

func (p Page) form() g.Node {
	action := p.FormAction
	if action == "" {
		action = "/preview"
	}
	return h.Form(h.Method("post"), h.Action(action),
		h.Textarea(h.Name("source"), h.Rows("12"), g.Text(p.Source)),
		h.Button(h.Type("submit"), g.Text("Transform")),
	)
}

func pane(title, body string) g.Node {
	return h.Section(
		h.H2(g.Text(title)),
		h.Pre(h.Code(g.Text(body))),
	)
}

func Render(w io.Writer, p Page) error {
	return p.Node().Render(w)
}
