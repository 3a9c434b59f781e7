package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/kilianc/directify/internal/directify/generate"
)

type styles struct {
	color bool
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	dim   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return styles{
		color: color,
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}

func rel(root, p string) string {
	if r, err := filepath.Rel(root, p); err == nil {
		return r
	}
	return p
}

func printFile(w io.Writer, s styles, root string, f generate.FileResult) {
	switch {
	case f.Err != nil:
		fmt.Fprintf(w, "%s %s: %v\n", s.render(s.fail, "FAIL"), rel(root, f.Source), f.Err)
	case f.Written:
		fmt.Fprintf(w, "%s %s %s %s\n", s.render(s.ok, "  ok"), rel(root, f.Source),
			s.render(s.dim, "->"), rel(root, f.Output))
	}
	for _, d := range f.Diagnostics {
		fmt.Fprintf(w, "%s %s: %s\n", s.render(s.warn, "warn"), rel(root, f.Source), d)
	}
}

func printReport(w io.Writer, s styles, root string, rep generate.Report) {
	for _, f := range rep.Files {
		printFile(w, s, root, f)
	}
	summary := fmt.Sprintf("%d generated, %d up to date, %d failed (%s)",
		rep.Written(), len(rep.Files)-rep.Written()-rep.Failed(), rep.Failed(), rep.Duration.Round(time.Millisecond))
	if rep.Failed() > 0 {
		fmt.Fprintln(w, s.render(s.fail, summary))
		return
	}
	fmt.Fprintln(w, s.render(s.dim, summary))
}
