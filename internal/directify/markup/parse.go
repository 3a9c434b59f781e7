// Package markup reads and writes Astro-style component markup.
//
// Parse keeps enough raw source on every node for Print to reproduce the input
// byte for byte wherever the tree was not modified.
package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kilianc/directify/internal/directify/ast"
)

var ErrSyntax = errors.New("markup: syntax error")

type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("markup: %d:%d: %s", e.Line, e.Col, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

type parser struct {
	src string
	pos int
}

// Parse builds a document tree from src.
func Parse(src string) (*ast.Document, error) {
	p := &parser{src: src}
	doc := &ast.Document{}
	if fm, ok := p.frontmatter(); ok {
		doc.Children = append(doc.Children, &ast.Text{Value: fm})
	}
	kids, closed, err := p.nodes("")
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, p.errorf(p.pos, "unexpected closing tag")
	}
	doc.Children = append(doc.Children, kids...)
	return doc, nil
}

func (p *parser) errorf(at int, format string, args ...any) error {
	line, col := 1, 1
	for i := 0; i < at && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) rest() string { return p.src[p.pos:] }

// frontmatter consumes a leading `---` fenced block, fences included.
func (p *parser) frontmatter() (string, bool) {
	if !strings.HasPrefix(p.src, "---") {
		return "", false
	}
	nl := strings.IndexByte(p.src, '\n')
	if nl < 0 || strings.TrimSpace(p.src[3:nl]) != "" {
		return "", false
	}
	i := nl + 1
	for i <= len(p.src) {
		end := strings.IndexByte(p.src[i:], '\n')
		line := p.src[i:]
		if end >= 0 {
			line = p.src[i : i+end]
		}
		if strings.TrimRight(line, " \t\r") == "---" {
			p.pos = i + len(line)
			return p.src[:p.pos], true
		}
		if end < 0 {
			break
		}
		i += end + 1
	}
	return "", false
}

// nodes parses siblings until EOF or a closing tag. closed reports that a
// closing tag (`</`) is at p.pos.
func (p *parser) nodes(parent string) (out []ast.Node, closed bool, err error) {
	for !p.eof() {
		rest := p.rest()
		switch {
		case strings.HasPrefix(rest, "</"):
			return out, true, nil
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest[4:], "-->")
			if end < 0 {
				return nil, false, p.errorf(p.pos, "unterminated comment")
			}
			n := 4 + end + 3
			out = append(out, &ast.Text{Value: rest[:n]})
			p.pos += n
		case strings.HasPrefix(rest, "<!"):
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return nil, false, p.errorf(p.pos, "unterminated declaration")
			}
			out = append(out, &ast.Text{Value: rest[:end+1]})
			p.pos += end + 1
		case strings.HasPrefix(rest, "<>"):
			frag, err := p.fragment()
			if err != nil {
				return nil, false, err
			}
			out = append(out, frag)
		case len(rest) > 1 && rest[0] == '<' && isNameStart(rest[1]):
			el, err := p.element()
			if err != nil {
				return nil, false, err
			}
			out = append(out, el)
		case rest[0] == '{':
			ex, err := p.expr()
			if err != nil {
				return nil, false, err
			}
			out = append(out, ex)
		default:
			out = appendText(out, p.text())
		}
	}
	if parent != "" {
		return nil, false, p.errorf(p.pos, "unclosed <%s>", parent)
	}
	return out, false, nil
}

// text consumes literal text up to the next tag or expression. A `<` that
// does not open a tag is kept as text.
func (p *parser) text() string {
	start := p.pos
	p.pos++
	for !p.eof() {
		c := p.src[p.pos]
		if c == '{' {
			break
		}
		if c == '<' && p.pos+1 < len(p.src) {
			next := p.src[p.pos+1]
			if next == '/' || next == '!' || next == '>' || isNameStart(next) {
				break
			}
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func appendText(out []ast.Node, s string) []ast.Node {
	if n := len(out); n > 0 {
		if t, ok := out[n-1].(*ast.Text); ok && !strings.HasPrefix(t.Value, "<!") {
			t.Value += s
			return out
		}
	}
	return append(out, &ast.Text{Value: s})
}

func (p *parser) fragment() (*ast.Fragment, error) {
	start := p.pos
	p.pos += len("<>")
	kids, closed, err := p.nodes("fragment")
	if err != nil {
		return nil, err
	}
	if !closed || !strings.HasPrefix(p.rest(), "</>") {
		return nil, p.errorf(start, "unclosed <>")
	}
	p.pos += len("</>")
	return &ast.Fragment{Open: "<>", Close: "</>", Children: kids}, nil
}

func (p *parser) expr() (*ast.Expr, error) {
	kids, err := p.exprBody()
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Children: kids}, nil
}

// exprBody consumes the expression whose `{` is at p.pos, closing brace
// included. Host code becomes Text; markup that starts where a value is
// expected (after `(`, `=>`, `&&`, `?`, `return`, ...) is parsed as elements
// and fragments, so directives inside expressions are visible to the walk.
func (p *parser) exprBody() ([]ast.Node, error) {
	open := p.pos
	p.pos++
	body := p.pos
	lit := p.pos
	depth := 0
	var out []ast.Node
	flush := func() {
		if lit < p.pos {
			out = append(out, &ast.Text{Value: p.src[lit:p.pos]})
		}
	}
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == '{':
			depth++
			p.pos++
		case c == '}':
			if depth == 0 {
				flush()
				p.pos++
				return out, nil
			}
			depth--
			p.pos++
		case c == '"' || c == '\'':
			j := skipQuoted(p.src, p.pos, c)
			if j < 0 {
				return nil, p.errorf(p.pos, "unterminated string in expression")
			}
			p.pos = j + 1
		case c == '`':
			j, err := p.skipTemplate(p.pos)
			if err != nil {
				return nil, err
			}
			p.pos = j + 1
		case strings.HasPrefix(p.rest(), "//"):
			end := strings.IndexByte(p.rest(), '\n')
			if end < 0 {
				p.pos = len(p.src)
				continue
			}
			p.pos += end
		case strings.HasPrefix(p.rest(), "/*"):
			end := strings.Index(p.rest()[2:], "*/")
			if end < 0 {
				return nil, p.errorf(p.pos, "unterminated comment in expression")
			}
			p.pos += 2 + end + 2
		case c == '<' && p.markupStart(body):
			flush()
			var (
				n   ast.Node
				err error
			)
			if strings.HasPrefix(p.rest(), "<>") {
				n, err = p.fragment()
			} else {
				n, err = p.element()
			}
			if err != nil {
				return nil, err
			}
			out = append(out, n)
			lit = p.pos
		default:
			p.pos++
		}
	}
	return nil, p.errorf(open, "unterminated expression")
}

// markupStart reports whether the `<` at p.pos opens markup rather than a
// comparison, judged by the last significant token since body.
func (p *parser) markupStart(body int) bool {
	if p.pos+1 >= len(p.src) {
		return false
	}
	if next := p.src[p.pos+1]; next != '>' && !isNameStart(next) {
		return false
	}
	i := p.pos - 1
	for i >= body && isSpace(p.src[i]) {
		i--
	}
	if i < body {
		return true
	}
	switch p.src[i] {
	case '(', '[', '{', ',', '?', ':', '&', '|', '!', ';':
		return true
	case '>':
		return i > body && p.src[i-1] == '='
	}
	return strings.HasSuffix(p.src[body:i+1], "return") &&
		(i+1-len("return") == body || !isNameChar(p.src[i-len("return")]))
}

// matchBrace returns the index of the `}` closing the `{` at open, skipping
// string and template literals, comments and embedded markup.
func (p *parser) matchBrace(open int) (int, error) {
	save := p.pos
	defer func() { p.pos = save }()
	p.pos = open
	if _, err := p.exprBody(); err != nil {
		return 0, err
	}
	return p.pos - 1, nil
}

// skipQuoted returns the index of the quote closing the one at i, or -1.
func skipQuoted(s string, i int, q byte) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return -1
}

// skipTemplate returns the index of the backtick closing the template literal at i.
func (p *parser) skipTemplate(i int) (int, error) {
	for j := i + 1; j < len(p.src); j++ {
		switch p.src[j] {
		case '\\':
			j++
		case '`':
			return j, nil
		case '$':
			if j+1 < len(p.src) && p.src[j+1] == '{' {
				end, err := p.matchBrace(j + 1)
				if err != nil {
					return 0, err
				}
				j = end
			}
		}
	}
	return 0, p.errorf(i, "unterminated template literal")
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.' || c == ':'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func (p *parser) spaces() string {
	start := p.pos
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) element() (*ast.Element, error) {
	start := p.pos
	p.pos++
	nameStart := p.pos
	for !p.eof() && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	el := &ast.Element{Tag: p.src[nameStart:p.pos]}

	for {
		lead := p.spaces()
		if p.eof() {
			return nil, p.errorf(start, "unterminated <%s> tag", el.Tag)
		}
		rest := p.rest()
		if strings.HasPrefix(rest, "/>") {
			el.OpenTail = lead
			el.SelfClosing = true
			p.pos += 2
			return el, nil
		}
		if rest[0] == '>' {
			el.OpenTail = lead
			p.pos++
			break
		}
		if lead == "" && len(el.Attrs) > 0 {
			return nil, p.errorf(p.pos, "expected whitespace between attributes of <%s>", el.Tag)
		}
		a, err := p.attr()
		if err != nil {
			return nil, err
		}
		a.Lead = lead
		el.Attrs = append(el.Attrs, a)
	}

	lower := strings.ToLower(el.Tag)
	if voidElements[lower] {
		el.Void = true
		return el, nil
	}
	if rawTextElements[lower] {
		return el, p.rawText(el, start)
	}

	kids, closed, err := p.nodes(el.Tag)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, p.errorf(start, "unclosed <%s>", el.Tag)
	}
	el.Children = kids
	return el, p.closeTag(el)
}

func (p *parser) rawText(el *ast.Element, start int) error {
	end := indexFold(p.rest(), "</"+el.Tag)
	if end < 0 {
		return p.errorf(start, "unclosed <%s>", el.Tag)
	}
	if end > 0 {
		el.Children = []ast.Node{&ast.Text{Value: p.src[p.pos : p.pos+end]}}
	}
	p.pos += end
	return p.closeTag(el)
}

func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func (p *parser) closeTag(el *ast.Element) error {
	start := p.pos
	p.pos += len("</")
	nameStart := p.pos
	for !p.eof() && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	if name := p.src[nameStart:p.pos]; !strings.EqualFold(name, el.Tag) {
		return p.errorf(start, "mismatched closing tag </%s> for <%s>", name, el.Tag)
	}
	p.spaces()
	if p.eof() || p.src[p.pos] != '>' {
		return p.errorf(start, "malformed closing tag for <%s>", el.Tag)
	}
	p.pos++
	el.CloseTag = p.src[start:p.pos]
	return nil
}

func (p *parser) attr() (*ast.Attr, error) {
	start := p.pos
	if p.src[p.pos] == '{' {
		end, err := p.matchBrace(p.pos)
		if err != nil {
			return nil, err
		}
		p.pos = end + 1
		return &ast.Attr{Kind: ast.AttrExpr, Value: p.src[start+1 : end], Raw: p.src[start:p.pos]}, nil
	}

	for !p.eof() {
		c := p.src[p.pos]
		if isSpace(c) || c == '=' || c == '>' || c == '{' || c == '"' || c == '\'' || strings.HasPrefix(p.rest(), "/>") {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return nil, p.errorf(p.pos, "unexpected %q in tag", p.src[p.pos])
	}
	a := &ast.Attr{Key: p.src[start:p.pos], Kind: ast.AttrBool}

	afterName := p.pos
	p.spaces()
	if p.eof() || p.src[p.pos] != '=' {
		p.pos = afterName
		a.Raw = p.src[start:p.pos]
		return a, nil
	}
	p.pos++
	p.spaces()
	if p.eof() {
		return nil, p.errorf(start, "missing value for attribute %q", a.Key)
	}

	switch c := p.src[p.pos]; c {
	case '"', '\'':
		end := strings.IndexByte(p.src[p.pos+1:], c)
		if end < 0 {
			return nil, p.errorf(p.pos, "unterminated value for attribute %q", a.Key)
		}
		a.Kind = ast.AttrString
		a.Value = p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
	case '{':
		end, err := p.matchBrace(p.pos)
		if err != nil {
			return nil, err
		}
		a.Kind = ast.AttrExpr
		a.Value = p.src[p.pos+1 : end]
		p.pos = end + 1
	case '`':
		end, err := p.skipTemplate(p.pos)
		if err != nil {
			return nil, err
		}
		a.Kind = ast.AttrTemplate
		a.Parts = templateParts(p.src[p.pos+1 : end])
		p.pos = end + 1
	default:
		vs := p.pos
		for !p.eof() && !isSpace(p.src[p.pos]) && p.src[p.pos] != '>' && !strings.HasPrefix(p.rest(), "/>") {
			p.pos++
		}
		a.Kind = ast.AttrString
		a.Value = p.src[vs:p.pos]
	}
	a.Raw = p.src[start:p.pos]
	return a, nil
}

// templateParts splits the body of a template literal into text and `${}` parts.
func templateParts(body string) []ast.AttrPart {
	var parts []ast.AttrPart
	lit := 0
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' {
			i++
			continue
		}
		if body[i] != '$' || i+1 >= len(body) || body[i+1] != '{' {
			continue
		}
		depth := 0
		end := -1
		for j := i + 1; j < len(body) && end < 0; j++ {
			switch body[j] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = j
				}
			}
		}
		if end < 0 {
			break
		}
		if lit < i {
			parts = append(parts, ast.AttrPart{Value: body[lit:i]})
		}
		parts = append(parts, ast.AttrPart{Expr: true, Value: body[i+2 : end]})
		lit = end + 1
		i = end
	}
	if lit < len(body) {
		parts = append(parts, ast.AttrPart{Value: body[lit:]})
	}
	return parts
}
