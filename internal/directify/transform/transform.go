// Package transform runs directive handlers over a document and coalesces the
// resulting chains.
//
// A transform is two passes over one tree. The first walks the tree and
// records a task per directive attribute without touching anything; the tasks
// then run in document order. The second pass (chain.Coalesce) splices chain
// runs. Splicing while walking would shift the indices of siblings that have
// not been visited yet.
package transform

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/kilianc/directify/internal/directify/ast"
	"github.com/kilianc/directify/internal/directify/chain"
	"github.com/kilianc/directify/internal/directify/directive"
	"github.com/kilianc/directify/internal/directify/markup"
)

const DefaultPrefix = "d:"

type Parser interface {
	Parse(src string) (*ast.Document, error)
}

type Serializer interface {
	Serialize(doc *ast.Document) (string, error)
}

type Options struct {
	// Prefix marks directive attributes. Defaults to DefaultPrefix.
	Prefix string
	// Handlers are caller handlers by directive name. They win over the
	// member handlers derived from Chains.
	Handlers directive.Handlers
	// Disabled names are dropped after merging, so their attributes are only
	// stripped.
	Disabled []string
	// Chains defaults to chain.Default().
	Chains     *chain.Registry
	Parser     Parser
	Serializer Serializer
	// Cache is optional.
	Cache  *Cache
	Logger *log.Logger
}

// Transformer is safe for concurrent use on distinct documents.
type Transformer struct {
	prefix     string
	handlers   directive.Handlers
	chains     *chain.Registry
	parser     Parser
	serializer Serializer
	cache      *Cache
	logger     *log.Logger
}

// DefaultHandlers are the immediate directives enabled out of the box. Chain
// members come from the registry.
func DefaultHandlers() directive.Handlers {
	return directive.Handlers{"for": directive.For}
}

func New(opts Options) *Transformer {
	t := &Transformer{
		prefix:     opts.Prefix,
		chains:     opts.Chains,
		parser:     opts.Parser,
		serializer: opts.Serializer,
		cache:      opts.Cache,
		logger:     opts.Logger,
	}
	if t.prefix == "" {
		t.prefix = DefaultPrefix
	}
	if t.chains == nil {
		t.chains = chain.Default()
	}
	if t.parser == nil {
		t.parser = markup.Codec{}
	}
	if t.serializer == nil {
		t.serializer = markup.Codec{}
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard, "", 0)
	}
	handlers := opts.Handlers
	if handlers == nil {
		handlers = DefaultHandlers()
	}
	t.handlers = t.chains.Merge(handlers)
	for _, name := range opts.Disabled {
		delete(t.handlers, name)
	}
	return t
}

func (t *Transformer) Prefix() string { return t.prefix }

// Handles reports whether name has a handler. Other prefixed attributes are
// stripped without effect.
func (t *Transformer) Handles(name string) bool {
	_, ok := t.handlers[name]
	return ok
}

type Result struct {
	Output string
	// Changed is false when src was returned as is.
	Changed     bool
	Cached      bool
	Tasks       int
	Diagnostics []directive.Diagnostic
}

// Transform rewrites the directives in src. key identifies the document for
// caching; an empty key disables the cache for this call.
func (t *Transformer) Transform(key, src string) (string, error) {
	res, err := t.Run(key, src)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

func (t *Transformer) Run(key, src string) (Result, error) {
	if !strings.Contains(src, t.prefix) {
		return Result{Output: src}, nil
	}
	if key != "" && t.cache != nil {
		if out, ok := t.cache.Get(key, src); ok {
			return Result{Output: out, Changed: out != src, Cached: true}, nil
		}
	}

	doc, err := t.parser.Parse(src)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", displayKey(key), err)
	}

	tasks := t.collect(doc)
	if len(tasks) == 0 {
		return Result{Output: src}, nil
	}

	res := Result{Changed: true, Tasks: len(tasks)}
	report := func(d directive.Diagnostic) {
		res.Diagnostics = append(res.Diagnostics, d)
		t.logger.Printf("directify: %s: key=%q", d, key)
	}
	for _, tk := range tasks {
		t.apply(doc, tk, report)
	}
	chain.Coalesce(doc, t.chains)

	out, err := t.serializer.Serialize(doc)
	if err != nil {
		return Result{}, fmt.Errorf("serialize %s: %w", displayKey(key), err)
	}
	if key != "" && t.cache != nil {
		t.cache.Put(key, src, out)
	}
	res.Output = out
	return res, nil
}

func displayKey(key string) string {
	if key == "" {
		return "<input>"
	}
	return key
}

// task is one directive attribute found by the walk. handler is nil for
// directives nobody handles; those are only stripped.
type task struct {
	tag     *ast.Element
	attr    *ast.Attr
	handler directive.Handler
	parent  ast.Node
	index   int
}

func (t *Transformer) collect(doc *ast.Document) []task {
	var tasks []task
	ast.Walk(doc, func(n, parent ast.Node, index int) bool {
		el, ok := n.(*ast.Element)
		if !ok {
			return true
		}
		if parent == ast.Node(doc) {
			parent = nil
		}
		for _, a := range el.Attrs {
			name, ok := strings.CutPrefix(a.Key, t.prefix)
			if !ok {
				continue
			}
			tasks = append(tasks, task{
				tag:     el,
				attr:    a,
				handler: t.handlers[name],
				parent:  parent,
				index:   index,
			})
		}
		return true
	})
	return tasks
}

func (t *Transformer) apply(doc *ast.Document, tk task, report directive.Reporter) {
	parent, index := resolve(doc, tk)
	args := &directive.Args{
		Tag:    tk.tag,
		Attr:   tk.attr,
		Root:   doc,
		Parent: parent,
		Index:  index,
		Report: report,
	}
	if tk.handler == nil {
		args.RemoveAttribute()
		return
	}
	tk.handler.Handle(args)
}

// resolve returns where tk.tag sits now. An earlier task on the same element
// may have moved it, e.g. d:for wrapping it in an expression.
func resolve(doc *ast.Document, tk task) (ast.Node, int) {
	container := tk.parent
	if container == nil {
		container = doc
	}
	if kids := ast.ChildrenOf(container); kids != nil && tk.index >= 0 && tk.index < len(*kids) && (*kids)[tk.index] == ast.Node(tk.tag) {
		return tk.parent, tk.index
	}
	parent, index, ok := ast.Locate(doc, tk.tag)
	if !ok {
		return tk.parent, directive.NoIndex
	}
	if parent == ast.Node(doc) {
		parent = nil
	}
	return parent, index
}
