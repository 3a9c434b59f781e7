// Package generate turns source files on disk into generated files next to
// them (or under an output directory).
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianc/directify/internal/directify/config"
	"github.com/kilianc/directify/internal/directify/directive"
	"github.com/kilianc/directify/internal/directify/outfile"
	"github.com/kilianc/directify/internal/directify/transform"
)

type Options struct {
	Transformer *transform.Transformer
	Extensions  []string
	// Suffix is inserted before the extension of generated files.
	Suffix string
	// OutDir, when set, mirrors generated files relative to Root.
	OutDir      string
	Root        string
	Concurrency int
	Logger      *log.Logger
}

type Generator struct {
	tr          *transform.Transformer
	extensions  []string
	suffix      string
	outDir      string
	root        string
	concurrency int
	logger      *log.Logger
}

func New(opts Options) (*Generator, error) {
	g := &Generator{
		tr:          opts.Transformer,
		extensions:  opts.Extensions,
		suffix:      opts.Suffix,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
	if g.tr == nil {
		g.tr = transform.New(transform.Options{})
	}
	if len(g.extensions) == 0 {
		g.extensions = []string{".astro"}
	}
	if g.suffix == "" {
		g.suffix = ".gen"
	}
	if g.concurrency <= 0 {
		g.concurrency = runtime.GOMAXPROCS(0)
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard, "", 0)
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	var err error
	if g.root, err = filepath.Abs(root); err != nil {
		return nil, err
	}
	if opts.OutDir != "" {
		out := opts.OutDir
		if !filepath.IsAbs(out) {
			out = filepath.Join(g.root, out)
		}
		g.outDir = filepath.Clean(out)
	}
	return g, nil
}

// FromConfig wires a generator rooted at root from cfg.
func FromConfig(cfg *config.Config, root string, logger *log.Logger) (*Generator, error) {
	return New(Options{
		Transformer: transform.NewFromConfig(cfg, logger),
		Extensions:  cfg.Extensions,
		Suffix:      cfg.Output.Suffix,
		OutDir:      cfg.Output.Dir,
		Root:        root,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	})
}

func (g *Generator) Transformer() *transform.Transformer { return g.tr }

type FileResult struct {
	Source string
	Output string
	// Written is false when the generated file was already up to date.
	Written     bool
	Changed     bool
	Cached      bool
	Tasks       int
	Diagnostics []directive.Diagnostic
	Err         error
}

type Report struct {
	Files    []FileResult
	Duration time.Duration
}

func (r Report) Written() int {
	n := 0
	for _, f := range r.Files {
		if f.Written {
			n++
		}
	}
	return n
}

func (r Report) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Load reads path and transforms it keyed by the path itself.
func (g *Generator) Load(path string) (string, transform.Result, error) {
	// #nosec G304 -- path comes from Collect or the watcher.
	b, err := os.ReadFile(path)
	if err != nil {
		return "", transform.Result{}, err
	}
	if !g.IsSource(path) {
		return string(b), transform.Result{Output: string(b)}, nil
	}
	res, err := g.tr.Run(path, string(b))
	return string(b), res, err
}

// File generates the output for a single source.
func (g *Generator) File(path string) FileResult {
	fr := FileResult{Source: path}
	out, err := g.OutputPath(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Output = out

	_, res, err := g.Load(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Changed = res.Changed
	fr.Cached = res.Cached
	fr.Tasks = res.Tasks
	fr.Diagnostics = res.Diagnostics

	written, err := outfile.WriteGeneratedFile(out, []byte(res.Output))
	if err != nil {
		fr.Err = fmt.Errorf("%s: %w", out, err)
		return fr
	}
	fr.Written = written
	if written {
		g.logger.Printf("directify: generated: src=%q out=%q tasks=%d", path, out, res.Tasks)
	}
	return fr
}

// Run generates every path with bounded concurrency. A failing file does not
// stop the others; the returned error joins every per-file failure.
func (g *Generator) Run(ctx context.Context, paths []string) (Report, error) {
	start := time.Now()
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	results := make([]FileResult, len(sorted))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, p := range sorted {
		i, p := i, p
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Source: p, Err: err}
				return err
			}
			results[i] = g.File(p)
			return nil
		})
	}
	waitErr := eg.Wait()

	var allErr error
	for _, r := range results {
		if r.Err != nil {
			g.logger.Printf("directify: generate failed: src=%q err=%v", r.Source, r.Err)
			allErr = errors.Join(allErr, r.Err)
		}
	}
	if allErr == nil {
		allErr = waitErr
	}
	return Report{Files: results, Duration: time.Since(start)}, allErr
}

// Patterns collects sources for patterns (./... when empty) and runs them.
func (g *Generator) Patterns(ctx context.Context, cwd string, patterns []string) (Report, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	paths, err := g.Collect(cwd, patterns)
	if err != nil {
		return Report{}, err
	}
	return g.Run(ctx, paths)
}
