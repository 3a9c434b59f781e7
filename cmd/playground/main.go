package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kilianc/directify/internal/directify/config"
	"github.com/kilianc/directify/internal/directify/generate"
	"github.com/kilianc/directify/internal/directify/outfile"
	"github.com/kilianc/directify/internal/directify/preview"
	"github.com/kilianc/directify/internal/directify/watch"
)

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintln(os.Stderr, "Usage: playground [flags]")
		_, _ = fmt.Fprintln(os.Stderr, "")
		_, _ = fmt.Fprintln(os.Stderr, "Watches ./playground/page.astro, regenerates it and writes ./playground/preview.html on changes.")
		flag.PrintDefaults()
	}
	debounce := flag.Duration("debounce", 150*time.Millisecond, "change debounce window")
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := watchAndGenerate(ctx, *debounce); err != nil {
		fatal(err)
	}
}

func watchAndGenerate(ctx context.Context, debounce time.Duration) error {
	root, err := findModuleRoot(".")
	if err != nil {
		return err
	}
	dir := filepath.Join(root, "playground")
	target := filepath.Join(dir, "page.astro")
	logger := log.New(os.Stderr, "playground: ", 0)

	cfg, err := config.LoadIfExists(filepath.Join(root, config.FileName))
	if err != nil {
		return err
	}
	g, err := generate.FromConfig(cfg, root, logger)
	if err != nil {
		return err
	}

	build := func() {
		fr := g.File(target)
		if fr.Err != nil {
			logger.Printf("generate failed: %v", fr.Err)
		}
		if err := writePreview(g, target, filepath.Join(dir, "preview.html")); err != nil {
			logger.Printf("preview failed: %v", err)
		}
	}
	build()

	closer, err := watch.Start(watch.Options{
		Roots:    []string{dir},
		Debounce: debounce,
		Match:    func(p string) bool { return p == target },
		Logger:   logger,
		OnChange: func([]string) { build() },
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return closer.Close()
}

func writePreview(g *generate.Generator, target, out string) error {
	src, res, err := g.Load(target)
	if src == "" && err != nil {
		return err
	}
	page := preview.Page{
		Title:       "directify playground",
		Key:         filepath.Base(target),
		Source:      src,
		Output:      res.Output,
		Diagnostics: res.Diagnostics,
		Err:         err,
	}
	var buf bytes.Buffer
	if err := preview.Render(&buf, page); err != nil {
		return err
	}
	_, err = outfile.WriteGeneratedFile(out, buf.Bytes())
	return err
}

func findModuleRoot(start string) (string, error) {
	d, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", fmt.Errorf("could not find go.mod above %s", start)
		}
		d = parent
	}
}

func fatal(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
