package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianc/directify/internal/directify/generate"
	"github.com/kilianc/directify/internal/directify/watch"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Generate, then regenerate sources as they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			g, err := generate.FromConfig(e.cfg, e.root, e.verbose)
			if err != nil {
				return err
			}
			dirs := make([]string, 0, len(args))
			for _, a := range args {
				if !filepath.IsAbs(a) {
					a = filepath.Join(e.root, a)
				}
				dirs = append(dirs, a)
			}
			if len(dirs) == 0 {
				dirs = []string{e.root}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, e, g, dirs)
		},
	}
}

func runWatch(ctx context.Context, cmd *cobra.Command, e *env, g *generate.Generator, dirs []string) error {
	out := cmd.OutOrStdout()
	s := newStyles(out)

	patterns := make([]string, len(dirs))
	for i, d := range dirs {
		patterns[i] = filepath.Join(d, "...")
	}
	rep, err := g.Patterns(ctx, e.root, patterns)
	printReport(out, s, e.root, rep)
	if err != nil {
		e.logger.Printf("directify: initial generate failed: %v", err)
	}

	closer, err := watch.Start(watch.Options{
		Roots:    dirs,
		Debounce: time.Duration(e.cfg.Watch.DebounceMs) * time.Millisecond,
		Match:    g.IsSource,
		SkipDir:  generate.SkipDir,
		Logger:   e.logger,
		OnChange: func(paths []string) {
			for _, p := range paths {
				regenerate(out, s, e, g, p)
			}
		},
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return closer.Close()
}

// regenerate rebuilds one changed source, or removes its output when the
// source is gone.
func regenerate(out io.Writer, s styles, e *env, g *generate.Generator, p string) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		target, err := g.OutputPath(p)
		if err != nil {
			return
		}
		if err := os.Remove(target); err == nil {
			e.logger.Printf("directify: removed: out=%q", target)
		}
		return
	}
	printFile(out, s, e.root, g.File(p))
}
