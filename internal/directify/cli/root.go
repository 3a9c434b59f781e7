// Package cli implements the directify command line.
package cli

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianc/directify/internal/directify/config"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

type rootOptions struct {
	cfgPath string
	root    string
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "directify",
		Short:         "Rewrite d: directive attributes into plain markup expressions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	fs := cmd.PersistentFlags()
	fs.StringVarP(&opts.cfgPath, "config", "c", config.FileName, "config yaml path (relative to --root)")
	fs.StringVar(&opts.root, "root", "", "project root (defaults to the working directory)")

	cmd.AddCommand(
		newGenCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// env is what every subcommand needs once flags are parsed.
type env struct {
	cfg    *config.Config
	root   string
	logger *log.Logger
	// verbose receives per-file generator lines at debug level only.
	verbose *log.Logger
}

func (o *rootOptions) load(stderr io.Writer) (*env, error) {
	root := strings.TrimSpace(o.root)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfgPath := strings.TrimSpace(o.cfgPath)
	if cfgPath != "" && !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(root, cfgPath)
	}
	cfg, err := config.LoadIfExists(cfgPath)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:     cfg,
		root:    root,
		logger:  log.New(io.Discard, "", 0),
		verbose: log.New(io.Discard, "", 0),
	}
	if !cfg.Quiet() {
		e.logger = log.New(stderr, "", log.LstdFlags)
	}
	if cfg.Debug() {
		e.verbose = e.logger
	}
	return e, nil
}
