package cli

import (
	"github.com/spf13/cobra"

	"github.com/kilianc/directify/internal/directify/generate"
)

func newGenCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "gen [paths...]",
		Short: "Generate one output file per source",
		Long: `Generate one output file next to each source (or under output.dir).

Paths behave like Go patterns:
  ./...         recurse from --root
  ./dir         only that directory (non-recursive)
  ./dir/...     recurse from that directory
  ./page.astro  only that file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			g, err := generate.FromConfig(e.cfg, e.root, e.verbose)
			if err != nil {
				return err
			}
			rep, err := g.Patterns(cmd.Context(), e.root, args)
			if !e.cfg.Quiet() || err != nil {
				out := cmd.OutOrStdout()
				printReport(out, newStyles(out), e.root, rep)
			}
			return err
		},
	}
}
