package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kilianc/directify/internal/directify/server"
	"github.com/kilianc/directify/internal/directify/transform"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transform API and a preview page",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if v := strings.TrimSpace(listen); v != "" {
				e.cfg.Serve.Listen = v
			}
			if !e.cfg.Debug() {
				gin.SetMode(gin.ReleaseMode)
			}
			tr := transform.NewFromConfig(e.cfg, e.logger)
			srv := server.New(tr, e.verbose)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, e.cfg.Serve.Listen, srv.Router(), e.logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "http listen address (overrides serve.listen)")
	return cmd
}
