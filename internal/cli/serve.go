package cli

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sitecanvas/internal/server"
	"github.com/matzehuels/sitecanvas/pkg/store"
)

const sweepInterval = time.Minute

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noCapture bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor HTTP API",
		Long: `Run the editor HTTP API.

Each client session is an editor with its own step, preview and iteration
canvas. Canvas state is kept in memory and persisted to the configured store
only when a client saves it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx := cmd.Context()

			st, err := store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()
			c.Logger.Info("project store ready", "backend", cfg.Store.Backend)

			scfg := server.Config{
				Addr:            cfg.Server.Addr,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				IdleTTL:         cfg.Server.SessionIdleTTL,
				Canvas:          cfg.Canvas(),
				Store:           st,
				Logger:          c.Logger,
			}
			if !noCapture {
				factory, raster := c.capturers(cfg.Capture, noCache)
				defer raster.Close()
				scfg.NewCapturer = factory
			}
			srv := server.New(scfg)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(gctx) })
			g.Go(func() error { return srv.RunSweeper(gctx, sweepInterval) })
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the snapshot cache")
	cmd.Flags().BoolVar(&noCapture, "no-capture", false, "disable snapshot capture")

	return cmd
}
