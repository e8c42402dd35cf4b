package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sitecanvas/pkg/capture"
)

// captureCommand creates the capture command.
func (c *CLI) captureCommand() *cobra.Command {
	var (
		output  string
		width   int
		height  int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "capture <file.html>",
		Short: "Rasterize an HTML preview to PNG",
		Long: `Rasterize an HTML preview to PNG in headless Chrome.

This is the snapshot the editor sends for regeneration, without the canvas
overlay.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			html, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read preview: %w", err)
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}

			factory, raster := c.capturers(cfg.Capture, noCache)
			defer raster.Close()
			capturer := factory()

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(cmd.Context(), "Capturing preview...")
			spinner.Start()

			surface := &capture.StaticSurface{
				P:       capture.Preview{HTML: string(html), Width: width, Height: height},
				Mounted: true,
			}
			snap, err := capturer.Capture(cmd.Context(), surface)
			if err != nil {
				spinner.StopWithError("Capture failed")
				return err
			}
			spinner.Stop()

			data, err := snap.PNG()
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			prog.done(fmt.Sprintf("Captured preview %dx%d", snap.Width, snap.Height))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <file>.png)")
	cmd.Flags().IntVar(&width, "width", 1280, "viewport width in pixels")
	cmd.Flags().IntVar(&height, "height", 800, "viewport height in pixels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the snapshot cache")

	return cmd
}
