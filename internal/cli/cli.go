// Package cli implements the sitecanvas command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitecanvas/internal/config"
	"github.com/matzehuels/sitecanvas/pkg/buildinfo"
	"github.com/matzehuels/sitecanvas/pkg/cache"
	"github.com/matzehuels/sitecanvas/pkg/capture"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sitecanvas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sitecanvas is the iteration canvas for generated sites",
		Long:         `Sitecanvas serves the iteration canvas of a site editor: rulers, guides, annotations and alignment over a live preview, and snapshots with the user's marks burned in for regeneration.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.marksCommand())
	root.AddCommand(c.stepsCommand())
	root.AddCommand(c.captureCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default path when unset. Only
// an explicit path must exist.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath, true)
	}
	return config.Load(config.DefaultPath(), false)
}

// =============================================================================
// Capture Factory
// =============================================================================

// capturers returns a factory of capturers sharing one headless Chrome
// rasterizer. Rasterized previews are cached on disk unless caching is
// disabled. The rasterizer must be closed by the caller.
func (c *CLI) capturers(cfg config.Capture, noCache bool) (func() *capture.Capturer, *capture.RodRasterizer) {
	raster := capture.NewRodRasterizer(cfg.BrowserURL,
		capture.WithTimeout(cfg.Timeout),
		capture.WithRodLogger(c.Logger),
	)
	opts := []capture.Option{capture.WithLogger(c.Logger)}
	if cfg.Cache && !noCache {
		opts = append(opts, capture.WithCache(newCache(c.Logger), nil, cfg.CacheTTL))
	}
	return func() *capture.Capturer { return capture.New(raster, opts...) }, raster
}

func newCache(logger *log.Logger) cache.Cache {
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("snapshot cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return cache.WithHooks(fc, "snapshot")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sitecanvas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
