// Package config loads the sitecanvas TOML configuration.
//
// Missing keys take their defaults, so an empty or absent file is a valid
// configuration:
//
//	[engine]
//	min_commit_radius = 6
//	pencil_epsilon = 2
//	guide_color = "#ff3d7f"
//
//	[server]
//	addr = ":8080"
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[capture]
//	browser_url = "ws://127.0.0.1:9222/devtools/browser/..."
//	timeout = "30s"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sitecanvas/pkg/annotate"
	"github.com/matzehuels/sitecanvas/pkg/canvas"
	errs "github.com/matzehuels/sitecanvas/pkg/errors"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/guides"
	"github.com/matzehuels/sitecanvas/pkg/ruler"
	"github.com/matzehuels/sitecanvas/pkg/store"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

const appName = "sitecanvas"

// Config is the full configuration.
type Config struct {
	Engine  Engine       `toml:"engine"`
	Server  Server       `toml:"server"`
	Store   store.Config `toml:"store"`
	Capture Capture      `toml:"capture"`
}

// Engine tunes the interaction engine.
type Engine struct {
	MinCommitRadius float64 `toml:"min_commit_radius"`
	PencilEpsilon   float64 `toml:"pencil_epsilon"`
	RulerMinor      float64 `toml:"ruler_minor"`
	RulerMid        float64 `toml:"ruler_mid"`
	RulerMajor      float64 `toml:"ruler_major"`
	GuideColor      string  `toml:"guide_color"`
	MinZoom         float64 `toml:"min_zoom"`
	MaxZoom         float64 `toml:"max_zoom"`
	Width           float64 `toml:"width"`
	Height          float64 `toml:"height"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	SessionIdleTTL  time.Duration `toml:"session_idle_ttl"`
}

// Capture configures snapshot rasterization.
type Capture struct {
	BrowserURL string        `toml:"browser_url"`
	Timeout    time.Duration `toml:"timeout"`
	Cache      bool          `toml:"cache"`
	CacheTTL   time.Duration `toml:"cache_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: Engine{
			MinCommitRadius: annotate.DefaultMinCommitRadius,
			PencilEpsilon:   annotate.DefaultEpsilon,
			RulerMinor:      ruler.DefaultSteps.Minor,
			RulerMid:        ruler.DefaultSteps.Mid,
			RulerMajor:      ruler.DefaultSteps.Major,
			GuideColor:      guides.DefaultColor,
			MinZoom:         viewport.DefaultMinZoom,
			MaxZoom:         viewport.DefaultMaxZoom,
			Width:           800,
			Height:          600,
		},
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			SessionIdleTTL:  30 * time.Minute,
		},
		Store: store.Config{Backend: "memory"},
		Capture: Capture{
			Timeout:  30 * time.Second,
			Cache:    true,
			CacheTTL: 24 * time.Hour,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/sitecanvas/config.toml, falling back
// to ~/.config/sitecanvas/config.toml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// Load reads path over the defaults. A missing file yields the defaults;
// an explicit path that does not exist is an error only when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a TOML document over the defaults.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse config")
	}
	if err := checkUndecoded(md); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	e := c.Engine
	switch {
	case !positive(e.RulerMinor) || !positive(e.RulerMid) || !positive(e.RulerMajor):
		return errs.New(errs.ErrCodeInvalidInput, "ruler steps must be positive")
	case !geom.Finite(e.MinCommitRadius) || e.MinCommitRadius < 0:
		return errs.New(errs.ErrCodeInvalidInput, "min_commit_radius must be >= 0")
	case !geom.Finite(e.PencilEpsilon) || e.PencilEpsilon < 0:
		return errs.New(errs.ErrCodeInvalidInput, "pencil_epsilon must be >= 0")
	case !positive(e.MinZoom) || !positive(e.MaxZoom) || e.MinZoom > e.MaxZoom:
		return errs.New(errs.ErrCodeInvalidInput, "zoom limits must satisfy 0 < min_zoom <= max_zoom")
	case !positive(e.Width) || !positive(e.Height):
		return errs.New(errs.ErrCodeInvalidInput, "viewport width and height must be positive")
	}
	if err := errs.ValidateColor(e.GuideColor); err != nil {
		return err
	}
	if !slices.Contains(store.Backends, c.Store.Backend) {
		return errs.New(errs.ErrCodeInvalidInput, "store backend must be one of %v", store.Backends)
	}
	if err := errs.ValidateBrowserURL(c.Capture.BrowserURL); err != nil {
		return err
	}
	if c.Capture.Timeout <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "capture timeout must be positive")
	}
	return nil
}

func checkUndecoded(md toml.MetaData) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errs.New(errs.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
	}
	return nil
}

func positive(v float64) bool { return geom.Finite(v) && v > 0 }

// Canvas returns the canvas session config described by the engine section.
func (c Config) Canvas() canvas.Config {
	e := c.Engine
	return canvas.Config{
		Bounds:          geom.R(0, 0, e.Width, e.Height),
		Steps:           c.Steps(),
		GuideColor:      e.GuideColor,
		MinCommitRadius: e.MinCommitRadius,
		PencilEpsilon:   e.PencilEpsilon,
		MinZoom:         e.MinZoom,
		MaxZoom:         e.MaxZoom,
	}
}

// Steps returns the ruler steps.
func (c Config) Steps() ruler.Steps {
	return ruler.Steps{Minor: c.Engine.RulerMinor, Mid: c.Engine.RulerMid, Major: c.Engine.RulerMajor}
}
