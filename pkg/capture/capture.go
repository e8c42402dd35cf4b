// Package capture rasterizes the live preview into an image snapshot and
// bundles it into regeneration requests.
//
// A [Capturer] runs at most one capture at a time. A capture started while
// another is in flight is rejected with [ErrBusy] rather than queued.
// Failures are recoverable: the busy flag is always cleared, the message is
// kept for display in [Capturer.LastError], and the caller may retry.
package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png" // PNG decoder for DecodeConfig
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitecanvas/pkg/cache"
	errs "github.com/matzehuels/sitecanvas/pkg/errors"
	"github.com/matzehuels/sitecanvas/pkg/observability"
)

var (
	// ErrBusy is returned when a capture is already in flight.
	ErrBusy = errors.New("capture already in progress")

	// ErrNotMounted is returned when there is no preview surface to capture.
	ErrNotMounted = errors.New("preview surface is not mounted")
)

// Preview is the rendered document shown in the preview surface.
type Preview struct {
	HTML   string `json:"html"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Surface exposes the live preview. ok is false while nothing is mounted.
type Surface interface {
	Preview() (p Preview, ok bool)
}

// OverlaySurface is a Surface that draws its own marks onto the captured
// image, after caching.
type OverlaySurface interface {
	Surface
	Overlay(png []byte) ([]byte, error)
}

// Rasterizer turns a preview into PNG bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, p Preview) ([]byte, error)
}

// RasterizerFunc adapts a function to Rasterizer.
type RasterizerFunc func(ctx context.Context, p Preview) ([]byte, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, p Preview) ([]byte, error) { return f(ctx, p) }

// Snapshot is a captured image ready to send to the generation service.
// Image is a data:image/png;base64 URL.
type Snapshot struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PNG decodes the image bytes of the snapshot.
func (s Snapshot) PNG() ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if len(s.Image) < len(prefix) || s.Image[:len(prefix)] != prefix {
		return nil, fmt.Errorf("snapshot is not a PNG data URL")
	}
	return base64.StdEncoding.DecodeString(s.Image[len(prefix):])
}

// Request is the regeneration payload sent to the generation service.
type Request struct {
	Snapshot    Snapshot        `json:"snapshot"`
	Plan        string          `json:"plan"`
	Brief       string          `json:"brief"`
	Style       string          `json:"style"`
	NodeContext json.RawMessage `json:"nodeContext,omitempty"`
}

// Brief carries the caller-supplied fields of a regeneration request.
type Brief struct {
	Plan        string          `json:"plan"`
	Brief       string          `json:"brief"`
	Style       string          `json:"style"`
	NodeContext json.RawMessage `json:"nodeContext,omitempty"`
}

// Capturer captures preview snapshots.
type Capturer struct {
	raster Rasterizer
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger

	busy atomic.Bool

	mu      sync.Mutex
	lastErr string
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithCache reuses rasterized PNGs for identical previews.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(cp *Capturer) {
		cp.cache = c
		if keyer != nil {
			cp.keyer = keyer
		}
		cp.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(cp *Capturer) {
		if l != nil {
			cp.logger = l
		}
	}
}

// New creates a Capturer backed by r.
func New(r Rasterizer, opts ...Option) *Capturer {
	c := &Capturer{
		raster: r,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Busy reports whether a capture is in flight.
func (c *Capturer) Busy() bool { return c.busy.Load() }

// LastError returns the message of the most recent failed capture, or ""
// if the last capture succeeded.
func (c *Capturer) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Capturer) setLastError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

// Capture rasterizes the surface's current preview.
func (c *Capturer) Capture(ctx context.Context, s Surface) (Snapshot, error) {
	if !c.busy.CompareAndSwap(false, true) {
		observability.Capture().OnCaptureRejected(ctx)
		return Snapshot{}, errs.Wrap(errs.ErrCodeCaptureBusy, ErrBusy, "a capture is already running")
	}
	defer c.busy.Store(false)

	snap, err := c.capture(ctx, s)
	if err != nil {
		c.setLastError(errs.UserMessage(err))
		c.logger.Warn("capture failed", "err", err)
		return Snapshot{}, err
	}
	c.setLastError("")
	return snap, nil
}

func (c *Capturer) capture(ctx context.Context, s Surface) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, errs.Wrap(errs.ErrCodeNotMounted, ErrNotMounted, "nothing to capture")
	}
	p, ok := s.Preview()
	if !ok {
		return Snapshot{}, errs.Wrap(errs.ErrCodeNotMounted, ErrNotMounted, "nothing to capture")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return Snapshot{}, errs.New(errs.ErrCodeInvalidInput, "preview size %dx%d is empty", p.Width, p.Height)
	}

	start := time.Now()
	observability.Capture().OnCaptureStart(ctx, p.Width, p.Height)

	data, err := c.rasterize(ctx, p)
	if ov, ok := s.(OverlaySurface); ok && err == nil {
		data, err = ov.Overlay(data)
	}
	if err != nil {
		observability.Capture().OnCaptureComplete(ctx, 0, time.Since(start), err)
		return Snapshot{}, errs.Wrap(errs.ErrCodeCaptureFailed, err, "could not capture preview: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		observability.Capture().OnCaptureComplete(ctx, len(data), time.Since(start), err)
		return Snapshot{}, errs.Wrap(errs.ErrCodeCaptureFailed, err, "rasterizer returned an unreadable image")
	}

	observability.Capture().OnCaptureComplete(ctx, len(data), time.Since(start), nil)
	c.logger.Debug("captured snapshot", "bytes", len(data), "width", cfg.Width, "height", cfg.Height, "duration", time.Since(start))
	return Snapshot{
		Image:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func (c *Capturer) rasterize(ctx context.Context, p Preview) ([]byte, error) {
	if c.raster == nil {
		return nil, errors.New("no rasterizer configured")
	}
	key := c.keyer.SnapshotKey(cache.Hash([]byte(p.HTML)), cache.SnapshotKeyOpts{Width: p.Width, Height: p.Height})
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		c.logger.Debug("snapshot cache hit", "key", key)
		return data, nil
	}

	data, err := c.raster.Rasterize(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("snapshot cache write failed", "err", err)
	}
	return data, nil
}

// BuildRequest captures the surface and assembles a regeneration request.
func (c *Capturer) BuildRequest(ctx context.Context, s Surface, b Brief) (Request, error) {
	snap, err := c.Capture(ctx, s)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Snapshot:    snap,
		Plan:        b.Plan,
		Brief:       b.Brief,
		Style:       b.Style,
		NodeContext: b.NodeContext,
	}, nil
}

// StaticSurface is a Surface holding a fixed preview.
type StaticSurface struct {
	P       Preview
	Mounted bool
}

func (s *StaticSurface) Preview() (Preview, bool) {
	if s == nil || !s.Mounted {
		return Preview{}, false
	}
	return s.P, true
}
