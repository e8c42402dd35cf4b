package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/matzehuels/sitecanvas/pkg/buildinfo"
	"github.com/matzehuels/sitecanvas/pkg/cache"
)

// DefaultTimeout bounds a single rasterization.
const DefaultTimeout = 30 * time.Second

// RodRasterizer renders previews in headless Chrome. It connects to a
// remote browser when a DevTools URL is configured and launches a local one
// otherwise. The browser is started lazily and reused across captures.
type RodRasterizer struct {
	remoteURL string
	timeout   time.Duration
	logger    *log.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// RodOption configures a RodRasterizer.
type RodOption func(*RodRasterizer)

// WithTimeout bounds each rasterization.
func WithTimeout(d time.Duration) RodOption {
	return func(r *RodRasterizer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRodLogger sets the logger.
func WithRodLogger(l *log.Logger) RodOption {
	return func(r *RodRasterizer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRodRasterizer creates a rasterizer. remoteURL is a DevTools websocket
// URL; empty launches a local headless Chrome on first use.
func NewRodRasterizer(remoteURL string, opts ...RodOption) *RodRasterizer {
	r := &RodRasterizer{remoteURL: remoteURL, timeout: DefaultTimeout, logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rasterize loads p.HTML into a fresh tab sized to the preview and returns a
// PNG screenshot of the viewport. Browser connection failures are retried.
func (r *RodRasterizer) Rasterize(ctx context.Context, p Preview) ([]byte, error) {
	var out []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		b, err := r.connect()
		if err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		data, err := r.screenshot(ctx, b, p)
		if err != nil {
			return err
		}
		out = data
		return nil
	})
	return out, err
}

func (r *RodRasterizer) screenshot(ctx context.Context, b *rod.Browser, p Preview) ([]byte, error) {
	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		r.reset()
		return nil, cache.Retryable(fmt.Errorf("%w: open tab: %v", cache.ErrNetwork, err))
	}
	defer page.Close()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: buildinfo.UserAgent()}); err != nil {
		r.logger.Debug("set user agent failed", "err", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             p.Width,
		Height:            p.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(p.HTML); err != nil {
		return nil, fmt.Errorf("load preview: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		r.logger.Warn("preview load timeout", "err", err)
	}

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}

func (r *RodRasterizer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	wsURL := r.remoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		wsURL = u
		r.lnch = l
		r.logger.Info("launched local chrome", "url", wsURL)
	} else {
		r.logger.Info("connecting to remote browser", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		r.cleanupLocked()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	r.browser = b
	return b, nil
}

// reset drops a browser that stopped responding so the next attempt reconnects.
func (r *RodRasterizer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupLocked()
}

func (r *RodRasterizer) cleanupLocked() {
	if r.browser != nil {
		_ = r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
}

// Close shuts the browser down.
func (r *RodRasterizer) Close() error {
	r.reset()
	return nil
}
