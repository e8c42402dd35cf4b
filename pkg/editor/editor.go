// Package editor hosts the iteration canvas inside the editor's step
// navigation.
//
// An [Editor] owns a view-mode controller and mounts a fresh
// [canvas.Session] whenever the mode enters iterate; leaving iterate tears
// the session down together with its guides, annotations and strokes. The
// editor also owns the live preview used for regeneration captures and
// persists canvas state through a [store.Store].
//
// An Editor is safe for concurrent use. Canvas operations run under its
// lock through [Editor.Do]; captures hold the lock only while copying the
// preview and overlay, so a second capture arriving while one is rasterizing
// is rejected as busy instead of waiting.
package editor

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitecanvas/pkg/canvas"
	"github.com/matzehuels/sitecanvas/pkg/capture"
	errs "github.com/matzehuels/sitecanvas/pkg/errors"
	"github.com/matzehuels/sitecanvas/pkg/render"
	"github.com/matzehuels/sitecanvas/pkg/store"
	"github.com/matzehuels/sitecanvas/pkg/viewmode"
)

// Editor is one user's editing session.
type Editor struct {
	mu sync.Mutex

	modes    *viewmode.Controller
	loc      *viewmode.MemoryLocation
	canvas   *canvas.Session
	canvasCf canvas.Config

	preview    capture.Preview
	hasPreview bool

	capturer *capture.Capturer
	store    store.Store
	logger   *log.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithCanvasConfig sets the config of every canvas session the editor mounts.
func WithCanvasConfig(cfg canvas.Config) Option {
	return func(e *Editor) { e.canvasCf = cfg }
}

// WithCapturer sets the capturer used by Capture.
func WithCapturer(c *capture.Capturer) Option {
	return func(e *Editor) { e.capturer = c }
}

// WithStore sets the project store used by Save and Load.
func WithStore(s store.Store) Option {
	return func(e *Editor) { e.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an editor in the start step. The editor is attached to an
// in-memory location holding fragment, which is adopted if it names a mode.
func New(fragment string, opts ...Option) *Editor {
	e := &Editor{
		modes:    viewmode.NewController(),
		loc:      viewmode.NewMemoryLocation(fragment),
		canvasCf: canvas.DefaultConfig(),
		store:    store.NewMemoryStore(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.canvasCf.Logger == nil {
		e.canvasCf.Logger = e.logger
	}
	e.modes.OnChange(e.modeChanged)
	e.modes.Mount(e.loc)
	return e
}

func (e *Editor) modeChanged(ch viewmode.Change) {
	e.logger.Debug("view mode changed", "from", ch.From, "to", ch.To, "origin", ch.Origin)
	switch {
	case ch.To.Iteration() && e.canvas == nil:
		cfg := e.canvasCf
		cfg.ID = ""
		e.canvas = canvas.New(cfg)
	case !ch.To.Iteration() && e.canvas != nil:
		e.canvas.Close()
		e.canvas = nil
	}
}

// Mode returns the active step.
func (e *Editor) Mode() viewmode.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modes.Mode()
}

// Fragment returns the current URL fragment.
func (e *Editor) Fragment() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loc.Fragment()
}

// Request switches steps on behalf of the UI.
func (e *Editor) Request(m viewmode.Mode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.modes.Request(m) {
		return errs.New(errs.ErrCodeInvalidMode, "unknown view mode %v", m)
	}
	return nil
}

// Navigate applies an external fragment change, as from the back button.
// Unrecognised fragments are ignored and reported as false.
func (e *Editor) Navigate(fragment string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loc.Navigate(fragment)
	_, ok := viewmode.ParseFragment(fragment)
	return ok
}

// Do runs fn with the mounted canvas session under the editor's lock. It
// fails with NOT_MOUNTED outside the iterate step.
func (e *Editor) Do(fn func(*canvas.Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.canvas == nil {
		return errs.New(errs.ErrCodeNotMounted, "the iteration canvas is only available in the iterate step")
	}
	return fn(e.canvas)
}

// SetPreview replaces the live preview document.
func (e *Editor) SetPreview(p capture.Preview) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preview, e.hasPreview = p, true
}

// Preview returns the preview while a preview step is showing it.
func (e *Editor) Preview() (capture.Preview, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previewLocked()
}

func (e *Editor) previewLocked() (capture.Preview, bool) {
	if !e.hasPreview || !e.modes.IsPreviewMode() {
		return capture.Preview{}, false
	}
	return e.preview, true
}

// Capture snapshots the preview, with the canvas overlay burned in when the
// canvas is mounted, and builds a regeneration request.
func (e *Editor) Capture(ctx context.Context, b capture.Brief) (capture.Request, error) {
	e.mu.Lock()
	if e.capturer == nil {
		e.mu.Unlock()
		return capture.Request{}, errs.New(errs.ErrCodeInternal, "capture is not configured")
	}
	p, ok := e.previewLocked()
	surface := &frozenSurface{preview: p, mounted: ok}
	if e.canvas != nil {
		sc := e.canvas.Scene()
		surface.scene = &sc
		surface.opts = e.canvas.RenderOptions(false)
	}
	c := e.capturer
	e.mu.Unlock()

	return c.BuildRequest(ctx, surface, b)
}

// CaptureBusy reports whether a capture is running.
func (e *Editor) CaptureBusy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capturer != nil && e.capturer.Busy()
}

// CaptureError returns the message of the last failed capture.
func (e *Editor) CaptureError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capturer == nil {
		return ""
	}
	return e.capturer.LastError()
}

// Save persists the canvas state under key.
func (e *Editor) Save(ctx context.Context, key string) error {
	return e.Do(func(s *canvas.Session) error {
		data, err := s.MarshalState()
		if err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "encode canvas state")
		}
		if err := e.store.Put(ctx, key, data); err != nil {
			return err
		}
		e.logger.Debug("canvas saved", "key", key, "bytes", len(data))
		return nil
	})
}

// Load restores the canvas state saved under key. Invalid parts of the saved
// state are skipped and logged.
func (e *Editor) Load(ctx context.Context, key string) error {
	return e.Do(func(s *canvas.Session) error {
		data, err := e.store.Get(ctx, key)
		if err != nil {
			return err
		}
		var st canvas.State
		if err := json.Unmarshal(data, &st); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "saved state for %q is corrupt", key)
		}
		if err := s.Restore(st); err != nil {
			e.logger.Warn("canvas state partially restored", "key", key, "err", err)
		}
		return nil
	})
}

// Close tears down the canvas and detaches the location.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.canvas != nil {
		e.canvas.Close()
		e.canvas = nil
	}
	e.modes.Unmount()
}

// frozenSurface is the preview and overlay as they were when a capture
// started.
type frozenSurface struct {
	preview capture.Preview
	mounted bool
	scene   *render.Scene
	opts    []render.Option
}

func (f *frozenSurface) Preview() (capture.Preview, bool) { return f.preview, f.mounted }

func (f *frozenSurface) Overlay(png []byte) ([]byte, error) {
	if f.scene == nil {
		return png, nil
	}
	return render.CompositePNG(png, *f.scene, f.opts...)
}
