// Package canvas assembles one iteration-canvas session.
//
// A [Session] owns the viewport, the interaction surface, the guide set, the
// annotation overlay and the tool state machine. Pointer events enter through
// [Session.HandlePointer]: a pointer-down goes to the active tool, which may
// open a gesture session on the surface; every event is then dispatched to
// the surface so open gestures see their moves and their terminal event.
//
// Pointer-downs on a ruler or a guide line bypass the tool machine through
// [Session.RulerDown] and [Session.GuideDown]; they work with every tool.
//
// A session is single-threaded. Callers that share one across goroutines
// must serialize access.
package canvas

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sitecanvas/pkg/align"
	"github.com/matzehuels/sitecanvas/pkg/annotate"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/guides"
	"github.com/matzehuels/sitecanvas/pkg/observability"
	"github.com/matzehuels/sitecanvas/pkg/pointer"
	"github.com/matzehuels/sitecanvas/pkg/render"
	"github.com/matzehuels/sitecanvas/pkg/ruler"
	"github.com/matzehuels/sitecanvas/pkg/tool"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

// DefaultZoomStep is the factor of one zoom-tool click.
const DefaultZoomStep = 1.25

// Config holds the tunables of a session.
type Config struct {
	// ID names the session in logs and hooks. Empty generates a UUID.
	ID     string
	Bounds geom.Rect

	Steps           ruler.Steps
	GuideColor      string
	MinCommitRadius float64
	PencilEpsilon   float64
	MinZoom         float64
	MaxZoom         float64
	ZoomStep        float64

	// CommitHook supplies note text for committed annotations.
	CommitHook annotate.CommitHook
	Logger     *log.Logger
}

// DefaultConfig returns a config for an 800x600 viewport.
func DefaultConfig() Config {
	return Config{
		Bounds:          geom.R(0, 0, 800, 600),
		Steps:           ruler.DefaultSteps,
		GuideColor:      guides.DefaultColor,
		MinCommitRadius: annotate.DefaultMinCommitRadius,
		PencilEpsilon:   annotate.DefaultEpsilon,
		MinZoom:         viewport.DefaultMinZoom,
		MaxZoom:         viewport.DefaultMaxZoom,
		ZoomStep:        DefaultZoomStep,
	}
}

// Session is one mounted iteration canvas.
type Session struct {
	id     string
	cfg    Config
	logger *log.Logger
	opened time.Time

	view    *viewport.Viewport
	surface *pointer.Surface
	guides  *guides.Manager
	overlay *annotate.Overlay
	tools   *tool.Machine

	pan      *pointer.Session
	panLast  geom.Point
	panStart time.Time

	closed bool
}

// New mounts a session.
func New(cfg Config) *Session {
	def := DefaultConfig()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Steps == (ruler.Steps{}) {
		cfg.Steps = def.Steps
	}
	if cfg.ZoomStep <= 1 {
		cfg.ZoomStep = def.ZoomStep
	}
	if cfg.MinZoom <= 0 || cfg.MaxZoom < cfg.MinZoom {
		cfg.MinZoom, cfg.MaxZoom = def.MinZoom, def.MaxZoom
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("session", cfg.ID)

	s := &Session{
		id:      cfg.ID,
		cfg:     cfg,
		logger:  logger,
		opened:  time.Now(),
		view:    viewport.New(cfg.Bounds, viewport.WithZoomLimits(cfg.MinZoom, cfg.MaxZoom)),
		surface: pointer.NewSurface(),
	}
	s.guides = guides.New(s.surface, s.view,
		guides.WithColor(cfg.GuideColor),
		guides.WithLogger(logger),
	)
	overlayOpts := []annotate.Option{annotate.WithLogger(logger), annotate.WithCommitHook(cfg.CommitHook)}
	if cfg.MinCommitRadius > 0 {
		overlayOpts = append(overlayOpts, annotate.WithMinCommitRadius(cfg.MinCommitRadius))
	}
	if cfg.PencilEpsilon > 0 {
		overlayOpts = append(overlayOpts, annotate.WithEpsilon(cfg.PencilEpsilon))
	}
	s.overlay = annotate.New(s.surface, s.view, overlayOpts...)

	s.tools = tool.New(tool.Routes{
		Pan:    tool.HandlerFunc(s.beginPan),
		Zoom:   tool.HandlerFunc(s.zoomClick),
		Pencil: tool.HandlerFunc(func(ev pointer.Event) { s.overlay.BeginStroke(ev) }),
		Note:   tool.HandlerFunc(func(ev pointer.Event) { s.overlay.BeginCircle(ev) }),
	})
	s.tools.OnChange(func(from, to tool.Tool) {
		s.overlay.End()
		s.endPan()
		s.logger.Debug("tool changed", "from", from, "to", to)
	})

	s.surface.Mount()
	observability.Session().OnSessionOpen(context.Background(), s.id)
	s.logger.Debug("canvas mounted", "bounds", cfg.Bounds)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool { return s.closed }

// Viewport returns a copy of the current viewport.
func (s *Session) Viewport() viewport.Viewport { return *s.view }

// Guides returns the guide manager.
func (s *Session) Guides() *guides.Manager { return s.guides }

// Overlay returns the annotation overlay.
func (s *Session) Overlay() *annotate.Overlay { return s.overlay }

// Tool returns the active tool.
func (s *Session) Tool() tool.Tool { return s.tools.Active() }

// SelectTool activates t.
func (s *Session) SelectTool(t tool.Tool) bool {
	if s.closed {
		return false
	}
	return s.tools.Select(t)
}

// HandlePointer feeds one pointer event from the canvas into the engine.
func (s *Session) HandlePointer(ev pointer.Event) {
	if s.closed {
		return
	}
	if ev.Kind == pointer.Down {
		s.tools.Dispatch(ev)
	}
	s.surface.Dispatch(ev)
}

// RulerDown starts a ruler drag that creates a guide on axis at the pointer
// and drags it until release.
func (s *Session) RulerDown(axis geom.Axis, ev pointer.Event) (string, bool) {
	if s.closed {
		return "", false
	}
	return s.guides.BeginFromRuler(axis, ev)
}

// GuideDown starts dragging an existing guide.
func (s *Session) GuideDown(id string) bool {
	if s.closed {
		return false
	}
	return s.guides.BeginDrag(id)
}

// GuideDoubleClick removes a guide.
func (s *Session) GuideDoubleClick(id string) bool {
	return s.guides.RemoveGuide(id)
}

// Resize updates the viewport bounds.
func (s *Session) Resize(b geom.Rect) bool { return s.view.SetBounds(b) }

// Wheel zooms one step at the pointer: in for a negative delta, out for a
// positive one.
func (s *Session) Wheel(ev pointer.Event, delta float64) bool {
	if s.closed || ev.Bounds == nil || delta == 0 || !geom.Finite(delta) {
		return false
	}
	factor := s.cfg.ZoomStep
	if delta > 0 {
		factor = 1 / factor
	}
	return s.view.ZoomAt(ev.Client, factor)
}

// ResetView restores pan {0,0} and zoom 1.
func (s *Session) ResetView() { s.view.Reset() }

func (s *Session) zoomClick(ev pointer.Event) {
	if ev.Bounds == nil {
		return
	}
	factor := s.cfg.ZoomStep
	if ev.Alt {
		factor = 1 / factor
	}
	if s.view.ZoomAt(ev.Client, factor) {
		s.logger.Debug("zoomed", "zoom", s.view.Zoom)
	}
}

func (s *Session) beginPan(ev pointer.Event) {
	s.endPan()
	if !ev.Client.Finite() {
		return
	}
	s.panLast = ev.Client
	s.pan = pointer.Begin(s.surface, pointer.Handlers{
		Move: s.trackPan,
		End: func(ev pointer.Event) {
			if ev.Kind == pointer.Up {
				s.trackPan(ev)
			}
			s.pan = nil
			observability.Gesture().OnGestureEnd("pan", true, time.Since(s.panStart))
		},
	})
	if s.pan != nil {
		s.panStart = time.Now()
		observability.Gesture().OnGestureStart("pan")
	}
}

func (s *Session) trackPan(ev pointer.Event) {
	if !ev.Client.Finite() {
		return
	}
	d := ev.Client.Sub(s.panLast)
	if s.view.PanBy(d.X, d.Y) {
		s.panLast = ev.Client
	}
}

func (s *Session) endPan() {
	if s.pan != nil {
		s.pan.Stop()
	}
}

// Panning reports whether a pan drag is in progress.
func (s *Session) Panning() bool { return s.pan.Active() }

// Ticks returns the visible ticks of a ruler.
func (s *Session) Ticks(axis geom.Axis) []ruler.Tick {
	return ruler.Ticks(axis, s.view, s.cfg.Steps)
}

// Align aligns elems against scope, or against their selection bounds when
// scope is nil. ok is false when nothing is selected.
func (s *Session) Align(op align.Op, elems []align.Element, scope *geom.Rect) ([]align.Element, bool) {
	out, ok := align.Apply(op, elems, scope)
	if ok {
		s.logger.Debug("aligned", "op", op, "elements", len(elems))
	}
	return out, ok
}

// Scene returns the overlay as it should be drawn now.
func (s *Session) Scene() render.Scene {
	sc := render.Scene{
		View:        *s.view,
		Guides:      s.guides.Guides(),
		Annotations: s.overlay.Annotations(),
		Strokes:     s.overlay.Strokes(),
	}
	if d, ok := s.overlay.Draft(); ok {
		sc.Draft = &d
	}
	if s.overlay.Drawing() {
		sc.Live = s.overlay.LiveStroke()
	}
	return sc
}

// RenderOptions returns the options the overlay is drawn with. Annotations
// and strokes share the guide colour.
func (s *Session) RenderOptions(rulers bool) []render.Option {
	opts := []render.Option{render.WithAccent(s.cfg.GuideColor)}
	if rulers {
		opts = append(opts, render.WithRulers(s.cfg.Steps))
	}
	return opts
}

// SVG renders the overlay with rulers.
func (s *Session) SVG() []byte {
	return render.SVG(s.Scene(), s.RenderOptions(true)...)
}

// ListenerCount returns the number of pointer listeners installed on the
// surface. It is zero whenever no gesture is in progress.
func (s *Session) ListenerCount() int { return s.surface.ListenerCount() }

// Close ends every gesture and unmounts the surface. Closing twice does nothing.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.overlay.Close()
	s.guides.Close()
	s.endPan()
	s.surface.Unmount()
	s.closed = true
	observability.Session().OnSessionClose(context.Background(), s.id, time.Since(s.opened))
	s.logger.Debug("canvas unmounted")
}
