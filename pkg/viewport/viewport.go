// Package viewport maps between screen pixels and canvas space.
//
// The mapping is parameterized by the viewport's bounding rectangle on
// screen, a pan offset and a zoom level:
//
//	canvas = (screen - bounds.origin - pan) / zoom
//	screen = canvas*zoom + pan + bounds.origin
//
// [ToCanvasPoint] and [ToScreenPoint] are exact inverses of each other. Both
// report "no point" (ok == false) instead of failing when the input is
// degenerate: missing bounds, non-finite coordinates, or a zoom level that is
// not strictly positive. Callers treat a missing point as a no-op.
//
// [Viewport] holds the mutable pan/zoom state of an iteration session and
// implements the pan and zoom-to-cursor gestures on top of the pure mapping.
package viewport

import "github.com/matzehuels/sitecanvas/pkg/geom"

// Zoom limits applied by [Viewport.ZoomAt] and [Viewport.SetZoom] when the
// viewport was created without explicit limits.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 8.0
)

// ToCanvasPoint converts a screen-space point into canvas space.
func ToCanvasPoint(screen geom.Point, bounds *geom.Rect, pan geom.Point, zoom float64) (geom.Point, bool) {
	if !valid(bounds, pan, zoom) || !screen.Finite() {
		return geom.Point{}, false
	}
	p := geom.Point{
		X: (screen.X - bounds.Left() - pan.X) / zoom,
		Y: (screen.Y - bounds.Top() - pan.Y) / zoom,
	}
	if !p.Finite() {
		return geom.Point{}, false
	}
	return p, true
}

// ToScreenPoint converts a canvas-space point into screen space.
func ToScreenPoint(canvas geom.Point, bounds *geom.Rect, pan geom.Point, zoom float64) (geom.Point, bool) {
	if !valid(bounds, pan, zoom) || !canvas.Finite() {
		return geom.Point{}, false
	}
	p := geom.Point{
		X: canvas.X*zoom + pan.X + bounds.Left(),
		Y: canvas.Y*zoom + pan.Y + bounds.Top(),
	}
	if !p.Finite() {
		return geom.Point{}, false
	}
	return p, true
}

func valid(bounds *geom.Rect, pan geom.Point, zoom float64) bool {
	return bounds != nil && bounds.Finite() && pan.Finite() && geom.Finite(zoom) && zoom > 0
}

// Viewport is the pan/zoom state of the iteration canvas.
// The zero value is not usable; construct with [New].
type Viewport struct {
	Bounds geom.Rect  `json:"bounds"`
	Pan    geom.Point `json:"pan"`
	Zoom   float64    `json:"zoom"`

	minZoom float64
	maxZoom float64
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithZoomLimits sets the zoom range. Non-positive or inverted limits are ignored.
func WithZoomLimits(lo, hi float64) Option {
	return func(v *Viewport) {
		if lo > 0 && hi >= lo && geom.Finite(hi) {
			v.minZoom, v.maxZoom = lo, hi
		}
	}
}

// New creates a viewport with the given bounds, no pan and zoom 1.
func New(bounds geom.Rect, opts ...Option) *Viewport {
	v := &Viewport{
		Bounds:  bounds,
		Zoom:    1,
		minZoom: DefaultMinZoom,
		maxZoom: DefaultMaxZoom,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CanvasPoint maps a client-space pointer position to canvas space using the
// bounding rectangle delivered with the pointer event.
func (v *Viewport) CanvasPoint(client geom.Point, bounds *geom.Rect) (geom.Point, bool) {
	return ToCanvasPoint(client, bounds, v.Pan, v.Zoom)
}

// ScreenPoint maps a canvas-space point to screen space using the viewport's own bounds.
func (v *Viewport) ScreenPoint(canvas geom.Point) (geom.Point, bool) {
	b := v.Bounds
	return ToScreenPoint(canvas, &b, v.Pan, v.Zoom)
}

// SetBounds replaces the viewport bounds. Non-finite bounds are ignored.
func (v *Viewport) SetBounds(b geom.Rect) bool {
	if !b.Finite() {
		return false
	}
	v.Bounds = b
	return true
}

// SetZoom sets the zoom level, clamped to the configured limits.
// Zero, negative and non-finite values are rejected.
func (v *Viewport) SetZoom(z float64) bool {
	if !geom.Finite(z) || z <= 0 {
		return false
	}
	v.Zoom = geom.Clamp(z, v.minZoom, v.maxZoom)
	return true
}

// PanBy shifts the pan offset by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) bool {
	if !geom.Finite(dx) || !geom.Finite(dy) {
		return false
	}
	v.Pan.X += dx
	v.Pan.Y += dy
	return true
}

// ZoomAt multiplies the zoom by factor while keeping the canvas point under
// the given screen position fixed.
func (v *Viewport) ZoomAt(screen geom.Point, factor float64) bool {
	if !geom.Finite(factor) || factor <= 0 {
		return false
	}
	b := v.Bounds
	anchor, ok := ToCanvasPoint(screen, &b, v.Pan, v.Zoom)
	if !ok {
		return false
	}
	v.Zoom = geom.Clamp(v.Zoom*factor, v.minZoom, v.maxZoom)
	v.Pan.X = screen.X - b.Left() - anchor.X*v.Zoom
	v.Pan.Y = screen.Y - b.Top() - anchor.Y*v.Zoom
	return true
}

// Reset restores pan {0,0} and zoom 1.
func (v *Viewport) Reset() {
	v.Pan = geom.Point{}
	v.Zoom = 1
}

// VisibleCanvas returns the canvas-space rectangle currently visible.
func (v *Viewport) VisibleCanvas() geom.Rect {
	if v.Zoom <= 0 {
		return geom.Rect{}
	}
	x := -v.Pan.X / v.Zoom
	y := -v.Pan.Y / v.Zoom
	return geom.Rect{X: x, Y: y, Width: v.Bounds.Width / v.Zoom, Height: v.Bounds.Height / v.Zoom}
}
