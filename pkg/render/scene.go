package render

import (
	"github.com/matzehuels/sitecanvas/pkg/annotate"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/guides"
	"github.com/matzehuels/sitecanvas/pkg/ruler"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

const (
	// RulerSize is the thickness of a ruler band in pixels.
	RulerSize = 20.0

	// DefaultAccent is the colour of annotations and strokes.
	DefaultAccent = "#ff3d7f"

	labelGap = 8.0

	noteFontSize = 12
	tickFontSize = 9

	// maxPixels bounds the overlay image rasterized by PNG.
	maxPixels = 1 << 26
)

// Scene is everything drawn on the overlay.
type Scene struct {
	View        viewport.Viewport
	Guides      []guides.Guide
	Annotations []annotate.Annotation
	Strokes     []annotate.Stroke

	// Draft is the circle being sized, if any.
	Draft *annotate.DraftCircle
	// Live holds the points of the stroke being drawn.
	Live []geom.Point
}

// Option configures a renderer.
type Option func(*renderer)

type renderer struct {
	accent string
	rulers bool
	steps  ruler.Steps
}

// WithRulers draws the top and left rulers using steps.
func WithRulers(steps ruler.Steps) Option {
	return func(r *renderer) {
		r.rulers = true
		r.steps = steps
	}
}

// WithAccent sets the annotation and stroke colour.
func WithAccent(color string) Option {
	return func(r *renderer) {
		if color != "" {
			r.accent = color
		}
	}
}

func newRenderer(opts ...Option) renderer {
	r := renderer{accent: DefaultAccent, steps: ruler.DefaultSteps}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// local maps a canvas point to overlay pixels (origin at the viewport's
// top-left corner).
func (s *Scene) local(p geom.Point) (geom.Point, bool) {
	sp, ok := s.View.ScreenPoint(p)
	if !ok {
		return geom.Point{}, false
	}
	return sp.Sub(geom.Pt(s.View.Bounds.Left(), s.View.Bounds.Top())), true
}

// guideLine returns the overlay-space endpoints of a guide.
func (s *Scene) guideLine(g guides.Guide) (a, b geom.Point, ok bool) {
	w, h := s.View.Bounds.Width, s.View.Bounds.Height
	if g.Axis == geom.Vertical {
		p, ok := s.local(geom.Pt(g.Position, 0))
		return geom.Pt(p.X, 0), geom.Pt(p.X, h), ok
	}
	p, ok := s.local(geom.Pt(0, g.Position))
	return geom.Pt(0, p.Y), geom.Pt(w, p.Y), ok
}

// circle returns the overlay-space centre and radius of a canvas circle.
func (s *Scene) circle(x, y, radius float64) (geom.Point, float64, bool) {
	c, ok := s.local(geom.Pt(x, y))
	return c, radius * s.View.Zoom, ok
}

func (s *Scene) polyline(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if lp, ok := s.local(p); ok {
			out = append(out, lp)
		}
	}
	return out
}

// tickLength returns the drawn length of a ruler tick.
func tickLength(k ruler.Kind) float64 {
	switch k {
	case ruler.Major:
		return 12
	case ruler.Mid:
		return 8
	default:
		return 4
	}
}
