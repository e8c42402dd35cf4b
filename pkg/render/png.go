package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/sitecanvas/pkg/fonts"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/ruler"
)

// PNG rasterizes the overlay of s onto a transparent image the size of the
// viewport.
func PNG(s Scene, opts ...Option) ([]byte, error) {
	w := int(math.Ceil(s.View.Bounds.Width))
	h := int(math.Ceil(s.View.Bounds.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("viewport %dx%d is empty", w, h)
	}
	if s.View.Bounds.Width*s.View.Bounds.Height > maxPixels {
		return nil, fmt.Errorf("viewport %dx%d exceeds %d pixels", w, h, maxPixels)
	}
	dc := gg.NewContext(w, h)
	draw(dc, &s, newRenderer(opts...))
	return encode(dc)
}

// CompositePNG draws the overlay of s onto a PNG snapshot. When the
// snapshot and the viewport differ in size the overlay is scaled to fit.
func CompositePNG(snapshot []byte, s Scene, opts ...Option) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(snapshot))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	dc := gg.NewContextForImage(img)
	if bw, bh := s.View.Bounds.Width, s.View.Bounds.Height; bw > 0 && bh > 0 {
		b := img.Bounds()
		dc.Scale(float64(b.Dx())/bw, float64(b.Dy())/bh)
	}
	draw(dc, &s, newRenderer(opts...))
	return encode(dc)
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func draw(dc *gg.Context, s *Scene, r renderer) {
	for _, g := range s.Guides {
		a, b, ok := s.guideLine(g)
		if !ok {
			continue
		}
		dc.SetHexColor(g.Color)
		dc.SetLineWidth(1)
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
		dc.Stroke()
	}

	dc.SetHexColor(r.accent)
	dc.SetLineWidth(2)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, st := range s.Strokes {
		if tracePath(dc, s.polyline(st.Points)) {
			dc.Stroke()
		}
	}
	if tracePath(dc, s.polyline(s.Live)) {
		dc.StrokePreserve()
		dc.ClosePath()
		setAlpha(dc, r.accent, 0.15)
		dc.Fill()
		dc.SetHexColor(r.accent)
	}

	setFace(dc, noteFontSize)
	for _, a := range s.Annotations {
		c, radius, ok := s.circle(a.X, a.Y, a.Radius)
		if !ok {
			continue
		}
		dc.DrawCircle(c.X, c.Y, radius)
		dc.Stroke()
		if a.Note != "" {
			dc.DrawStringAnchored(a.Note, c.X+radius+labelGap, c.Y, 0, 0.5)
		}
	}
	if d := s.Draft; d != nil {
		if c, radius, ok := s.circle(d.X, d.Y, d.Radius); ok {
			dc.SetDash(4, 3)
			dc.DrawCircle(c.X, c.Y, radius)
			dc.Stroke()
			dc.SetDash()
		}
	}

	if r.rulers {
		drawRulers(dc, s, r.steps)
	}
}

// setFace switches to the embedded font, keeping gg's built-in face if the
// font cannot be loaded.
func setFace(dc *gg.Context, size float64) {
	if f, err := fonts.Face(size); err == nil {
		dc.SetFontFace(f)
	}
}

func tracePath(dc *gg.Context, pts []geom.Point) bool {
	if len(pts) == 0 {
		return false
	}
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	return true
}

func setAlpha(dc *gg.Context, hex string, alpha float64) {
	dc.SetHexColor(hex)
	var r8, g8, b8 int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r8, &g8, &b8); err == nil {
		dc.SetRGBA(float64(r8)/255, float64(g8)/255, float64(b8)/255, alpha)
	}
}

func drawRulers(dc *gg.Context, s *Scene, steps ruler.Steps) {
	w, h := s.View.Bounds.Width, s.View.Bounds.Height
	dc.SetHexColor("#f4f4f5")
	dc.DrawRectangle(0, 0, w, RulerSize)
	dc.DrawRectangle(0, 0, RulerSize, h)
	dc.Fill()

	dc.SetHexColor("#71717a")
	dc.SetLineWidth(1)
	setFace(dc, tickFontSize)
	for _, t := range ruler.Ticks(geom.Horizontal, &s.View, steps) {
		dc.DrawLine(t.Pos, RulerSize-tickLength(t.Kind), t.Pos, RulerSize)
		dc.Stroke()
		if t.Label != "" {
			dc.DrawString(t.Label, t.Pos+2, 9)
		}
	}
	for _, t := range ruler.Ticks(geom.Vertical, &s.View, steps) {
		dc.DrawLine(RulerSize-tickLength(t.Kind), t.Pos, RulerSize, t.Pos)
		dc.Stroke()
		if t.Label != "" {
			dc.DrawString(t.Label, 2, t.Pos-2)
		}
	}
}
