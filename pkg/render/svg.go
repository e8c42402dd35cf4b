package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/sitecanvas/pkg/fonts"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/ruler"
)

const overlayCSS = `
    .ruler { fill: #f4f4f5; }
    .tick { stroke: #71717a; stroke-width: 1; }
    .tick-label { font-size: 9px; font-family: ` + fonts.FallbackFontFamily + `; fill: #52525b; }
    .note { font-size: 12px; font-family: ` + fonts.FallbackFontFamily + `; }
    .draft { stroke-dasharray: 4 3; }`

// SVG renders the overlay of s as a standalone SVG document sized to the
// viewport.
func SVG(s Scene, opts ...Option) []byte {
	r := newRenderer(opts...)
	w, h := s.View.Bounds.Width, s.View.Bounds.Height

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", overlayCSS)

	renderGuides(&buf, &s)
	renderStrokes(&buf, &s, r.accent)
	renderAnnotations(&buf, &s, r.accent)
	if r.rulers {
		renderRulers(&buf, &s, r.steps)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGuides(buf *bytes.Buffer, s *Scene) {
	for _, g := range s.Guides {
		a, b, ok := s.guideLine(g)
		if !ok {
			continue
		}
		fmt.Fprintf(buf, `  <line id="%s" class="guide guide-%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
			html.EscapeString(g.ID), g.Axis, a.X, a.Y, b.X, b.Y, html.EscapeString(g.Color))
	}
}

func renderStrokes(buf *bytes.Buffer, s *Scene, accent string) {
	for _, st := range s.Strokes {
		writePolyline(buf, st.ID, s.polyline(st.Points), accent, false)
	}
	if len(s.Live) > 0 {
		writePolyline(buf, "stroke-live", s.polyline(s.Live), accent, true)
	}
}

func writePolyline(buf *bytes.Buffer, id string, pts []geom.Point, color string, live bool) {
	if len(pts) == 0 {
		return
	}
	fill := `fill="none"`
	if live {
		fill = fmt.Sprintf(`fill="%s" fill-opacity="0.15"`, color)
	}
	fmt.Fprintf(buf, `  <polyline id="%s" class="stroke" %s stroke="%s" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" points="`,
		html.EscapeString(id), fill, color)
	for i, p := range pts {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%.1f,%.1f", p.X, p.Y)
	}
	buf.WriteString(`"/>` + "\n")
}

func renderAnnotations(buf *bytes.Buffer, s *Scene, accent string) {
	for _, a := range s.Annotations {
		c, radius, ok := s.circle(a.X, a.Y, a.Radius)
		if !ok {
			continue
		}
		fmt.Fprintf(buf, `  <circle id="%s" class="annotation" cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
			html.EscapeString(a.ID), c.X, c.Y, radius, accent)
		if a.Note != "" {
			// label sits to the right of the bounding box, vertically centred
			fmt.Fprintf(buf, `  <text class="note" x="%.1f" y="%.1f" dominant-baseline="middle" fill="%s">%s</text>`+"\n",
				c.X+radius+labelGap, c.Y, accent, html.EscapeString(a.Note))
		}
	}
	if d := s.Draft; d != nil {
		c, radius, ok := s.circle(d.X, d.Y, d.Radius)
		if ok {
			fmt.Fprintf(buf, `  <circle class="annotation draft" cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
				c.X, c.Y, radius, accent)
		}
	}
}

func renderRulers(buf *bytes.Buffer, s *Scene, steps ruler.Steps) {
	w, h := s.View.Bounds.Width, s.View.Bounds.Height
	fmt.Fprintf(buf, `  <rect class="ruler ruler-x" x="0" y="0" width="%.1f" height="%.1f"/>`+"\n", w, RulerSize)
	fmt.Fprintf(buf, `  <rect class="ruler ruler-y" x="0" y="0" width="%.1f" height="%.1f"/>`+"\n", RulerSize, h)

	for _, t := range ruler.Ticks(geom.Horizontal, &s.View, steps) {
		l := tickLength(t.Kind)
		fmt.Fprintf(buf, `  <line class="tick tick-%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			t.Kind, t.Pos, RulerSize-l, t.Pos, RulerSize)
		if t.Label != "" {
			fmt.Fprintf(buf, `  <text class="tick-label" x="%.1f" y="9">%s</text>`+"\n", t.Pos+2, t.Label)
		}
	}
	for _, t := range ruler.Ticks(geom.Vertical, &s.View, steps) {
		l := tickLength(t.Kind)
		fmt.Fprintf(buf, `  <line class="tick tick-%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			t.Kind, RulerSize-l, t.Pos, RulerSize, t.Pos)
		if t.Label != "" {
			fmt.Fprintf(buf, `  <text class="tick-label" x="2" y="%.1f">%s</text>`+"\n", t.Pos-2, t.Label)
		}
	}
}
