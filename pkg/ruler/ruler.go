// Package ruler computes the tick marks shown on the canvas rulers.
//
// [BuildMarks] generates the marks for a canvas-space value range. [Ticks]
// derives that range from a viewport's pixel extent, places every mark at its
// ruler-local screen position and drops marks that fall outside the ruler.
package ruler

import (
	"math"
	"strconv"

	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

// maxMarks caps a single ruler. A range that would need more marks than this
// is treated as unrenderable and yields none.
const maxMarks = 100_000

// Kind classifies a mark.
type Kind int

const (
	Minor Kind = iota
	Mid
	Major
)

func (k Kind) String() string {
	switch k {
	case Minor:
		return "minor"
	case Mid:
		return "mid"
	case Major:
		return "major"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Steps are the spacings of minor, mid and major marks in canvas units.
type Steps struct {
	Minor float64 `json:"minor" toml:"minor"`
	Mid   float64 `json:"mid" toml:"mid"`
	Major float64 `json:"major" toml:"major"`
}

// DefaultSteps are 10/50/100.
var DefaultSteps = Steps{Minor: 10, Mid: 50, Major: 100}

func (s Steps) valid() bool {
	return geom.Finite(s.Minor) && s.Minor > 0 &&
		geom.Finite(s.Mid) && s.Mid > 0 &&
		geom.Finite(s.Major) && s.Major > 0
}

// Mark is one tick in canvas space. Only major marks carry a label.
type Mark struct {
	Value float64 `json:"value"`
	Kind  Kind    `json:"kind"`
	Label string  `json:"label,omitempty"`
}

// BuildMarks returns every multiple of steps.Minor from
// floor(lo/minor)*minor through ceil(hi/minor)*minor inclusive.
// It returns nil when hi <= lo, when either bound is non-finite, when the
// steps are not positive, or when the range is so far from the origin that
// adjacent marks are no longer distinct floats.
func BuildMarks(lo, hi float64, steps Steps) []Mark {
	if !geom.Finite(lo) || !geom.Finite(hi) || hi <= lo || !steps.valid() {
		return nil
	}
	first := math.Floor(lo / steps.Minor)
	last := math.Ceil(hi / steps.Minor)
	if !geom.Finite(first) || !geom.Finite(last) || last-first+1 > maxMarks {
		return nil
	}
	if first+1 == first || last-1 == last {
		return nil
	}

	count := int(last-first) + 1
	marks := make([]Mark, 0, count)
	for i := 0; i < count; i++ {
		v := (first + float64(i)) * steps.Minor
		if v == 0 {
			v = 0 // normalise -0
		}
		m := Mark{Value: v, Kind: Minor}
		switch {
		case multipleOf(v, steps.Major):
			m.Kind = Major
			m.Label = strconv.FormatFloat(v, 'f', -1, 64)
		case multipleOf(v, steps.Mid):
			m.Kind = Mid
		}
		marks = append(marks, m)
	}
	return marks
}

func multipleOf(v, step float64) bool {
	q := v / step
	return math.Abs(q-math.Round(q)) < 1e-9
}

// Tick is a mark placed on a ruler. Pos is measured in screen pixels from
// the ruler's origin (the viewport's left or top edge).
type Tick struct {
	Mark
	Pos float64 `json:"pos"`
}

// Range returns the canvas-space interval covered by the viewport along
// axis: the inverse transform of pixel 0 and of the width (horizontal) or
// height (vertical).
func Range(axis geom.Axis, v *viewport.Viewport) (lo, hi float64, ok bool) {
	b := v.Bounds
	start, ok1 := v.CanvasPoint(geom.Pt(b.Left(), b.Top()), &b)
	end, ok2 := v.CanvasPoint(geom.Pt(b.Right(), b.Bottom()), &b)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	if axis == geom.Vertical {
		return start.Y, end.Y, true
	}
	return start.X, end.X, true
}

// Ticks returns the visible ticks of the horizontal (x) or vertical (y)
// ruler. Marks more than one minor step outside the ruler are dropped.
func Ticks(axis geom.Axis, v *viewport.Viewport, steps Steps) []Tick {
	lo, hi, ok := Range(axis, v)
	if !ok {
		return nil
	}
	marks := BuildMarks(lo, hi, steps)
	if len(marks) == 0 {
		return nil
	}

	extent, origin := v.Bounds.Width, v.Bounds.Left()
	if axis == geom.Vertical {
		extent, origin = v.Bounds.Height, v.Bounds.Top()
	}
	margin := steps.Minor

	ticks := make([]Tick, 0, len(marks))
	for _, m := range marks {
		p := geom.Pt(m.Value, 0)
		if axis == geom.Vertical {
			p = geom.Pt(0, m.Value)
		}
		s, ok := v.ScreenPoint(p)
		if !ok {
			continue
		}
		pos := s.X - origin
		if axis == geom.Vertical {
			pos = s.Y - origin
		}
		if pos < -margin || pos > extent+margin {
			continue
		}
		ticks = append(ticks, Tick{Mark: m, Pos: pos})
	}
	return ticks
}
