// Package align computes element positions for the six alignment operations.
//
// Every selected element is aligned on its own against the scope box (the
// selection's bounding box, or a container supplied by the caller). Elements
// are never aligned relative to each other, and only the coordinate on the
// operation's axis changes.
package align

import (
	"fmt"

	"github.com/matzehuels/sitecanvas/pkg/geom"
)

// Op is an alignment operation.
type Op int

const (
	Left Op = iota
	Center
	Right
	Top
	Middle
	Bottom
)

var opNames = [...]string{"left", "center", "right", "top", "middle", "bottom"}

// Ops lists every operation in toolbar order.
var Ops = []Op{Left, Center, Right, Top, Middle, Bottom}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return opNames[o]
}

// ParseOp parses an operation name.
func ParseOp(s string) (Op, error) {
	for i, n := range opNames {
		if n == s {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("unknown alignment %q", s)
}

// Element is a positioned box owned by the host document.
type Element struct {
	ID  string    `json:"id"`
	Box geom.Rect `json:"box"`
}

// SelectionBounds returns the bounding box of elems.
func SelectionBounds(elems []Element) (geom.Rect, bool) {
	if len(elems) == 0 {
		return geom.Rect{}, false
	}
	b := elems[0].Box
	for _, e := range elems[1:] {
		b = b.Union(e.Box)
	}
	return b, b.Finite()
}

// Position returns box moved by op against scope.
func Position(op Op, box, scope geom.Rect) geom.Rect {
	switch op {
	case Left:
		box.X = scope.Left()
	case Center:
		box.X = scope.CenterX() - box.Width/2
	case Right:
		box.X = scope.Right() - box.Width
	case Top:
		box.Y = scope.Top()
	case Middle:
		box.Y = scope.CenterY() - box.Height/2
	case Bottom:
		box.Y = scope.Bottom() - box.Height
	}
	return box
}

// Apply returns the proposed positions of elems. A nil scope aligns against
// the selection bounds. ok is false, and nothing is proposed, when the
// selection is empty, the op is unknown or the scope is not finite; callers
// surface that as the disabled state.
func Apply(op Op, elems []Element, scope *geom.Rect) ([]Element, bool) {
	if !Enabled(elems) || op < Left || op > Bottom {
		return nil, false
	}
	var s geom.Rect
	if scope != nil {
		s = *scope
	} else {
		var ok bool
		if s, ok = SelectionBounds(elems); !ok {
			return nil, false
		}
	}
	if !s.Finite() {
		return nil, false
	}

	out := make([]Element, len(elems))
	for i, e := range elems {
		out[i] = Element{ID: e.ID, Box: Position(op, e.Box, s)}
	}
	return out, true
}

// Enabled reports whether alignment is available for the selection.
func Enabled(elems []Element) bool { return len(elems) > 0 }
