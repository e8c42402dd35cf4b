// Package annotate implements the annotation overlay drawn on top of the
// preview: circular notes sized by dragging and freehand pencil strokes.
//
// Both gestures run as a [pointer.Session]. An overlay runs at most one
// gesture at a time; beginning a new one ends the previous one first. All
// geometry is stored in canvas space and non-finite input never reaches it.
package annotate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/observability"
	"github.com/matzehuels/sitecanvas/pkg/pointer"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

// Defaults for the commit threshold and stroke point spacing, in canvas units.
const (
	DefaultMinCommitRadius = 6.0
	DefaultEpsilon         = 2.0
)

// Annotation is a committed circle with an optional note.
type Annotation struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Note   string  `json:"note,omitempty"`
}

// Center returns the circle's centre.
func (a Annotation) Center() geom.Point { return geom.Pt(a.X, a.Y) }

// Bounds returns the circle's bounding box.
func (a Annotation) Bounds() geom.Rect {
	return geom.R(a.X-a.Radius, a.Y-a.Radius, 2*a.Radius, 2*a.Radius)
}

// DraftCircle is the uncommitted shape of a note being sized.
type DraftCircle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Stroke is a finalized pencil stroke.
type Stroke struct {
	ID     string       `json:"id"`
	Points []geom.Point `json:"points"`
}

// CommitHook receives the geometry of a circle about to be committed and
// returns the note text to attach to it.
type CommitHook func(Annotation) string

// Overlay owns the annotations and strokes of one canvas session.
type Overlay struct {
	surface   *pointer.Surface
	view      *viewport.Viewport
	minRadius float64
	epsilon   float64
	onCommit  CommitHook
	logger    *log.Logger

	annotations []Annotation
	strokes     []Stroke
	nextNote    int
	nextStroke  int

	sess    *pointer.Session
	started time.Time
	draft   *DraftCircle
	drawing bool
	live    []geom.Point
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithMinCommitRadius sets the smallest radius that is committed.
func WithMinCommitRadius(r float64) Option {
	return func(o *Overlay) {
		if geom.Finite(r) && r >= 0 {
			o.minRadius = r
		}
	}
}

// WithEpsilon sets the minimum distance between consecutive stroke points.
func WithEpsilon(eps float64) Option {
	return func(o *Overlay) {
		if geom.Finite(eps) && eps >= 0 {
			o.epsilon = eps
		}
	}
}

// WithCommitHook sets the hook consulted for note text on commit.
func WithCommitHook(h CommitHook) Option {
	return func(o *Overlay) { o.onCommit = h }
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Overlay) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an overlay bound to an interaction surface and viewport.
func New(surface *pointer.Surface, view *viewport.Viewport, opts ...Option) *Overlay {
	o := &Overlay{
		surface:   surface,
		view:      view,
		minRadius: DefaultMinCommitRadius,
		epsilon:   DefaultEpsilon,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetCommitHook replaces the commit hook.
func (o *Overlay) SetCommitHook(h CommitHook) { o.onCommit = h }

func (o *Overlay) point(ev pointer.Event) (geom.Point, bool) {
	return o.view.CanvasPoint(ev.Client, ev.Bounds)
}

// BeginCircle opens a draft circle at the pointer position. It does nothing
// when the surface is unmounted or the event carries no usable point.
func (o *Overlay) BeginCircle(ev pointer.Event) bool {
	o.End()
	origin, ok := o.point(ev)
	if !ok || !o.surface.Mounted() {
		return false
	}
	o.draft = &DraftCircle{X: origin.X, Y: origin.Y}
	o.sess = pointer.Begin(o.surface, pointer.Handlers{
		Move: o.resize,
		End: func(ev pointer.Event) {
			o.resize(ev)
			o.commitDraft()
		},
	})
	o.started = time.Now()
	observability.Gesture().OnGestureStart("note")
	return true
}

func (o *Overlay) resize(ev pointer.Event) {
	if o.draft == nil {
		return
	}
	p, ok := o.point(ev)
	if !ok {
		return
	}
	r := geom.Distance(geom.Pt(o.draft.X, o.draft.Y), p)
	if geom.Finite(r) {
		o.draft.Radius = r
	}
}

func (o *Overlay) commitDraft() {
	d := o.draft
	o.draft, o.sess = nil, nil
	if d == nil {
		return
	}
	committed := d.Radius >= o.minRadius
	defer func() {
		observability.Gesture().OnGestureEnd("note", committed, time.Since(o.started))
	}()
	if !committed {
		o.logger.Debug("note discarded", "radius", d.Radius, "min", o.minRadius)
		return
	}
	o.nextNote++
	a := Annotation{ID: "note-" + strconv.Itoa(o.nextNote), X: d.X, Y: d.Y, Radius: d.Radius}
	if o.onCommit != nil {
		a.Note = o.onCommit(a)
	}
	o.annotations = append(o.annotations, a)
	o.logger.Debug("note committed", "id", a.ID, "x", a.X, "y", a.Y, "radius", a.Radius)
}

// BeginStroke opens an empty pencil stroke. It does nothing when the
// surface is unmounted.
func (o *Overlay) BeginStroke(ev pointer.Event) bool {
	o.End()
	if !o.surface.Mounted() {
		return false
	}
	if _, ok := o.point(ev); !ok {
		return false
	}
	o.drawing = true
	o.live = o.live[:0]
	o.sess = pointer.Begin(o.surface, pointer.Handlers{
		Move: o.extend,
		End: func(ev pointer.Event) {
			o.extend(ev)
			o.finishStroke()
		},
	})
	o.started = time.Now()
	observability.Gesture().OnGestureStart("pencil")
	return true
}

func (o *Overlay) extend(ev pointer.Event) {
	if !o.drawing {
		return
	}
	p, ok := o.point(ev)
	if !ok {
		return
	}
	if n := len(o.live); n > 0 && geom.Distance(o.live[n-1], p) <= o.epsilon {
		return
	}
	o.live = append(o.live, p)
}

func (o *Overlay) finishStroke() {
	pts := o.live
	o.drawing, o.live, o.sess = false, nil, nil
	committed := len(pts) > 0
	observability.Gesture().OnGestureEnd("pencil", committed, time.Since(o.started))
	if !committed {
		return
	}
	o.nextStroke++
	s := Stroke{ID: "stroke-" + strconv.Itoa(o.nextStroke), Points: pts}
	o.strokes = append(o.strokes, s)
	o.logger.Debug("stroke finalized", "id", s.ID, "points", len(pts))
}

// End ends the active gesture as a cancel. A draft at or above the commit
// radius is still committed and a non-empty stroke is still kept.
func (o *Overlay) End() {
	if o.sess != nil {
		o.sess.Stop()
	}
}

// Active reports whether a gesture is in progress.
func (o *Overlay) Active() bool { return o.sess.Active() }

// Draft returns the in-progress circle.
func (o *Overlay) Draft() (DraftCircle, bool) {
	if o.draft == nil {
		return DraftCircle{}, false
	}
	return *o.draft, true
}

// Drawing reports whether a pencil stroke is in progress.
func (o *Overlay) Drawing() bool { return o.drawing }

// LiveStroke returns a copy of the in-progress stroke.
func (o *Overlay) LiveStroke() []geom.Point {
	return append([]geom.Point(nil), o.live...)
}

// Annotations returns the committed annotations in creation order.
func (o *Overlay) Annotations() []Annotation {
	return append([]Annotation(nil), o.annotations...)
}

// Strokes returns the finalized strokes in creation order.
func (o *Overlay) Strokes() []Stroke {
	out := make([]Stroke, len(o.strokes))
	for i, s := range o.strokes {
		out[i] = Stroke{ID: s.ID, Points: append([]geom.Point(nil), s.Points...)}
	}
	return out
}

// SetNote replaces the note of an annotation.
func (o *Overlay) SetNote(id, note string) bool {
	for i := range o.annotations {
		if o.annotations[i].ID == id {
			o.annotations[i].Note = note
			return true
		}
	}
	return false
}

// RemoveAnnotation deletes an annotation. Unknown ids are ignored.
func (o *Overlay) RemoveAnnotation(id string) bool {
	for i, a := range o.annotations {
		if a.ID == id {
			o.annotations = append(o.annotations[:i], o.annotations[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveStroke deletes a stroke. Unknown ids are ignored.
func (o *Overlay) RemoveStroke(id string) bool {
	for i, s := range o.strokes {
		if s.ID == id {
			o.strokes = append(o.strokes[:i], o.strokes[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every annotation and stroke, discarding any gesture in progress.
func (o *Overlay) Clear() {
	o.discard()
	o.annotations = nil
	o.strokes = nil
}

func (o *Overlay) discard() {
	o.draft = nil
	o.drawing = false
	o.live = nil
	o.End()
}

// Restore replaces the overlay contents. Annotations and strokes with
// non-finite geometry, negative radii or empty ids are skipped; non-finite
// points are dropped from strokes.
func (o *Overlay) Restore(anns []Annotation, strokes []Stroke) error {
	o.discard()
	o.annotations, o.strokes = nil, nil
	o.nextNote, o.nextStroke = 0, 0

	var skipped int
	for _, a := range anns {
		if a.ID == "" || !geom.Finite(a.X) || !geom.Finite(a.Y) || !geom.Finite(a.Radius) || a.Radius < 0 {
			skipped++
			continue
		}
		o.annotations = append(o.annotations, a)
		o.nextNote = max(o.nextNote, suffix(a.ID, "note-"))
	}
	for _, s := range strokes {
		pts := make([]geom.Point, 0, len(s.Points))
		for _, p := range s.Points {
			if p.Finite() {
				pts = append(pts, p)
			}
		}
		if s.ID == "" || len(pts) == 0 {
			skipped++
			continue
		}
		o.strokes = append(o.strokes, Stroke{ID: s.ID, Points: pts})
		o.nextStroke = max(o.nextStroke, suffix(s.ID, "stroke-"))
	}
	if skipped > 0 {
		return fmt.Errorf("skipped %d invalid overlay items", skipped)
	}
	return nil
}

func suffix(id, prefix string) int {
	if len(id) <= len(prefix) || id[:len(prefix)] != prefix {
		return 0
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil {
		return 0
	}
	return n
}

// Close ends any gesture in progress.
func (o *Overlay) Close() { o.End() }
