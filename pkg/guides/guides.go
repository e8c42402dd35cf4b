// Package guides manages the alignment guide lines of the iteration canvas.
//
// A guide is a horizontal or vertical line at a canvas-space position. A
// vertical guide's position is an x coordinate, a horizontal guide's a y
// coordinate. Positions are always finite, rounded to whole units and
// clamped to [0, extent], where extent is the viewport width for vertical
// guides and its height for horizontal guides.
//
// Dragging a guide is a [pointer.Session] on the whole interaction surface,
// so the drag keeps tracking after the pointer leaves the guide's hit area.
// A manager runs at most one drag at a time.
package guides

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/observability"
	"github.com/matzehuels/sitecanvas/pkg/pointer"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

// DefaultColor is the stroke colour of new guides.
const DefaultColor = "#ff3d7f"

const idPrefix = "guide-"

// Guide is a single alignment line.
type Guide struct {
	ID       string    `json:"id"`
	Axis     geom.Axis `json:"axis"`
	Position float64   `json:"position"`
	Color    string    `json:"color"`
}

// Manager owns the guide set of one canvas session.
type Manager struct {
	surface *pointer.Surface
	view    *viewport.Viewport
	color   string
	logger  *log.Logger

	guides map[string]*Guide
	order  []string
	nextID int

	drag      *pointer.Session
	dragID    string
	dragStart time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithColor sets the colour assigned to new guides.
func WithColor(c string) Option {
	return func(m *Manager) {
		if c != "" {
			m.color = c
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a manager bound to an interaction surface and the viewport
// whose extent bounds guide positions.
func New(surface *pointer.Surface, view *viewport.Viewport, opts ...Option) *Manager {
	m := &Manager{
		surface: surface,
		view:    view,
		color:   DefaultColor,
		logger:  log.Default(),
		guides:  make(map[string]*Guide),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// extent returns the clamp limit for guides on axis.
func (m *Manager) extent(axis geom.Axis) float64 {
	if axis == geom.Vertical {
		return math.Max(0, m.view.Bounds.Width)
	}
	return math.Max(0, m.view.Bounds.Height)
}

func (m *Manager) normalize(axis geom.Axis, raw float64) (float64, bool) {
	if !geom.Finite(raw) {
		return 0, false
	}
	return math.Round(geom.Clamp(raw, 0, m.extent(axis))), true
}

// CreateGuide adds a guide and returns its id. Nothing is created, and no id
// is allocated, when the surface is unmounted or the position is not finite.
func (m *Manager) CreateGuide(axis geom.Axis, position float64) (string, bool) {
	if !m.surface.Mounted() {
		return "", false
	}
	if axis != geom.Horizontal && axis != geom.Vertical {
		return "", false
	}
	pos, ok := m.normalize(axis, position)
	if !ok {
		return "", false
	}
	m.nextID++
	id := idPrefix + strconv.Itoa(m.nextID)
	m.guides[id] = &Guide{ID: id, Axis: axis, Position: pos, Color: m.color}
	m.order = append(m.order, id)
	m.logger.Debug("guide created", "id", id, "axis", axis, "position", pos)
	return id, true
}

// UpdateGuide moves a guide. Unknown ids and non-finite positions are ignored.
func (m *Manager) UpdateGuide(id string, raw float64) bool {
	g, ok := m.guides[id]
	if !ok {
		return false
	}
	pos, ok := m.normalize(g.Axis, raw)
	if !ok {
		return false
	}
	g.Position = pos
	return true
}

// RemoveGuide deletes a guide. Removing an unknown id does nothing. A drag
// on the removed guide is ended.
func (m *Manager) RemoveGuide(id string) bool {
	if _, ok := m.guides[id]; !ok {
		return false
	}
	if m.dragID == id {
		m.EndDrag()
	}
	delete(m.guides, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.logger.Debug("guide removed", "id", id)
	return true
}

// BeginDrag starts dragging a guide. Any drag already in progress is ended
// first, so exactly one drag listener is installed afterwards.
func (m *Manager) BeginDrag(id string) bool {
	m.EndDrag()
	g, ok := m.guides[id]
	if !ok {
		return false
	}

	var sess *pointer.Session
	sess = pointer.Begin(m.surface, pointer.Handlers{
		Move: func(ev pointer.Event) { m.track(g, ev) },
		End: func(ev pointer.Event) {
			if ev.Kind == pointer.Up {
				m.track(g, ev)
			}
			if m.drag == sess {
				m.finishDrag()
			}
		},
	})
	if sess == nil {
		return false
	}
	m.drag, m.dragID, m.dragStart = sess, id, time.Now()
	observability.Gesture().OnGestureStart("guide")
	return true
}

func (m *Manager) track(g *Guide, ev pointer.Event) {
	p, ok := m.view.CanvasPoint(ev.Client, ev.Bounds)
	if !ok {
		return
	}
	raw := p.Y
	if g.Axis == geom.Vertical {
		raw = p.X
	}
	m.UpdateGuide(g.ID, raw)
}

// EndDrag releases the active drag, if any.
func (m *Manager) EndDrag() {
	if m.drag == nil {
		return
	}
	sess := m.drag
	sess.Stop()
	if m.drag == sess {
		m.finishDrag()
	}
}

func (m *Manager) finishDrag() {
	id, start := m.dragID, m.dragStart
	m.drag, m.dragID = nil, ""
	observability.Gesture().OnGestureEnd("guide", true, time.Since(start))
	if g, ok := m.guides[id]; ok {
		m.logger.Debug("guide drag ended", "id", id, "position", g.Position)
	}
}

// Dragging returns the id of the guide being dragged.
func (m *Manager) Dragging() (string, bool) {
	return m.dragID, m.drag.Active()
}

// BeginFromRuler creates a guide at the pointer's canvas position along the
// ruler and immediately starts dragging it.
func (m *Manager) BeginFromRuler(axis geom.Axis, ev pointer.Event) (string, bool) {
	p, ok := m.view.CanvasPoint(ev.Client, ev.Bounds)
	if !ok {
		return "", false
	}
	raw := p.Y
	if axis == geom.Vertical {
		raw = p.X
	}
	id, ok := m.CreateGuide(axis, raw)
	if !ok {
		return "", false
	}
	m.BeginDrag(id)
	return id, true
}

// Guide returns a copy of the guide with the given id.
func (m *Manager) Guide(id string) (Guide, bool) {
	g, ok := m.guides[id]
	if !ok {
		return Guide{}, false
	}
	return *g, true
}

// Guides returns all guides in creation order.
func (m *Manager) Guides() []Guide {
	out := make([]Guide, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.guides[id])
	}
	return out
}

// Len returns the number of guides.
func (m *Manager) Len() int { return len(m.order) }

// Restore replaces the guide set. Guides with non-finite positions or
// duplicate ids are skipped; positions are normalised against the current
// viewport. Any active drag is ended.
func (m *Manager) Restore(gs []Guide) error {
	m.EndDrag()
	m.guides = make(map[string]*Guide, len(gs))
	m.order = m.order[:0]
	m.nextID = 0

	var skipped int
	for _, g := range gs {
		pos, ok := m.normalize(g.Axis, g.Position)
		if !ok || g.ID == "" || (g.Axis != geom.Horizontal && g.Axis != geom.Vertical) {
			skipped++
			continue
		}
		if _, dup := m.guides[g.ID]; dup {
			skipped++
			continue
		}
		if g.Color == "" {
			g.Color = m.color
		}
		g.Position = pos
		m.guides[g.ID] = &g
		m.order = append(m.order, g.ID)
		if n, ok := parseID(g.ID); ok && n > m.nextID {
			m.nextID = n
		}
	}
	if skipped > 0 {
		return fmt.Errorf("skipped %d invalid guides", skipped)
	}
	return nil
}

func parseID(id string) (int, bool) {
	s, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// Close ends any drag. The manager stays usable.
func (m *Manager) Close() { m.EndDrag() }
