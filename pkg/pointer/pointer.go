// Package pointer defines the pointer input contract consumed by the canvas
// engine and the scoped listener sessions built on top of it.
//
// # Surface
//
// A [Surface] is the interaction surface of the iteration canvas. It tracks
// whether the surface is mounted and owns a registry of surface-wide
// listeners. Hosts feed every pointer event into [Surface.Dispatch]; any
// installed listener sees it, regardless of which element the pointer is
// over. Unmounting releases every listener.
//
// # Sessions
//
// A drag or draw gesture is a [Session]: [Begin] installs one listener on the
// surface, and the session ends on the first Up, Cancel or Leave event. Owners
// call [Session.Stop] on teardown. Every exit path releases the listener
// exactly once, so a session can never leak or double-fire.
package pointer

import (
	"fmt"

	"github.com/matzehuels/sitecanvas/pkg/geom"
)

// Kind identifies a pointer event.
type Kind int

const (
	Down Kind = iota
	Move
	Up
	Cancel
	Leave
)

var kindNames = [...]string{"down", "move", "up", "cancel", "leave"}

// String returns the lower-case event name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Terminal reports whether k ends a gesture. Cancel and Leave end a gesture
// exactly like Up does.
func (k Kind) Terminal() bool {
	switch k {
	case Up, Cancel, Leave:
		return true
	case Down, Move:
		return false
	}
	return false
}

// ParseKind parses an event name produced by [Kind.String].
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pointer event %q", s)
}

// Event is a single pointer event in client (screen) space.
//
// Bounds is the viewport's bounding rectangle at the time of the event. A nil
// Bounds means the surface could not be measured; consumers treat such events
// as carrying no point.
type Event struct {
	Kind   Kind       `json:"kind"`
	Client geom.Point `json:"client"`
	Bounds *geom.Rect `json:"bounds,omitempty"`

	// Alt is set while the alternate modifier is held (zoom tool zooms out).
	Alt bool `json:"alt,omitempty"`
}

// At builds an event of the given kind at (x, y) within bounds.
func At(kind Kind, x, y float64, bounds geom.Rect) Event {
	b := bounds
	return Event{Kind: kind, Client: geom.Pt(x, y), Bounds: &b}
}

// Listener receives dispatched events.
type Listener func(Event)

// Surface is the interaction surface of an iteration session.
// It is not safe for concurrent use; the engine runs on a single event loop.
type Surface struct {
	mounted   bool
	nextID    uint64
	order     []uint64
	listeners map[uint64]Listener
}

// NewSurface returns an unmounted surface.
func NewSurface() *Surface {
	return &Surface{listeners: make(map[uint64]Listener)}
}

// Mount marks the surface as available for interaction.
func (s *Surface) Mount() { s.mounted = true }

// Unmount marks the surface unavailable and releases every listener.
func (s *Surface) Unmount() {
	s.mounted = false
	s.order = nil
	clear(s.listeners)
}

// Mounted reports whether the surface is mounted. A nil surface is never mounted.
func (s *Surface) Mounted() bool { return s != nil && s.mounted }

// ListenerCount returns the number of installed listeners.
func (s *Surface) ListenerCount() int { return len(s.listeners) }

// Listen installs l and returns a release function. Release is idempotent.
// Listening on an unmounted surface installs nothing and returns a no-op.
func (s *Surface) Listen(l Listener) (release func()) {
	if !s.Mounted() || l == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.listeners[id] = l
	s.order = append(s.order, id)
	return func() { s.remove(id) }
}

func (s *Surface) remove(id uint64) {
	if _, ok := s.listeners[id]; !ok {
		return
	}
	delete(s.listeners, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Dispatch delivers ev to every listener in installation order. Listeners
// released or installed during dispatch are honoured: a released listener is
// skipped, a new one first sees the next event.
func (s *Surface) Dispatch(ev Event) {
	if !s.Mounted() {
		return
	}
	ids := append([]uint64(nil), s.order...)
	for _, id := range ids {
		if l, ok := s.listeners[id]; ok {
			l(ev)
		}
	}
}
