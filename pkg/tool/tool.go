// Package tool implements the canvas tool state machine.
//
// Exactly one [Tool] is active at a time and it changes only through
// [Machine.Select]. [Machine.Dispatch] hands a pointer-down to the route
// registered for the active tool; the switch over tools is exhaustive, so a
// new tool cannot be added without deciding where its events go.
package tool

import (
	"fmt"

	"github.com/matzehuels/sitecanvas/pkg/pointer"
)

// Tool is an interaction tool.
type Tool int

const (
	Cursor Tool = iota
	Pan
	Zoom
	Text
	Pencil
	Note
)

var names = [...]string{"cursor", "pan", "zoom", "text", "pencil", "note"}

// All lists every tool in toolbar order.
var All = []Tool{Cursor, Pan, Zoom, Text, Pencil, Note}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(names) {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return names[t]
}

// Valid reports whether t is one of the defined tools.
func (t Tool) Valid() bool { return t >= Cursor && t <= Note }

// Parse parses a tool name.
func Parse(s string) (Tool, error) {
	for i, n := range names {
		if n == s {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

func (t Tool) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tool %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tool) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Handler receives the pointer-down that starts a gesture.
type Handler interface {
	PointerDown(ev pointer.Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev pointer.Event)

func (f HandlerFunc) PointerDown(ev pointer.Event) { f(ev) }

// Routes maps each tool to its handler. A nil route ignores the event.
type Routes struct {
	Cursor Handler
	Pan    Handler
	Zoom   Handler
	Text   Handler
	Pencil Handler
	Note   Handler
}

// Machine tracks the active tool.
type Machine struct {
	active   Tool
	routes   Routes
	onChange []func(from, to Tool)
}

// New returns a machine with the cursor tool active.
func New(routes Routes) *Machine {
	return &Machine{active: Cursor, routes: routes}
}

// Active returns the active tool.
func (m *Machine) Active() Tool { return m.active }

// Select activates t. Selecting an unknown tool is rejected; selecting the
// active tool is accepted and does not notify observers.
func (m *Machine) Select(t Tool) bool {
	if !t.Valid() {
		return false
	}
	if t == m.active {
		return true
	}
	from := m.active
	m.active = t
	for _, fn := range m.onChange {
		fn(from, t)
	}
	return true
}

// OnChange registers an observer of tool changes.
func (m *Machine) OnChange(fn func(from, to Tool)) {
	if fn != nil {
		m.onChange = append(m.onChange, fn)
	}
}

// Route returns the handler for t.
func (m *Machine) Route(t Tool) Handler {
	switch t {
	case Cursor:
		return m.routes.Cursor
	case Pan:
		return m.routes.Pan
	case Zoom:
		return m.routes.Zoom
	case Text:
		return m.routes.Text
	case Pencil:
		return m.routes.Pencil
	case Note:
		return m.routes.Note
	}
	return nil
}

// Dispatch forwards a pointer-down to the active tool's handler. Other event
// kinds belong to the gesture session the handler opened and are ignored.
// It reports whether a handler received the event.
func (m *Machine) Dispatch(ev pointer.Event) bool {
	if ev.Kind != pointer.Down {
		return false
	}
	h := m.Route(m.active)
	if h == nil {
		return false
	}
	h.PointerDown(ev)
	return true
}
