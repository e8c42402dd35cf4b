package guides

import (
	"math"
	"testing"

	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/pointer"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

var bounds = geom.R(0, 0, 800, 600)

func newManager(t *testing.T) (*Manager, *pointer.Surface) {
	t.Helper()
	s := pointer.NewSurface()
	s.Mount()
	return New(s, viewport.New(bounds)), s
}

func TestCreateGuideRequiresMountedSurface(t *testing.T) {
	m := New(pointer.NewSurface(), viewport.New(bounds))
	if id, ok := m.CreateGuide(geom.Vertical, 100); ok {
		t.Errorf("CreateGuide on unmounted surface returned %q", id)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}

	m = New(nil, viewport.New(bounds))
	if _, ok := m.CreateGuide(geom.Vertical, 100); ok {
		t.Error("CreateGuide without surface should be a no-op")
	}
}

func TestCreateGuideIDsAndColor(t *testing.T) {
	s := pointer.NewSurface()
	s.Mount()
	m := New(s, viewport.New(bounds), WithColor("#00ff00"))

	a, _ := m.CreateGuide(geom.Vertical, 10)
	b, _ := m.CreateGuide(geom.Horizontal, 20)
	if a == b {
		t.Fatalf("ids not unique: %q", a)
	}
	g, ok := m.Guide(b)
	if !ok {
		t.Fatal("guide not found")
	}
	if g.Color != "#00ff00" || g.Axis != geom.Horizontal || g.Position != 20 {
		t.Errorf("Guide = %+v", g)
	}
}

func TestUpdateGuideClamps(t *testing.T) {
	m, _ := newManager(t)
	v, _ := m.CreateGuide(geom.Vertical, 100)
	h, _ := m.CreateGuide(geom.Horizontal, 100)

	tests := []struct {
		name string
		id   string
		raw  float64
		want float64
	}{
		{"negative", v, -50, 0},
		{"huge vertical", v, 1e12, 800},
		{"huge horizontal", h, 1e12, 600},
		{"rounded", v, 123.6, 124},
		{"in range", h, 599, 599},
		{"max float", h, math.MaxFloat64, 600},
		{"negative max float", v, -math.MaxFloat64, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.UpdateGuide(tt.id, tt.raw)
			g, _ := m.Guide(tt.id)
			if g.Position != tt.want {
				t.Errorf("Position = %v, want %v", g.Position, tt.want)
			}
		})
	}
}

func TestUpdateGuideIgnoresBadInput(t *testing.T) {
	m, _ := newManager(t)
	id, _ := m.CreateGuide(geom.Vertical, 100)

	if m.UpdateGuide(id, math.NaN()) {
		t.Error("NaN accepted")
	}
	if m.UpdateGuide("guide-99", 10) {
		t.Error("unknown id accepted")
	}
	if g, _ := m.Guide(id); g.Position != 100 {
		t.Errorf("Position = %v, want 100", g.Position)
	}
}

func TestCreateGuideClamps(t *testing.T) {
	m, _ := newManager(t)
	id, ok := m.CreateGuide(geom.Vertical, 5000)
	if !ok {
		t.Fatal("CreateGuide failed")
	}
	if g, _ := m.Guide(id); g.Position != 800 {
		t.Errorf("Position = %v, want 800", g.Position)
	}
}

func TestBeginDragIsExclusive(t *testing.T) {
	m, s := newManager(t)
	a, _ := m.CreateGuide(geom.Vertical, 100)
	b, _ := m.CreateGuide(geom.Horizontal, 100)

	m.BeginDrag(a)
	m.BeginDrag(b)

	if n := s.ListenerCount(); n != 1 {
		t.Fatalf("ListenerCount = %d, want 1", n)
	}
	if id, ok := m.Dragging(); !ok || id != b {
		t.Errorf("Dragging = %q, %v, want %q", id, ok, b)
	}

	s.Dispatch(pointer.At(pointer.Move, 300, 250, bounds))
	ga, _ := m.Guide(a)
	gb, _ := m.Guide(b)
	if ga.Position != 100 {
		t.Errorf("first guide moved to %v", ga.Position)
	}
	if gb.Position != 250 {
		t.Errorf("second guide at %v, want 250", gb.Position)
	}

	s.Dispatch(pointer.At(pointer.Up, 300, 250, bounds))
	if n := s.ListenerCount(); n != 0 {
		t.Errorf("ListenerCount after up = %d, want 0", n)
	}
}

func TestEndDragOnEveryExit(t *testing.T) {
	for _, kind := range []pointer.Kind{pointer.Up, pointer.Cancel, pointer.Leave} {
		t.Run(kind.String(), func(t *testing.T) {
			m, s := newManager(t)
			id, _ := m.CreateGuide(geom.Vertical, 100)
			m.BeginDrag(id)
			s.Dispatch(pointer.At(kind, 10, 10, bounds))
			if s.ListenerCount() != 0 {
				t.Errorf("ListenerCount = %d, want 0", s.ListenerCount())
			}
			if _, ok := m.Dragging(); ok {
				t.Error("drag still active")
			}
		})
	}

	t.Run("close", func(t *testing.T) {
		m, s := newManager(t)
		id, _ := m.CreateGuide(geom.Vertical, 100)
		m.BeginDrag(id)
		m.Close()
		if s.ListenerCount() != 0 {
			t.Errorf("ListenerCount = %d, want 0", s.ListenerCount())
		}
	})
}

func TestDragIgnoresEventsWithoutBounds(t *testing.T) {
	m, s := newManager(t)
	id, _ := m.CreateGuide(geom.Vertical, 100)
	m.BeginDrag(id)
	s.Dispatch(pointer.Event{Kind: pointer.Move, Client: geom.Pt(400, 0)})
	s.Dispatch(pointer.At(pointer.Move, math.Inf(1), 0, bounds))

	if g, _ := m.Guide(id); g.Position != 100 {
		t.Errorf("Position = %v, want 100", g.Position)
	}
}

func TestRemoveGuideIsIdempotent(t *testing.T) {
	m, s := newManager(t)
	id, _ := m.CreateGuide(geom.Vertical, 100)
	m.BeginDrag(id)

	if !m.RemoveGuide(id) {
		t.Error("RemoveGuide returned false for existing guide")
	}
	if m.RemoveGuide(id) {
		t.Error("second RemoveGuide returned true")
	}
	if m.RemoveGuide("nope") {
		t.Error("RemoveGuide on unknown id returned true")
	}
	if s.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", s.ListenerCount())
	}
}

func TestRulerDragScenario(t *testing.T) {
	m, s := newManager(t)

	id, ok := m.BeginFromRuler(geom.Vertical, pointer.At(pointer.Down, 200, 12, bounds))
	if !ok {
		t.Fatal("BeginFromRuler failed")
	}
	if g, _ := m.Guide(id); g.Position != 200 {
		t.Errorf("initial Position = %v, want 200", g.Position)
	}

	s.Dispatch(pointer.At(pointer.Move, 350, 200, bounds))
	s.Dispatch(pointer.At(pointer.Move, 500, 300, bounds))
	s.Dispatch(pointer.At(pointer.Up, 500, 300, bounds))

	gs := m.Guides()
	if len(gs) != 1 {
		t.Fatalf("len(Guides) = %d, want 1", len(gs))
	}
	if gs[0].Axis != geom.Vertical || gs[0].Position != 500 {
		t.Errorf("guide = %+v, want vertical at 500", gs[0])
	}
	if s.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", s.ListenerCount())
	}
}

func TestDragUsesViewportTransform(t *testing.T) {
	s := pointer.NewSurface()
	s.Mount()
	v := viewport.New(geom.R(100, 50, 800, 600))
	v.Pan = geom.Pt(20, 0)
	v.Zoom = 2
	m := New(s, v)

	id, _ := m.CreateGuide(geom.Vertical, 0)
	m.BeginDrag(id)
	s.Dispatch(pointer.At(pointer.Move, 420, 0, v.Bounds))

	if g, _ := m.Guide(id); g.Position != 150 {
		t.Errorf("Position = %v, want 150", g.Position)
	}
}

func TestRestore(t *testing.T) {
	m, _ := newManager(t)
	err := m.Restore([]Guide{
		{ID: "guide-4", Axis: geom.Vertical, Position: 10.4},
		{ID: "guide-4", Axis: geom.Vertical, Position: 20},
		{ID: "guide-7", Axis: geom.Horizontal, Position: 9000, Color: "#000"},
		{ID: "guide-9", Axis: geom.Horizontal, Position: math.NaN()},
	})
	if err == nil {
		t.Error("expected error for skipped guides")
	}

	gs := m.Guides()
	if len(gs) != 2 {
		t.Fatalf("len(Guides) = %d, want 2", len(gs))
	}
	if gs[0].Position != 10 || gs[0].Color != DefaultColor {
		t.Errorf("first = %+v", gs[0])
	}
	if gs[1].Position != 600 || gs[1].Color != "#000" {
		t.Errorf("second = %+v", gs[1])
	}

	id, _ := m.CreateGuide(geom.Vertical, 1)
	if id != "guide-8" {
		t.Errorf("next id = %q, want guide-8", id)
	}
}
