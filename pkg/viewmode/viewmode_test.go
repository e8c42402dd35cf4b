package viewmode

import (
	"context"
	"strings"
	"testing"
)

func TestInitialState(t *testing.T) {
	c := NewController()
	if c.Mode() != Start {
		t.Errorf("Mode = %v, want start", c.Mode())
	}
	if c.IsPreviewMode() || c.IsIterationMode() {
		t.Error("start should not be a preview or iteration mode")
	}
}

func TestFragmentRoundTrip(t *testing.T) {
	loc := NewMemoryLocation("")
	c := NewController()
	c.Mount(loc)
	base := loc.Writes()

	c.Request(Iterate)
	if loc.Fragment() != "#iterate" {
		t.Fatalf("Fragment = %q, want #iterate", loc.Fragment())
	}
	if got := loc.Writes() - base; got != 1 {
		t.Errorf("writes for request = %d, want 1", got)
	}

	before := loc.Writes()
	loc.Navigate("#code")
	if c.Mode() != Code {
		t.Errorf("Mode = %v, want code", c.Mode())
	}
	if loc.Writes() != before {
		t.Errorf("external change caused %d fragment writes", loc.Writes()-before)
	}
	if loc.Fragment() != "#code" {
		t.Errorf("Fragment = %q, want #code", loc.Fragment())
	}
}

func TestMountAdoptsFragmentOnce(t *testing.T) {
	loc := NewMemoryLocation("#selected")
	c := NewController()
	var changes []Change
	c.OnChange(func(ch Change) { changes = append(changes, ch) })

	c.Mount(loc)
	if c.Mode() != Selected {
		t.Fatalf("Mode = %v, want selected", c.Mode())
	}
	if loc.Writes() != 0 {
		t.Errorf("adoption wrote the fragment %d times", loc.Writes())
	}
	if len(changes) != 1 || changes[0].Origin != FromFragment {
		t.Errorf("changes = %+v", changes)
	}

	other := NewMemoryLocation("#code")
	c.Mount(other)
	if c.Mode() != Selected {
		t.Errorf("second mount adopted fragment: Mode = %v", c.Mode())
	}
	if other.Fragment() != "#selected" {
		t.Errorf("second mount Fragment = %q, want #selected", other.Fragment())
	}
}

func TestMountPublishesWithoutRecognisedFragment(t *testing.T) {
	loc := NewMemoryLocation("#settings")
	c := NewController()
	c.Mount(loc)
	if c.Mode() != Start {
		t.Errorf("Mode = %v, want start", c.Mode())
	}
	if loc.Fragment() != "#start" {
		t.Errorf("Fragment = %q, want #start", loc.Fragment())
	}
}

func TestUnknownFragmentIgnored(t *testing.T) {
	loc := NewMemoryLocation("")
	c := NewController()
	c.Mount(loc)
	c.Request(Preview)

	for _, f := range []string{"#Iterate", "#", "", "#build_app", "iterate-now"} {
		loc.Navigate(f)
		if c.Mode() != Preview {
			t.Errorf("fragment %q changed mode to %v", f, c.Mode())
		}
	}
}

func TestFragmentWithoutHash(t *testing.T) {
	m, ok := ParseFragment("build-app")
	if !ok || m != BuildApp {
		t.Errorf("ParseFragment(build-app) = %v, %v", m, ok)
	}
}

func TestUnmountStopsWatching(t *testing.T) {
	loc := NewMemoryLocation("")
	c := NewController()
	c.Mount(loc)
	c.Unmount()

	loc.Navigate("#code")
	if c.Mode() != Start {
		t.Errorf("Mode = %v after unmount, want start", c.Mode())
	}
	c.Request(Nodes)
	if loc.Fragment() != "#code" {
		t.Errorf("unmounted controller wrote fragment %q", loc.Fragment())
	}
}

func TestObserversSeeOrigin(t *testing.T) {
	loc := NewMemoryLocation("")
	c := NewController()
	c.Mount(loc)

	var got []Change
	c.OnChange(func(ch Change) { got = append(got, ch) })
	c.Request(Iterate)
	c.Request(Iterate)
	loc.Navigate("#code")

	want := []Change{
		{From: Start, To: Iterate, Origin: FromUI},
		{From: Iterate, To: Code, Origin: FromFragment},
	}
	if len(got) != len(want) {
		t.Fatalf("changes = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("changes[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDerivedFlags(t *testing.T) {
	tests := []struct {
		mode      Mode
		preview   bool
		iteration bool
	}{
		{Start, false, false},
		{Nodes, false, false},
		{Preview, true, false},
		{Selected, true, false},
		{Iterate, true, true},
		{Code, false, false},
		{Builder, false, false},
		{BuildApp, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			c := NewController()
			c.Request(tt.mode)
			if c.IsPreviewMode() != tt.preview {
				t.Errorf("IsPreviewMode = %v, want %v", c.IsPreviewMode(), tt.preview)
			}
			if c.IsIterationMode() != tt.iteration {
				t.Errorf("IsIterationMode = %v, want %v", c.IsIterationMode(), tt.iteration)
			}
		})
	}
}

func TestRequestRejectsUnknownMode(t *testing.T) {
	c := NewController()
	if c.Request(Mode(42)) {
		t.Error("Request accepted unknown mode")
	}
}

func TestParse(t *testing.T) {
	for _, m := range Modes {
		got, err := Parse(m.String())
		if err != nil || got != m {
			t.Errorf("Parse(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := Parse("upload"); err == nil {
		t.Error("Parse(upload) should fail")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(Iterate)
	if !strings.Contains(dot, "digraph steps") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `"selected" -> "iterate"`) {
		t.Error("ToDOT() output missing selected -> iterate edge")
	}
	if !strings.Contains(dot, `"iterate" [label="#iterate", peripheries=2, fillcolor="#ff3d7f"`) {
		t.Errorf("ToDOT() active node not highlighted:\n%s", dot)
	}
	for _, m := range Modes {
		if !strings.Contains(dot, "\""+m.String()+"\" [") {
			t.Errorf("ToDOT() missing node %s", m)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	ctx := context.Background()
	svg, err := RenderSVG(ctx, ToDOT(Iterate))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, "<svg") {
		t.Error("RenderSVG() output is not an SVG document")
	}
	for _, m := range Modes {
		if !strings.Contains(out, m.Fragment()) {
			t.Errorf("RenderSVG() missing label %s", m.Fragment())
		}
	}

	if _, err := RenderSVG(ctx, "digraph {"); err == nil {
		t.Error("RenderSVG() accepted malformed DOT")
	}
}
