package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/ruler"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

func TestTicksTable(t *testing.T) {
	v := viewport.New(geom.R(0, 0, 200, 100))
	ticks := ruler.Ticks(geom.Horizontal, v, ruler.DefaultSteps)
	if len(ticks) == 0 {
		t.Fatal("no ticks")
	}

	out := ticksTable(ticks)
	for _, want := range []string{"Value", "Kind", "major", "minor", "100"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestMajorTicks(t *testing.T) {
	v := viewport.New(geom.R(0, 0, 250, 100))
	all := ruler.Ticks(geom.Horizontal, v, ruler.DefaultSteps)
	majors := majorTicks(all)

	if len(majors) == 0 || len(majors) >= len(all) {
		t.Fatalf("majorTicks kept %d of %d", len(majors), len(all))
	}
	for _, tk := range majors {
		if tk.Kind != ruler.Major || tk.Label == "" {
			t.Errorf("tick %+v is not a labelled major", tk)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100"},
		{-25, "-25"},
		{12.5, "12.5"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
