package viewmode

import (
	"fmt"
	"strings"
)

// Mode is a top-level editor step.
type Mode int

const (
	Start Mode = iota
	Nodes
	Preview
	Selected
	Iterate
	Code
	Builder
	BuildApp
)

var modeNames = [...]string{"start", "nodes", "preview", "selected", "iterate", "code", "builder", "build-app"}

// Modes lists every mode in step order.
var Modes = []Mode{Start, Nodes, Preview, Selected, Iterate, Code, Builder, BuildApp}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool { return m >= Start && m <= BuildApp }

// Fragment returns the URL fragment for m, e.g. "#iterate".
func (m Mode) Fragment() string { return "#" + m.String() }

// Preview reports whether m shows a generated preview: preview, selected
// or iterate.
func (m Mode) Preview() bool {
	switch m {
	case Preview, Selected, Iterate:
		return true
	case Start, Nodes, Code, Builder, BuildApp:
		return false
	}
	return false
}

// Iteration reports whether m mounts the iteration canvas.
func (m Mode) Iteration() bool { return m == Iterate }

// FragmentEligible reports whether entering m rewrites the URL fragment.
func (m Mode) FragmentEligible() bool {
	switch m {
	case Start, Nodes, Preview, Selected, Iterate, Code, Builder, BuildApp:
		return true
	}
	return false
}

// Parse parses a mode identifier.
func Parse(s string) (Mode, error) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown view mode %q", s)
}

// ParseFragment parses a URL fragment. The leading "#" is optional and the
// match is case-sensitive. Unrecognised fragments report false.
func ParseFragment(f string) (Mode, bool) {
	m, err := Parse(strings.TrimPrefix(f, "#"))
	return m, err == nil
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid view mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Next returns the steps the editor offers from m.
func Next(m Mode) []Mode {
	switch m {
	case Start:
		return []Mode{Nodes, Preview}
	case Nodes:
		return []Mode{Preview}
	case Preview:
		return []Mode{Selected}
	case Selected:
		return []Mode{Iterate, Preview}
	case Iterate:
		return []Mode{Code, Builder, Selected}
	case Code:
		return []Mode{Iterate}
	case Builder:
		return []Mode{BuildApp, Iterate}
	case BuildApp:
		return []Mode{Builder}
	}
	return nil
}
