package canvas

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matzehuels/sitecanvas/pkg/annotate"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/guides"
	"github.com/matzehuels/sitecanvas/pkg/tool"
)

// View is the persisted part of the viewport.
type View struct {
	Bounds geom.Rect  `json:"bounds"`
	Pan    geom.Point `json:"pan"`
	Zoom   float64    `json:"zoom"`
}

// State is a serializable snapshot of a session. The host persists it as an
// opaque blob.
type State struct {
	View        View                  `json:"view"`
	Tool        tool.Tool             `json:"tool"`
	Guides      []guides.Guide        `json:"guides"`
	Annotations []annotate.Annotation `json:"annotations"`
	Strokes     []annotate.Stroke     `json:"strokes"`
}

// Snapshot returns the committed state. Gestures in progress are not included.
func (s *Session) Snapshot() State {
	return State{
		View:        View{Bounds: s.view.Bounds, Pan: s.view.Pan, Zoom: s.view.Zoom},
		Tool:        s.tools.Active(),
		Guides:      s.guides.Guides(),
		Annotations: s.overlay.Annotations(),
		Strokes:     s.overlay.Strokes(),
	}
}

// Restore replaces the session state. Gestures in progress are ended first.
// Invalid parts are skipped and reported in the returned error; everything
// valid is still applied.
func (s *Session) Restore(st State) error {
	if s.closed {
		return errors.New("canvas session is closed")
	}
	s.overlay.End()
	s.guides.EndDrag()
	s.endPan()

	var problems []error
	if st.View.Bounds != (geom.Rect{}) && !s.view.SetBounds(st.View.Bounds) {
		problems = append(problems, fmt.Errorf("invalid viewport bounds"))
	}
	if st.View.Zoom != 0 && !s.view.SetZoom(st.View.Zoom) {
		problems = append(problems, fmt.Errorf("invalid zoom %v", st.View.Zoom))
	}
	if st.View.Pan.Finite() {
		s.view.Pan = st.View.Pan
	} else {
		problems = append(problems, fmt.Errorf("invalid pan offset"))
	}
	if !s.tools.Select(st.Tool) {
		problems = append(problems, fmt.Errorf("invalid tool %d", st.Tool))
	}
	if err := s.guides.Restore(st.Guides); err != nil {
		problems = append(problems, err)
	}
	if err := s.overlay.Restore(st.Annotations, st.Strokes); err != nil {
		problems = append(problems, err)
	}
	return errors.Join(problems...)
}

// MarshalState encodes a snapshot of the session as JSON.
func (s *Session) MarshalState() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalState decodes JSON produced by MarshalState and restores it.
func (s *Session) UnmarshalState(data []byte) error {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode canvas state: %w", err)
	}
	return s.Restore(st)
}
