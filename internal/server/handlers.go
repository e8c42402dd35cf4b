package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sitecanvas/pkg/align"
	"github.com/matzehuels/sitecanvas/pkg/cache"
	"github.com/matzehuels/sitecanvas/pkg/canvas"
	"github.com/matzehuels/sitecanvas/pkg/capture"
	"github.com/matzehuels/sitecanvas/pkg/editor"
	errs "github.com/matzehuels/sitecanvas/pkg/errors"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/guides"
	"github.com/matzehuels/sitecanvas/pkg/pointer"
	"github.com/matzehuels/sitecanvas/pkg/ruler"
	"github.com/matzehuels/sitecanvas/pkg/tool"
	"github.com/matzehuels/sitecanvas/pkg/viewmode"
)

type statusResponse struct {
	ID           string        `json:"id"`
	Mode         viewmode.Mode `json:"mode"`
	Fragment     string        `json:"fragment"`
	Preview      bool          `json:"preview"`
	Iteration    bool          `json:"iteration"`
	Tool         *tool.Tool    `json:"tool,omitempty"`
	CaptureBusy  bool          `json:"captureBusy"`
	CaptureError string        `json:"captureError,omitempty"`
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*editor.Editor, bool) {
	ed, err := s.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return ed, true
}

// do runs fn against the session's canvas and writes the error, if any.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func(*canvas.Session) error) bool {
	ed, ok := s.lookup(w, r)
	if !ok {
		return false
	}
	if err := ed.Do(fn); err != nil {
		s.writeError(w, r, err)
		return false
	}
	return true
}

func status(id string, ed *editor.Editor) statusResponse {
	m := ed.Mode()
	resp := statusResponse{
		ID:           id,
		Mode:         m,
		Fragment:     ed.Fragment(),
		Preview:      m.Preview(),
		Iteration:    m.Iteration(),
		CaptureBusy:  ed.CaptureBusy(),
		CaptureError: ed.CaptureError(),
	}
	// Do fails with NOT_MOUNTED outside iterate, where there is no tool.
	_ = ed.Do(func(c *canvas.Session) error {
		t := c.Tool()
		resp.Tool = &t
		return nil
	})
	return resp
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fragment string `json:"fragment"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, ed := s.Create(req.Fragment)
	writeJSON(w, http.StatusCreated, status(id, ed))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, status(chi.URLParam(r, "id"), ed))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateSessionID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := viewmode.Parse(req.Mode)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidMode, err, "unknown view mode %q", req.Mode))
		return
	}
	if err := ed.Request(m); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status(chi.URLParam(r, "id"), ed))
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Fragment string `json:"fragment"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	recognised := ed.Navigate(req.Fragment)
	writeJSON(w, http.StatusOK, struct {
		statusResponse
		Recognised bool `json:"recognised"`
	}{status(chi.URLParam(r, "id"), ed), recognised})
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(viewmode.ToDOT(ed.Mode())))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var p capture.Preview
	if err := decode(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.Width <= 0 || p.Height <= 0 {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "preview width and height must be positive"))
		return
	}
	ed.SetPreview(p)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var b capture.Brief
	if err := decode(r, &b); err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := ed.Capture(r.Context(), b)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tool string `json:"tool"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := tool.Parse(req.Tool)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidTool, err, "unknown tool %q", req.Tool))
		return
	}
	if s.do(w, r, func(c *canvas.Session) error {
		c.SelectTool(t)
		return nil
	}) {
		writeJSON(w, http.StatusOK, map[string]tool.Tool{"tool": t})
	}
}

type pointerRequest struct {
	// Target is "canvas" (default), "ruler" or "guide".
	Target string     `json:"target"`
	Kind   string     `json:"kind"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Bounds *geom.Rect `json:"bounds"`
	Alt    bool       `json:"alt"`

	// Axis is the axis of the guide a ruler drag creates.
	Axis string `json:"axis,omitempty"`
	// Guide is the guide grabbed by a guide-target pointer-down.
	Guide string `json:"guide,omitempty"`
}

type pointerResponse struct {
	Guide   string `json:"guide,omitempty"`
	Gesture bool   `json:"gesture"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	kind, err := pointer.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "unknown pointer event %q", req.Kind))
		return
	}
	ev := pointer.Event{Kind: kind, Client: geom.Pt(req.X, req.Y), Bounds: req.Bounds, Alt: req.Alt}

	var resp pointerResponse
	if s.do(w, r, func(c *canvas.Session) error {
		switch req.Target {
		case "", "canvas":
			c.HandlePointer(ev)
		case "ruler":
			axis, err := geom.ParseAxis(req.Axis)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "unknown axis %q", req.Axis)
			}
			if kind != pointer.Down {
				return errs.New(errs.ErrCodeInvalidInput, "ruler target only accepts down events")
			}
			resp.Guide, _ = c.RulerDown(axis, ev)
		case "guide":
			if kind != pointer.Down {
				return errs.New(errs.ErrCodeInvalidInput, "guide target only accepts down events")
			}
			if !c.GuideDown(req.Guide) {
				return errs.New(errs.ErrCodeNotFound, "guide %q not found", req.Guide)
			}
			resp.Guide = req.Guide
		default:
			return errs.New(errs.ErrCodeInvalidInput, "unknown pointer target %q", req.Target)
		}
		resp.Gesture = c.ListenerCount() > 0
		return nil
	}) {
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X      float64    `json:"x"`
		Y      float64    `json:"y"`
		Bounds *geom.Rect `json:"bounds"`
		Delta  float64    `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ev := pointer.Event{Kind: pointer.Move, Client: geom.Pt(req.X, req.Y), Bounds: req.Bounds}
	var view canvas.View
	if s.do(w, r, func(c *canvas.Session) error {
		c.Wheel(ev, req.Delta)
		v := c.Viewport()
		view = canvas.View{Bounds: v.Bounds, Pan: v.Pan, Zoom: v.Zoom}
		return nil
	}) {
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) handleResetView(w http.ResponseWriter, r *http.Request) {
	if s.do(w, r, func(c *canvas.Session) error {
		c.ResetView()
		return nil
	}) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleTicks(w http.ResponseWriter, r *http.Request) {
	axis, err := geom.ParseAxis(r.URL.Query().Get("axis"))
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "axis must be horizontal or vertical"))
		return
	}
	var ticks []ruler.Tick
	if s.do(w, r, func(c *canvas.Session) error {
		ticks = c.Ticks(axis)
		return nil
	}) {
		writeJSON(w, http.StatusOK, map[string]any{"axis": axis, "ticks": ticks})
	}
}

// handleOverlay serves the overlay SVG. The ETag is scoped to the session,
// so identical overlays of two sessions never share a cache entry.
func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	var svg []byte
	if !s.do(w, r, func(c *canvas.Session) error {
		svg = c.SVG()
		return nil
	}) {
		return
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), chi.URLParam(r, "id")+":")
	etag := `"` + keyer.OverlayKey(cache.Hash(svg), cache.OverlayKeyOpts{Format: "svg", Rulers: true}) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Op       string          `json:"op"`
		Elements []align.Element `json:"elements"`
		Scope    *geom.Rect      `json:"scope"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	op, err := align.ParseOp(req.Op)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidAlignment, err, "unknown alignment %q", req.Op))
		return
	}
	var (
		out     []align.Element
		enabled bool
	)
	if s.do(w, r, func(c *canvas.Session) error {
		out, enabled = c.Align(op, req.Elements, req.Scope)
		return nil
	}) {
		if out == nil {
			out = []align.Element{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"enabled": enabled, "elements": out})
	}
}

func (s *Server) handleGuides(w http.ResponseWriter, r *http.Request) {
	var gs []guides.Guide
	if s.do(w, r, func(c *canvas.Session) error {
		gs = c.Guides().Guides()
		return nil
	}) {
		writeJSON(w, http.StatusOK, gs)
	}
}

func (s *Server) handleCreateGuide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Axis     string  `json:"axis"`
		Position float64 `json:"position"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	axis, err := geom.ParseAxis(req.Axis)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "unknown axis %q", req.Axis))
		return
	}
	var g guides.Guide
	if s.do(w, r, func(c *canvas.Session) error {
		id, ok := c.Guides().CreateGuide(axis, req.Position)
		if !ok {
			return errs.New(errs.ErrCodeInvalidInput, "guide not created")
		}
		g, _ = c.Guides().Guide(id)
		return nil
	}) {
		writeJSON(w, http.StatusCreated, g)
	}
}

func (s *Server) handleDeleteGuide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "guide")
	if s.do(w, r, func(c *canvas.Session) error {
		c.GuideDoubleClick(id)
		return nil
	}) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleSetNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errs.ValidateNote(req.Note); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "note")
	if s.do(w, r, func(c *canvas.Session) error {
		if !c.Overlay().SetNote(id, req.Note) {
			return errs.New(errs.ErrCodeNotFound, "annotation %q not found", id)
		}
		return nil
	}) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "note")
	if s.do(w, r, func(c *canvas.Session) error {
		c.Overlay().RemoveAnnotation(id)
		return nil
	}) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDeleteStroke(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stroke")
	if s.do(w, r, func(c *canvas.Session) error {
		c.Overlay().RemoveStroke(id)
		return nil
	}) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	var st canvas.State
	if s.do(w, r, func(c *canvas.Session) error {
		st = c.Snapshot()
		return nil
	}) {
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var st canvas.State
	if err := decode(r, &st); err != nil {
		s.writeError(w, r, err)
		return
	}
	var warning string
	if s.do(w, r, func(c *canvas.Session) error {
		if err := c.Restore(st); err != nil {
			warning = err.Error()
		}
		st = c.Snapshot()
		return nil
	}) {
		writeJSON(w, http.StatusOK, struct {
			canvas.State
			Warning string `json:"warning,omitempty"`
		}{st, warning})
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := ed.Save(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := ed.Load(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
