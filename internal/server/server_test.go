package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitecanvas/pkg/annotate"
	"github.com/matzehuels/sitecanvas/pkg/canvas"
	errs "github.com/matzehuels/sitecanvas/pkg/errors"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/guides"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T, cfg Config) (*Server, *client) {
	t.Helper()
	cfg.Logger = log.New(io.Discard)
	s := New(cfg)
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		hs.Close()
		s.Close()
	})
	return s, &client{t: t, srv: hs}
}

func (c *client) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, r)
	if err != nil {
		c.t.Fatal(err)
	}
	resp, err := c.srv.Client().Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (c *client) json(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()
	resp, data := c.do(method, path, body)
	if resp.StatusCode != wantStatus {
		c.t.Fatalf("%s %s: status = %d, want %d (%s)", method, path, resp.StatusCode, wantStatus, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

// iterating creates a session and moves it to the iterate step.
func (c *client) iterating() string {
	c.t.Helper()
	var st statusResponse
	c.json("POST", "/api/v1/sessions/", map[string]string{"fragment": "#iterate"}, http.StatusCreated, &st)
	if !st.Iteration {
		c.t.Fatalf("mode = %s, want iterate", st.Mode)
	}
	return "/api/v1/sessions/" + st.ID
}

var viewBounds = geom.R(0, 0, 800, 600)

func ptr(kind string, x, y float64) pointerRequest {
	return pointerRequest{Kind: kind, X: x, Y: y, Bounds: &viewBounds}
}

func TestHealthz(t *testing.T) {
	_, c := newTestServer(t, Config{})
	var body map[string]string
	c.json("GET", "/healthz", nil, http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestCreateAndMode(t *testing.T) {
	s, c := newTestServer(t, Config{})

	var st statusResponse
	c.json("POST", "/api/v1/sessions/", nil, http.StatusCreated, &st)
	if st.Mode.String() != "start" || st.Tool != nil {
		t.Errorf("new session = %+v, want start without canvas", st)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	base := "/api/v1/sessions/" + st.ID
	c.json("POST", base+"/mode", map[string]string{"mode": "iterate"}, http.StatusOK, &st)
	if !st.Iteration || !st.Preview || st.Tool == nil || st.Tool.String() != "cursor" {
		t.Errorf("after iterate = %+v", st)
	}
	if st.Fragment != "#iterate" {
		t.Errorf("fragment = %q, want #iterate", st.Fragment)
	}

	c.json("DELETE", base, nil, http.StatusNoContent, nil)
	if s.Len() != 0 {
		t.Errorf("Len = %d after delete, want 0", s.Len())
	}
}

func TestFragment(t *testing.T) {
	_, c := newTestServer(t, Config{})
	var st statusResponse
	c.json("POST", "/api/v1/sessions/", nil, http.StatusCreated, &st)
	base := "/api/v1/sessions/" + st.ID

	var resp struct {
		statusResponse
		Recognised bool `json:"recognised"`
	}
	c.json("POST", base+"/fragment", map[string]string{"fragment": "#code"}, http.StatusOK, &resp)
	if !resp.Recognised || resp.Mode.String() != "code" {
		t.Errorf("fragment #code = %+v", resp)
	}
	c.json("POST", base+"/fragment", map[string]string{"fragment": "#nowhere"}, http.StatusOK, &resp)
	if resp.Recognised || resp.Mode.String() != "code" {
		t.Errorf("unknown fragment changed mode: %+v", resp)
	}
}

func TestNoteOverHTTP(t *testing.T) {
	_, c := newTestServer(t, Config{})
	base := c.iterating()

	c.json("POST", base+"/tool", map[string]string{"tool": "note"}, http.StatusOK, nil)

	var pr pointerResponse
	c.json("POST", base+"/pointer", ptr("down", 100, 100), http.StatusOK, &pr)
	if !pr.Gesture {
		t.Error("gesture not open after down")
	}
	c.json("POST", base+"/pointer", ptr("move", 120, 100), http.StatusOK, nil)
	c.json("POST", base+"/pointer", ptr("up", 130, 100), http.StatusOK, &pr)
	if pr.Gesture {
		t.Error("gesture still open after up")
	}

	var st canvas.State
	c.json("GET", base+"/state", nil, http.StatusOK, &st)
	if len(st.Annotations) != 1 {
		t.Fatalf("annotations = %d, want 1", len(st.Annotations))
	}
	a := st.Annotations[0]
	if a.X != 100 || a.Y != 100 || a.Radius != 30 {
		t.Errorf("annotation = %+v, want (100,100) r=30", a)
	}

	c.json("PATCH", base+"/annotations/"+a.ID, map[string]string{"note": "make it blue"}, http.StatusNoContent, nil)
	c.json("GET", base+"/state", nil, http.StatusOK, &st)
	if st.Annotations[0].Note != "make it blue" {
		t.Errorf("note = %q", st.Annotations[0].Note)
	}

	resp, body := c.do("GET", base+"/overlay.svg", nil)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(string(body), "make it blue") {
		t.Error("overlay missing note text")
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("overlay has no ETag")
	}
	req, _ := http.NewRequest("GET", c.srv.URL+base+"/overlay.svg", nil)
	req.Header.Set("If-None-Match", etag)
	cached, err := c.srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	cached.Body.Close()
	if cached.StatusCode != http.StatusNotModified {
		t.Errorf("conditional GET status = %d, want 304", cached.StatusCode)
	}

	c.json("DELETE", base+"/annotations/"+a.ID, nil, http.StatusNoContent, nil)
	c.json("GET", base+"/state", nil, http.StatusOK, &st)
	if len(st.Annotations) != 0 {
		t.Errorf("annotations = %d after delete, want 0", len(st.Annotations))
	}
}

func TestRulerGuideOverHTTP(t *testing.T) {
	_, c := newTestServer(t, Config{})
	base := c.iterating()

	down := ptr("down", 200, 10)
	down.Target = "ruler"
	down.Axis = "vertical"
	var pr pointerResponse
	c.json("POST", base+"/pointer", down, http.StatusOK, &pr)
	if pr.Guide == "" {
		t.Fatal("ruler down created no guide")
	}
	c.json("POST", base+"/pointer", ptr("move", 350, 40), http.StatusOK, nil)
	c.json("POST", base+"/pointer", ptr("up", 500, 80), http.StatusOK, nil)

	var gs []guides.Guide
	c.json("GET", base+"/guides", nil, http.StatusOK, &gs)
	if len(gs) != 1 || gs[0].ID != pr.Guide || gs[0].Axis != geom.Vertical || gs[0].Position != 500 {
		t.Errorf("guides = %+v, want vertical at 500", gs)
	}

	c.json("DELETE", base+"/guides/"+pr.Guide, nil, http.StatusNoContent, nil)
	c.json("GET", base+"/guides", nil, http.StatusOK, &gs)
	if len(gs) != 0 {
		t.Errorf("guides = %d after delete, want 0", len(gs))
	}
}

func TestCreateGuideAndTicks(t *testing.T) {
	_, c := newTestServer(t, Config{})
	base := c.iterating()

	var g guides.Guide
	c.json("POST", base+"/guides", map[string]any{"axis": "horizontal", "position": 120.4}, http.StatusCreated, &g)
	if g.Position != 120 {
		t.Errorf("position = %v, want 120", g.Position)
	}

	var ticks struct {
		Axis  geom.Axis `json:"axis"`
		Ticks []struct {
			Value float64 `json:"value"`
		} `json:"ticks"`
	}
	c.json("GET", base+"/ticks?axis=horizontal", nil, http.StatusOK, &ticks)
	if ticks.Axis != geom.Horizontal || len(ticks.Ticks) == 0 {
		t.Errorf("ticks = %+v", ticks)
	}
}

func TestWheelAndReset(t *testing.T) {
	_, c := newTestServer(t, Config{})
	base := c.iterating()

	var view canvas.View
	c.json("POST", base+"/wheel", map[string]any{"x": 400, "y": 300, "bounds": viewBounds, "delta": -1}, http.StatusOK, &view)
	if view.Zoom <= 1 {
		t.Errorf("zoom = %v after wheel in, want > 1", view.Zoom)
	}
	c.json("POST", base+"/view/reset", nil, http.StatusNoContent, nil)

	var st canvas.State
	c.json("GET", base+"/state", nil, http.StatusOK, &st)
	if st.View.Zoom != 1 || st.View.Pan != (geom.Point{}) {
		t.Errorf("view = %+v after reset", st.View)
	}
}

func TestAlign(t *testing.T) {
	_, c := newTestServer(t, Config{})
	base := c.iterating()

	var out struct {
		Enabled  bool `json:"enabled"`
		Elements []struct {
			ID  string    `json:"id"`
			Box geom.Rect `json:"box"`
		} `json:"elements"`
	}
	c.json("POST", base+"/align", map[string]any{"op": "left", "elements": []any{}}, http.StatusOK, &out)
	if out.Enabled {
		t.Error("align enabled with empty selection")
	}

	body := map[string]any{
		"op": "left",
		"elements": []map[string]any{
			{"id": "a", "box": geom.R(10, 0, 20, 20)},
			{"id": "b", "box": geom.R(50, 40, 20, 20)},
		},
	}
	c.json("POST", base+"/align", body, http.StatusOK, &out)
	if !out.Enabled || len(out.Elements) != 2 || out.Elements[1].Box.X != 10 {
		t.Errorf("align = %+v, want both at x=10", out)
	}
}

func TestStateSaveLoad(t *testing.T) {
	_, c := newTestServer(t, Config{})
	base := c.iterating()

	c.json("POST", base+"/guides", map[string]any{"axis": "vertical", "position": 300}, http.StatusCreated, nil)
	c.json("POST", base+"/save/home", nil, http.StatusNoContent, nil)

	other := c.iterating()
	c.json("POST", other+"/load/home", nil, http.StatusNoContent, nil)
	var gs []guides.Guide
	c.json("GET", other+"/guides", nil, http.StatusOK, &gs)
	if len(gs) != 1 || gs[0].Position != 300 {
		t.Errorf("loaded guides = %+v", gs)
	}

	put := canvas.State{
		View:        canvas.View{Bounds: viewBounds, Zoom: 2},
		Annotations: []annotate.Annotation{{ID: "note-4", X: 5, Y: 5, Radius: 10}},
	}
	var st canvas.State
	c.json("PUT", other+"/state", put, http.StatusOK, &st)
	if st.View.Zoom != 2 || len(st.Annotations) != 1 {
		t.Errorf("state after put = %+v", st)
	}
}

func TestFarPanStillServes(t *testing.T) {
	_, c := newTestServer(t, Config{})
	base := c.iterating()

	put := canvas.State{View: canvas.View{Bounds: viewBounds, Zoom: 1, Pan: geom.Pt(-9.007199254740992e16, 0)}}
	c.json("PUT", base+"/state", put, http.StatusOK, nil)

	var body struct {
		Ticks []json.RawMessage `json:"ticks"`
	}
	c.json("GET", base+"/ticks?axis=horizontal", nil, http.StatusOK, &body)
	if len(body.Ticks) != 0 {
		t.Errorf("ticks = %d, want 0", len(body.Ticks))
	}
	if resp, _ := c.do("GET", base+"/overlay.svg", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("overlay status = %d, want 200", resp.StatusCode)
	}
}

func TestErrors(t *testing.T) {
	_, c := newTestServer(t, Config{})

	var st statusResponse
	c.json("POST", "/api/v1/sessions/", nil, http.StatusCreated, &st)
	base := "/api/v1/sessions/" + st.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   errs.Code
	}{
		{"unknown session", "GET", "/api/v1/sessions/00000000-0000-0000-0000-000000000000", nil, 404, errs.ErrCodeSessionNotFound},
		{"malformed session", "GET", "/api/v1/sessions/nope", nil, 404, errs.ErrCodeSessionNotFound},
		{"bad mode", "POST", base + "/mode", map[string]string{"mode": "sideways"}, 400, errs.ErrCodeInvalidMode},
		{"bad tool", "POST", base + "/tool", map[string]string{"tool": "laser"}, 400, errs.ErrCodeInvalidTool},
		{"canvas not mounted", "POST", base + "/tool", map[string]string{"tool": "pan"}, 409, errs.ErrCodeNotMounted},
		{"bad alignment", "POST", base + "/align", map[string]string{"op": "diagonal"}, 400, errs.ErrCodeInvalidAlignment},
		{"bad axis", "GET", base + "/ticks?axis=z", nil, 400, errs.ErrCodeInvalidInput},
		{"bad body", "POST", base + "/mode", "[", 400, errs.ErrCodeInvalidInput},
		{"missing project", "POST", base + "/load/nothing", nil, 409, errs.ErrCodeNotMounted},
		{"capture disabled", "POST", base + "/capture", nil, 500, errs.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := c.do(tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, data)
			}
			var body errorBody
			if err := json.Unmarshal(data, &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.code)
			}
		})
	}
}

func TestSweep(t *testing.T) {
	s, _ := newTestServer(t, Config{IdleTTL: time.Minute})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	stale, _ := s.Create("")
	fresh, _ := s.Create("")

	now = now.Add(50 * time.Second)
	if _, err := s.Get(fresh); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Second)

	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep = %d, want 1", n)
	}
	if _, err := s.Get(stale); !errs.Is(err, errs.ErrCodeSessionNotFound) {
		t.Errorf("stale session: err = %v, want SESSION_NOT_FOUND", err)
	}
	if _, err := s.Get(fresh); err != nil {
		t.Errorf("fresh session swept: %v", err)
	}
}

func TestSweepDisabled(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	s.Create("")
	if n := s.Sweep(); n != 0 {
		t.Errorf("Sweep = %d with no TTL, want 0", n)
	}
}
