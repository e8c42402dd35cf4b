// Package server exposes editor sessions over HTTP.
//
// Each session is an [editor.Editor] addressed by a UUID. The server keeps
// sessions in memory, sweeps idle ones, and persists canvas state only when a
// client asks it to save.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sitecanvas/pkg/canvas"
	"github.com/matzehuels/sitecanvas/pkg/capture"
	"github.com/matzehuels/sitecanvas/pkg/editor"
	errs "github.com/matzehuels/sitecanvas/pkg/errors"
	"github.com/matzehuels/sitecanvas/pkg/store"
)

// Config configures a Server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// IdleTTL closes sessions unused for this long. Zero disables sweeping.
	IdleTTL time.Duration

	Canvas canvas.Config
	Store  store.Store
	// NewCapturer returns the capturer for a new session. Nil disables capture.
	NewCapturer func() *capture.Capturer

	Logger *log.Logger
}

type entry struct {
	ed       *editor.Editor
	lastUsed time.Time
}

// Server serves the editor API.
type Server struct {
	cfg     Config
	logger  *log.Logger
	handler http.Handler
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// New creates a server. A nil store keeps projects in memory.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Canvas.Bounds.Empty() {
		cfg.Canvas.Bounds = canvas.DefaultConfig().Bounds
	}
	s := &Server{
		cfg:      cfg,
		logger:   cfg.Logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Create opens a new editor session and returns its id.
func (s *Server) Create(fragment string) (string, *editor.Editor) {
	opts := []editor.Option{
		editor.WithCanvasConfig(s.cfg.Canvas),
		editor.WithStore(s.cfg.Store),
		editor.WithLogger(s.logger),
	}
	if s.cfg.NewCapturer != nil {
		opts = append(opts, editor.WithCapturer(s.cfg.NewCapturer()))
	}
	id := uuid.NewString()
	ed := editor.New(fragment, opts...)

	s.mu.Lock()
	s.sessions[id] = &entry{ed: ed, lastUsed: s.now()}
	s.mu.Unlock()
	s.logger.Info("session created", "id", id, "mode", ed.Mode())
	return id, ed
}

// Get returns the editor for id and marks it used.
func (s *Server) Get(id string) (*editor.Editor, error) {
	if err := errs.ValidateSessionID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %s not found", id)
	}
	e.lastUsed = s.now()
	return e.ed, nil
}

// Delete closes and forgets a session. Unknown ids are ignored.
func (s *Server) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		e.ed.Close()
		s.logger.Info("session closed", "id", id)
	}
	return ok
}

// Len returns the number of open sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than the configured TTL and returns
// how many were closed.
func (s *Server) Sweep() int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.IdleTTL)

	s.mu.Lock()
	var idle []*entry
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range idle {
		e.ed.Close()
	}
	if len(idle) > 0 {
		s.logger.Info("swept idle sessions", "count", len(idle))
	}
	return len(idle)
}

// RunSweeper sweeps periodically until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, interval time.Duration) error {
	if s.cfg.IdleTTL <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Sweep()
		}
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.Close()
	return nil
}

// Close closes every session.
func (s *Server) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()
	for _, e := range all {
		e.ed.Close()
	}
}
