package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sitecanvas/pkg/buildinfo"
	"github.com/matzehuels/sitecanvas/pkg/observability"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
			buildinfo.Info
		}{"ok", buildinfo.Get()})
	})

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleStatus)
			r.Delete("/", s.handleDelete)

			r.Post("/mode", s.handleMode)
			r.Post("/fragment", s.handleFragment)
			r.Get("/steps.dot", s.handleSteps)
			r.Put("/preview", s.handlePreview)
			r.Post("/capture", s.handleCapture)

			r.Post("/tool", s.handleTool)
			r.Post("/pointer", s.handlePointer)
			r.Post("/wheel", s.handleWheel)
			r.Post("/view/reset", s.handleResetView)
			r.Get("/ticks", s.handleTicks)
			r.Get("/overlay.svg", s.handleOverlay)
			r.Post("/align", s.handleAlign)

			r.Get("/guides", s.handleGuides)
			r.Post("/guides", s.handleCreateGuide)
			r.Delete("/guides/{guide}", s.handleDeleteGuide)
			r.Patch("/annotations/{note}", s.handleSetNote)
			r.Delete("/annotations/{note}", s.handleDeleteAnnotation)
			r.Delete("/strokes/{stroke}", s.handleDeleteStroke)

			r.Get("/state", s.handleGetState)
			r.Put("/state", s.handlePutState)
			r.Post("/save/{key}", s.handleSave)
			r.Post("/load/{key}", s.handleLoad)
		})
	})
	return r
}

// observe reports every request to the HTTP hooks and logs it at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status,
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}
