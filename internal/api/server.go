package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/davargas/facturex/internal/config"
	"github.com/davargas/facturex/internal/export"
)

// Server is the HTTP surface that stands in for the export UI: it
// triggers export jobs and exposes their progress and artifacts.
type Server struct {
	router     chi.Router
	controller *export.Controller
	log        *slog.Logger
	cfg        config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(ctrl *export.Controller, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		controller: ctrl,
		log:        log,
		cfg:        cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/exports", s.handleStartExport)
		r.Get("/api/exports/estimate", s.handleEstimate)
		r.Get("/api/exports/{jobID}", s.handleExportStatus)
		r.Delete("/api/exports/{jobID}", s.handleDismissExport)
		r.Get("/api/exports/{jobID}/artifact", s.handleExportArtifact)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
