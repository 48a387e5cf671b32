// Package server exposes the filtering pipeline, the markup annotator, and
// the result signature over HTTP. The handlers are thin: all policy
// semantics live in internal/pipeline and internal/annotate; the external
// detection and anonymization services are the caller's concern.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lawlawrd/polly/internal/annotate"
	"github.com/lawlawrd/polly/internal/config"
	"github.com/lawlawrd/polly/internal/otel"
	"github.com/lawlawrd/polly/internal/pipeline"
	"github.com/lawlawrd/polly/internal/policy"
)

const defaultTimeout = 30 * time.Second

// Server holds all dependencies for the HTTP API.
type Server struct {
	router    *chi.Mux
	pipeline  *pipeline.Pipeline
	annotator *annotate.Annotator
	registry  *policy.Registry
	model     string
	startTime time.Time
}

// NewServer builds a Server from the resolved operator config.
func NewServer(cfg *config.Config) *Server {
	return &Server{
		router:    chi.NewRouter(),
		pipeline:  pipeline.New(),
		annotator: annotate.New(cfg.Registry.DisplayName),
		registry:  cfg.Registry,
		model:     cfg.DefaultModel,
		startTime: time.Now(),
	}
}

// Routes returns the configured http.Handler.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otel.MiddlewareWithStatus())

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(defaultTimeout))
		r.Post("/v1/filter", s.handleFilter)
		r.Post("/v1/annotate", s.handleAnnotate)
		r.Post("/v1/signature", s.handleSignature)
	})

	return r
}
