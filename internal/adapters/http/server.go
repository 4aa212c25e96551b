// Package http exposes a pipeline over a small introspection and control
// API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	pgraph "github.com/aretw0/cairn/internal/presentation/graph"
	"github.com/aretw0/cairn/pkg/domain"
)

// Pipeline defines the engine surface the HTTP adapter needs.
type Pipeline interface {
	Run(ctx context.Context) (*domain.RunReport, error)
	Read(ctx context.Context, name string) (any, error)
	Manifest(ctx context.Context) (*domain.GraphManifest, error)
	Report() *domain.RunReport
}

// Option configures the handler.
type Option func(*server)

// WithMetricsHandler mounts a metrics endpoint (e.g. promhttp.Handler())
// at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type server struct {
	pipeline Pipeline
	metrics  http.Handler
	logger   *slog.Logger
}

// NewHandler creates the HTTP handler for a pipeline.
func NewHandler(pipeline Pipeline, opts ...Option) http.Handler {
	s := &server{
		pipeline: pipeline,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/manifest", s.getManifest)
	r.Get("/graph", s.getGraph)
	r.Get("/graph/mermaid", s.getMermaid)
	r.Get("/report", s.getReport)
	r.Get("/results/{name}", s.getResult)
	r.Post("/run", s.postRun)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return r
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) getManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.pipeline.Manifest(r.Context())
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusOK, manifest)
}

// getGraph returns just the graph topology (edges and order).
func (s *server) getGraph(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.pipeline.Manifest(r.Context())
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"edges": manifest.Edges,
		"order": manifest.Order,
	})
}

func (s *server) getMermaid(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.pipeline.Manifest(r.Context())
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	overlay := pgraph.OverlayFromReport(s.pipeline.Report())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, pgraph.GenerateMermaid(manifest, overlay))
}

func (s *server) getReport(w http.ResponseWriter, r *http.Request) {
	report := s.pipeline.Report()
	if report == nil {
		s.writeError(w, http.StatusNotFound, errors.New("no run has completed yet"))
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *server) getResult(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	value, err := s.pipeline.Read(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrResultNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"name": name, "value": value})
}

func (s *server) postRun(w http.ResponseWriter, r *http.Request) {
	report, err := s.pipeline.Run(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			s.writeError(w, http.StatusConflict, err)
			return
		}
		// A failed run still carries a report worth returning.
		if report != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  err.Error(),
				"report": report,
			})
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
