// Package server exposes machine validation over HTTP: submit a definition,
// get back the compiled model, a diagram, or a position-anchored rejection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/api"
	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// ModelCache stores compiled models keyed by source document.
type ModelCache interface {
	Get(ctx context.Context, src []byte) (*machine.StateMachine, error)
	Put(ctx context.Context, src []byte, m *machine.StateMachine) error
}

// Server validates submitted definitions. Construct with New.
type Server struct {
	cfg      Config
	log      *slog.Logger
	cache    ModelCache
	registry *prometheus.Registry
	metrics  *metrics
}

type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithCache reuses previously compiled models for identical documents.
func WithCache(cache ModelCache) Option {
	return func(s *Server) {
		s.cache = cache
	}
}

// New creates a server with options applied over cfg.
func New(cfg Config, opts ...Option) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	s := &Server{
		cfg:      cfg,
		log:      logging.NewNop(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(s.registry)
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.observe)

	r.Post("/api/v1/validate", s.handleValidate)
	r.Post("/api/v1/diagram", s.handleDiagram)
	r.Get("/api/v1/info", s.handleInfo)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return r
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Espalier API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// observe tags every request with an ID and logs its outcome.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.log.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// compile resolves a source document to a model, via the cache when one is
// configured. Cache failures fall back to compiling.
func (s *Server) compile(ctx context.Context, src []byte) (*machine.StateMachine, error) {
	if s.cache != nil {
		if m, err := s.cache.Get(ctx, src); err == nil {
			s.metrics.compiles.WithLabelValues("cached").Inc()
			return m, nil
		}
	}

	start := time.Now()
	root, err := document.Parse(src)
	var m *machine.StateMachine
	if err == nil {
		m, err = compiler.Compile(root)
	}
	s.metrics.duration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.compiles.WithLabelValues("invalid").Inc()
		return nil, err
	}
	s.metrics.compiles.WithLabelValues("ok").Inc()

	if s.cache != nil {
		if err := s.cache.Put(ctx, src, m); err != nil {
			s.log.Warn("model cache write failed", "error", err)
		}
	}
	return m, nil
}

// handleValidate handles the POST /api/v1/validate request.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	src, ok := s.readDefinition(w, r)
	if !ok {
		return
	}

	m, err := s.compile(r.Context(), src)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m); err != nil {
		s.log.Error("validate response encode failed", "error", err)
	}
}

// handleDiagram handles the POST /api/v1/diagram request.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	src, ok := s.readDefinition(w, r)
	if !ok {
		return
	}

	m, err := s.compile(r.Context(), src)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.mermaid; charset=utf-8")
	if _, err := io.Copy(w, strings.NewReader(graph.Mermaid(m))); err != nil {
		s.log.Error("diagram response write failed", "error", err)
	}
}

// handleHealth handles the GET /healthz request.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleInfo handles the GET /api/v1/info request.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "espalier-server",
		"version": strings.TrimSpace(espalier.Version),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) readDefinition(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "Definition too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.log.Warn("definition read failed", "error", err)
		return nil, false
	}
	return src, true
}

// rejection is the body of a 422 response.
type rejection struct {
	Error  string `json:"error"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (s *Server) writeRejection(w http.ResponseWriter, err error) {
	resp := rejection{Error: err.Error()}

	var docErr *document.Error
	if errors.As(err, &docErr) {
		resp.Error = docErr.Msg
		resp.Line = docErr.Pos.Line
		resp.Column = docErr.Pos.Column
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("rejection encode failed", "error", err)
	}
}
