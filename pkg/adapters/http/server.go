package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor/internal/codec"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodyBytes bounds the size of a posted graph document.
const DefaultMaxBodyBytes = 4 << 20

// Server serves the engine over JSON HTTP.
type Server struct {
	Engine  ports.Engine
	Streams *StreamManager

	logger     *slog.Logger
	metrics    http.Handler
	middleware []func(http.Handler) http.Handler
	maxBody    int64
	version    string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMiddleware adds router middleware, e.g. request metrics.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithVersion sets the version reported by GET /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBody: DefaultMaxBodyBytes,
		version: "unknown",
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger
	return server.Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(s.middleware...)

	r.Get("/health", s.GetHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.Validate)
		r.Post("/analyze", s.Analyze)
		r.Post("/repair", s.Repair)
		r.Get("/reports/{id}", s.GetReport)
		r.Get("/events", s.SubscribeEvents)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

// readDocument decodes the request body as a JSON or YAML graph document.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*codec.Document, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("document exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return nil, false
	}

	doc, err := codec.Decode(data)
	if err != nil {
		s.logger.Warn("invalid graph document", "err", err, "size", len(data))
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return doc, true
}

func documentID(r *http.Request, doc *codec.Document) string {
	if id := strings.TrimSpace(r.URL.Query().Get("document")); id != "" {
		return id
	}
	return doc.ID()
}

// Validate handles POST /v1/validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	result := s.Engine.Validate(r.Context(), doc.Graph)
	s.writeJSON(w, http.StatusOK, result)
}

// Analyze handles POST /v1/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	report, err := s.Engine.Analyze(r.Context(), documentID(r, doc), doc.Graph)
	if err != nil {
		s.logger.Error("analyze failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// Repair handles POST /v1/repair.
func (s *Server) Repair(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	docID := documentID(r, doc)
	report, err := s.Engine.Repair(r.Context(), docID, doc.Graph)
	if err != nil {
		s.logger.Error("repair failed", "err", err, "document_id", docID)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if docID != "" && !report.Changes.Empty() {
		if payload, err := json.Marshal(event{ReportID: report.ID, Changes: report.Changes}); err == nil {
			s.Streams.Broadcast(docID, string(payload))
		}
	}
	s.writeJSON(w, http.StatusOK, report)
}

// GetReport handles GET /v1/reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.Engine.Report(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.logger.Error("report lookup failed", "err", err, "report_id", id)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"app":     "arbor-http",
		"version": strings.TrimSpace(s.version),
	})
}
