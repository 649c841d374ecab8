package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// RecordValidation counts one structural validation.
func (r *Registry) RecordValidation(result domain.ValidationResult) {
	label := "valid"
	if !result.Valid {
		label = "invalid"
	}
	r.ValidationsTotal.WithLabelValues(label).Inc()
}

// RecordRun records an analyze or repair run and everything its report carries.
func (r *Registry) RecordRun(operation string, report *domain.Report, duration time.Duration) {
	r.RunDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if report == nil {
		return
	}
	r.RecordValidation(report.Validation)
	r.GraphNodes.Observe(float64(report.NodesBefore))

	for _, c := range report.Conflicts {
		r.ConflictsDetected.WithLabelValues(string(c.Kind), string(c.Severity)).Inc()
	}
	for _, res := range report.Resolved {
		r.ConflictsResolved.WithLabelValues(string(res.Conflict.Kind), "resolved").Inc()
	}
	for _, c := range report.Unresolved {
		r.ConflictsResolved.WithLabelValues(string(c.Kind), "unresolved").Inc()
	}
	if report.RolledBack {
		r.RollbacksTotal.Inc()
	}
}

// RecordPersist counts one report store write.
func (r *Registry) RecordPersist(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.ReportsPersisted.WithLabelValues(status).Inc()
}

// instrumentedAdvisor times and counts every Propose call.
type instrumentedAdvisor struct {
	next     ports.RepairAdvisor
	registry *Registry
}

// InstrumentAdvisor wraps next so each call is counted and timed.
func InstrumentAdvisor(next ports.RepairAdvisor, r *Registry) ports.RepairAdvisor {
	return &instrumentedAdvisor{next: next, registry: r}
}

func (a *instrumentedAdvisor) Propose(ctx context.Context, req ports.RepairRequest) (*domain.Resolution, error) {
	kind := string(req.Conflict.Kind)
	start := time.Now()
	res, err := a.next.Propose(ctx, req)
	a.registry.AdvisorDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	a.registry.AdvisorRequestsTotal.WithLabelValues(kind, status).Inc()
	return res, err
}

// statusRecorder captures the response status for the HTTP middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE handlers working behind the middleware.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request counts and latency, labelled by chi route pattern.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		r.HTTPRequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(rec.status)).Inc()
		r.HTTPRequestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}
