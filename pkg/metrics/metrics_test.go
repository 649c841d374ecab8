package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.ConflictsDetected == nil || r.AdvisorDuration == nil || r.HTTPRequestsTotal == nil {
		t.Error("metrics not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordRun(t *testing.T) {
	r := NewRegistry()
	cycle := domain.NewCircularDependency([]string{"a", "b", "a"})
	overlap := domain.NewOverlap(&domain.Node{ID: "x"}, &domain.Node{ID: "y"})

	r.RecordRun("repair", &domain.Report{
		Validation:  domain.ValidationResult{Valid: false},
		Conflicts:   []domain.Conflict{cycle, overlap},
		Resolved:    []domain.Resolved{{Conflict: cycle, Action: "removed edge"}},
		Unresolved:  []domain.Conflict{overlap},
		RolledBack:  true,
		NodesBefore: 12,
	}, 20*time.Millisecond)

	if got := testutil.ToFloat64(r.ConflictsDetected.WithLabelValues("circular_dependency", "critical")); got != 1 {
		t.Errorf("expected 1 circular conflict, got %v", got)
	}
	if got := testutil.ToFloat64(r.ConflictsResolved.WithLabelValues("circular_dependency", "resolved")); got != 1 {
		t.Errorf("expected 1 resolved, got %v", got)
	}
	if got := testutil.ToFloat64(r.ConflictsResolved.WithLabelValues("overlapping_conditions", "unresolved")); got != 1 {
		t.Errorf("expected 1 unresolved, got %v", got)
	}
	if got := testutil.ToFloat64(r.ValidationsTotal.WithLabelValues("invalid")); got != 1 {
		t.Errorf("expected 1 invalid validation, got %v", got)
	}
	if got := testutil.ToFloat64(r.RollbacksTotal); got != 1 {
		t.Errorf("expected 1 rollback, got %v", got)
	}
	if n := testutil.CollectAndCount(r.RunDuration); n != 1 {
		t.Errorf("expected one run duration series, got %d", n)
	}
}

func TestInstrumentAdvisor(t *testing.T) {
	r := NewRegistry()
	fail := true
	inner := ports.AdvisorFunc(func(ctx context.Context, req ports.RepairRequest) (*domain.Resolution, error) {
		if fail {
			return nil, errors.New("timeout")
		}
		return &domain.Resolution{ConfidenceScore: 1}, nil
	})
	advisor := InstrumentAdvisor(inner, r)
	req := ports.RepairRequest{Conflict: domain.NewContradiction("q1", "q2", "x")}

	if _, err := advisor.Propose(context.Background(), req); err == nil {
		t.Fatal("expected inner error to pass through")
	}
	fail = false
	if _, err := advisor.Propose(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(r.AdvisorRequestsTotal.WithLabelValues("contradictory_paths", "error")); got != 1 {
		t.Errorf("expected 1 failed call, got %v", got)
	}
	if got := testutil.ToFloat64(r.AdvisorRequestsTotal.WithLabelValues("contradictory_paths", "ok")); got != 1 {
		t.Errorf("expected 1 successful call, got %v", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	r := NewRegistry()
	router := chi.NewRouter()
	router.Use(r.Middleware)
	router.Get("/v1/reports/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/reports/"+id, nil))
	}

	if got := testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("GET", "/v1/reports/{id}", "404")); got != 2 {
		t.Errorf("expected route pattern label with 2 requests, got %v", got)
	}

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "arbor_http_requests_total") {
		t.Error("exposition missing arbor_http_requests_total")
	}
}

func TestRecordPersist(t *testing.T) {
	r := NewRegistry()
	r.RecordPersist(nil)
	r.RecordPersist(errors.New("disk full"))

	if got := testutil.ToFloat64(r.ReportsPersisted.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed write, got %v", got)
	}
}
