package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEngine for testing
type MockEngine struct {
	ValidateFunc func(g *domain.Graph) domain.ValidationResult
	RepairFunc   func(documentID string, g *domain.Graph) (*domain.Report, error)
	Reports      map[string]*domain.Report

	lastDocumentID string
}

func (m *MockEngine) Validate(ctx context.Context, g *domain.Graph) domain.ValidationResult {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(g)
	}
	return domain.ValidationResult{Valid: true, Issues: []domain.Issue{}}
}

func (m *MockEngine) Analyze(ctx context.Context, documentID string, g *domain.Graph) (*domain.Report, error) {
	m.lastDocumentID = documentID
	return &domain.Report{ID: "analysis-1", DocumentID: documentID, NodesBefore: g.Len(), NodesAfter: g.Len()}, nil
}

func (m *MockEngine) Repair(ctx context.Context, documentID string, g *domain.Graph) (*domain.Report, error) {
	m.lastDocumentID = documentID
	if m.RepairFunc != nil {
		return m.RepairFunc(documentID, g)
	}
	return &domain.Report{ID: "repair-1", DocumentID: documentID}, nil
}

func (m *MockEngine) Report(ctx context.Context, id string) (*domain.Report, error) {
	if r, ok := m.Reports[id]; ok {
		return r, nil
	}
	return nil, domain.ErrReportNotFound
}

const loanTree = `{
  "metadata": {"document_id": "loan"},
  "nodes": {
    "start": {"type": "question", "condition": "Has income", "connections": {"yes": "approve", "no": "deny"}},
    "approve": {"type": "outcome", "decision": "APPROVED"},
    "deny": {"type": "outcome", "decision": "DENIED"}
  }
}`

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestValidate(t *testing.T) {
	var seen *domain.Graph
	engine := &MockEngine{ValidateFunc: func(g *domain.Graph) domain.ValidationResult {
		seen = g
		return domain.ValidationResult{Valid: false, Issues: []domain.Issue{{Rule: domain.RuleCycle, Severity: domain.IssueError, Message: "x"}}}
	}}
	h := NewHandler(engine)

	w := do(t, h, http.MethodPost, "/v1/validate", loanTree)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.Len(t, result.Issues, 1)
	require.NotNil(t, seen)
	assert.Equal(t, 3, seen.Len())
}

func TestAnalyze_DocumentID(t *testing.T) {
	engine := &MockEngine{}
	h := NewHandler(engine)

	w := do(t, h, http.MethodPost, "/v1/analyze", loanTree)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "loan", engine.lastDocumentID, "falls back to the document metadata")

	w = do(t, h, http.MethodPost, "/v1/analyze?document=override", loanTree)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "override", engine.lastDocumentID)
}

func TestAnalyze_YAMLBody(t *testing.T) {
	engine := &MockEngine{}
	h := NewHandler(engine)

	body := "nodes:\n  start:\n    type: outcome\n    decision: APPROVED\n"
	w := do(t, h, http.MethodPost, "/v1/analyze", body)
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.NodesBefore)
}

func TestBadRequests(t *testing.T) {
	h := NewHandler(&MockEngine{}, WithMaxBodyBytes(64))

	w := do(t, h, http.MethodPost, "/v1/validate", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)

	w = do(t, h, http.MethodPost, "/v1/validate", loanTree)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(t, h, http.MethodGet, "/v1/events", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReport(t *testing.T) {
	engine := &MockEngine{Reports: map[string]*domain.Report{"r1": {ID: "r1", DocumentID: "loan"}}}
	h := NewHandler(engine)

	w := do(t, h, http.MethodGet, "/v1/reports/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"document_id":"loan"`)

	w = do(t, h, http.MethodGet, "/v1/reports/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("arbor_conflicts_detected_total 1\n"))
	})
	h := NewHandler(&MockEngine{}, WithMetrics(metrics), WithVersion("1.2.3\n"))

	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)

	w = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arbor_conflicts_detected_total")

	// Without the option, /metrics is not mounted.
	w = do(t, NewHandler(&MockEngine{}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents_Repair(t *testing.T) {
	engine := &MockEngine{RepairFunc: func(documentID string, g *domain.Graph) (*domain.Report, error) {
		return &domain.Report{
			ID:         "repair-7",
			DocumentID: documentID,
			Changes:    &domain.GraphDiff{RemovedNodes: []string{"deny"}},
		}, nil
	}}
	srv := httptest.NewServer(NewHandler(engine))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events?document=loan", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	// The subscription is registered before the ping is flushed.
	repair, err := http.Post(srv.URL+"/v1/repair", "application/json", strings.NewReader(loanTree))
	require.NoError(t, err)
	repair.Body.Close()
	require.Equal(t, http.StatusOK, repair.StatusCode)

	var frame string
	for !strings.HasPrefix(frame, "data: {") {
		frame, err = reader.ReadString('\n')
		require.NoError(t, err)
	}
	assert.Contains(t, frame, `"report_id":"repair-7"`)
	assert.Contains(t, frame, `"removed_nodes":["deny"]`)
}

func TestRepair_BroadcastsOnlyChangedGraphs(t *testing.T) {
	tests := []struct {
		name    string
		changes *domain.GraphDiff
		want    bool
	}{
		{"no diff", nil, false},
		{"empty diff", &domain.GraphDiff{}, false},
		{"removed edge", &domain.GraphDiff{RemovedEdges: []domain.Edge{{From: "q3", Label: "back", To: "q1"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &MockEngine{RepairFunc: func(documentID string, g *domain.Graph) (*domain.Report, error) {
				return &domain.Report{ID: "repair-9", DocumentID: documentID, Changes: tt.changes}, nil
			}}
			s := &Server{
				Engine:  engine,
				Streams: NewStreamManager(),
				logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
				maxBody: DefaultMaxBodyBytes,
			}
			ch, unsubscribe := s.Streams.Subscribe("loan")
			defer unsubscribe()

			w := do(t, s.Routes(), http.MethodPost, "/v1/repair", loanTree)
			require.Equal(t, http.StatusOK, w.Code)

			select {
			case msg := <-ch:
				assert.True(t, tt.want, "unexpected event: %s", msg)
				assert.Contains(t, msg, `"report_id":"repair-9"`)
			default:
				assert.False(t, tt.want, "expected a repair event")
			}
		})
	}
}
