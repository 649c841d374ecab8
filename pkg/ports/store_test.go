package ports_test

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// MockStore is a map-backed ReportStore used to exercise the contract suite itself.
type MockStore struct {
	data map[string]domain.Report
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.Report),
	}
}

func (m *MockStore) Save(ctx context.Context, id string, report *domain.Report) error {
	// Copy by value to simulate serialization
	cp := *report
	cp.Graph = report.Graph.Clone()
	m.data[id] = cp
	return nil
}

func (m *MockStore) Load(ctx context.Context, id string) (*domain.Report, error) {
	report, ok := m.data[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	report.Graph = report.Graph.Clone()
	return &report, nil
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	delete(m.data, id)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestReportStore_Contract(t *testing.T) {
	ports.RunReportStoreContract(t, NewMockStore())
}

func TestReportStore_LoadMissing(t *testing.T) {
	store := NewMockStore()
	_, err := store.Load(context.Background(), "missing")
	if err != domain.ErrReportNotFound {
		t.Errorf("Expected ErrReportNotFound, got %v", err)
	}
}

func TestAdvisorFunc(t *testing.T) {
	called := false
	var advisor ports.RepairAdvisor = ports.AdvisorFunc(func(ctx context.Context, req ports.RepairRequest) (*domain.Resolution, error) {
		called = true
		if req.Conflict.Kind != domain.ConflictOverlappingConditions {
			t.Errorf("unexpected kind %s", req.Conflict.Kind)
		}
		return &domain.Resolution{ConfidenceScore: 1}, nil
	})

	res, err := advisor.Propose(context.Background(), ports.RepairRequest{Conflict: domain.Conflict{Kind: domain.ConflictOverlappingConditions}})
	if err != nil || res == nil || !called {
		t.Fatalf("advisor func not invoked: res=%v err=%v", res, err)
	}
}
