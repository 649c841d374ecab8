package middleware_test

import (
	"context"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It keeps the pointers it is given so tests can inspect what reached it.
type MockStore struct {
	data map[string]*domain.Report
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Report),
	}
}

func (s *MockStore) Save(ctx context.Context, id string, report *domain.Report) error {
	s.data[id] = report
	return nil
}

func (s *MockStore) Load(ctx context.Context, id string) (*domain.Report, error) {
	report, ok := s.data[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return report, nil
}

func (s *MockStore) Delete(ctx context.Context, id string) error {
	delete(s.data, id)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ ports.ReportStore = (*MockStore)(nil)

func sampleReport(id string) *domain.Report {
	return &domain.Report{
		ID:         id,
		DocumentID: "patients",
		Conflicts:  []domain.Conflict{domain.NewContradiction("q1", "q2", "Has diabetes")},
		Graph: domain.NewGraph(
			&domain.Node{
				ID: "q1", Kind: domain.KindQuestion, Condition: "Has diabetes",
				Connections: []domain.Connection{{Label: "yes", Target: "o1"}},
				Metadata:    map[string]string{"patient_ssn": "999-99-9999", "owner": "triage-team"},
			},
			&domain.Node{ID: "o1", Kind: domain.KindOutcome, Decision: "REFER", Metadata: map[string]string{"contact_email": "a@b.c"}},
		),
	}
}
