package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Report),
	}
}

// Save persists the report in memory.
func (s *Store) Save(ctx context.Context, id string, report *domain.Report) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := copyReport(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Load retrieves the report from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}

	// Copy on read so callers can't mutate the stored report by pointer
	return copyReport(report), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored report ids in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func copyReport(r *domain.Report) *domain.Report {
	out := *r
	out.Validation.Issues = slices.Clone(r.Validation.Issues)
	out.Conflicts = copyConflicts(r.Conflicts)
	out.Unresolved = copyConflicts(r.Unresolved)
	out.Remaining = copyConflicts(r.Remaining)
	if r.Resolved != nil {
		out.Resolved = make([]domain.Resolved, len(r.Resolved))
		for i, res := range r.Resolved {
			res.Conflict = copyConflict(res.Conflict)
			if res.Confidence != nil {
				v := *res.Confidence
				res.Confidence = &v
			}
			out.Resolved[i] = res
		}
	}
	if r.Changes != nil {
		changes := *r.Changes
		changes.RemovedNodes = slices.Clone(changes.RemovedNodes)
		changes.AddedNodes = slices.Clone(changes.AddedNodes)
		changes.ModifiedNodes = slices.Clone(changes.ModifiedNodes)
		changes.RemovedEdges = slices.Clone(changes.RemovedEdges)
		changes.AddedEdges = slices.Clone(changes.AddedEdges)
		out.Changes = &changes
	}
	out.Graph = r.Graph.Clone()
	return &out
}

func copyConflicts(in []domain.Conflict) []domain.Conflict {
	if in == nil {
		return nil
	}
	out := make([]domain.Conflict, len(in))
	for i, c := range in {
		out[i] = copyConflict(c)
	}
	return out
}

func copyConflict(c domain.Conflict) domain.Conflict {
	c.Nodes = slices.Clone(c.Nodes)
	c.Cycle = slices.Clone(c.Cycle)
	if c.Paths != nil {
		paths := make([][]string, len(c.Paths))
		for i, p := range c.Paths {
			paths[i] = slices.Clone(p)
		}
		c.Paths = paths
	}
	return c
}
