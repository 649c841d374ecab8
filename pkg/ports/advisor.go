package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// RepairRequest is what an advisor receives for one conflict.
type RepairRequest struct {
	Conflict domain.Conflict
	// Subgraph holds the implicated nodes and their neighbours.
	Subgraph *domain.Graph
	// Rendered is the compact JSON form of Subgraph.
	Rendered string
}

// RepairAdvisor proposes a structured repair for a semantic conflict.
// Implementations own their timeout, retry and fallback policy; the resolver
// treats any error as "this conflict stays unresolved".
type RepairAdvisor interface {
	Propose(ctx context.Context, req RepairRequest) (*domain.Resolution, error)
}

// AdvisorFunc adapts a function to RepairAdvisor.
type AdvisorFunc func(ctx context.Context, req RepairRequest) (*domain.Resolution, error)

// Propose calls f.
func (f AdvisorFunc) Propose(ctx context.Context, req RepairRequest) (*domain.Resolution, error) {
	return f(ctx, req)
}
