package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Advisor implements ports.RepairAdvisor with canned resolutions.
// It is meant for tests and offline runs. Safe for concurrent use.
type Advisor struct {
	mu       sync.Mutex
	byKind   map[domain.ConflictKind]*domain.Resolution
	byNode   map[string]*domain.Resolution
	fallback error
	requests []ports.RepairRequest
}

// NewAdvisor creates an advisor that knows no answers yet.
// Unanswered requests fail with domain.ErrNoAdvisor.
func NewAdvisor() *Advisor {
	return &Advisor{
		byKind:   make(map[domain.ConflictKind]*domain.Resolution),
		byNode:   make(map[string]*domain.Resolution),
		fallback: domain.ErrNoAdvisor,
	}
}

// OnKind answers every conflict of the given kind with res.
func (a *Advisor) OnKind(kind domain.ConflictKind, res *domain.Resolution) *Advisor {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byKind[kind] = res
	return a
}

// OnNode answers conflicts whose first implicated node is id. It takes
// precedence over OnKind.
func (a *Advisor) OnNode(id string, res *domain.Resolution) *Advisor {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byNode[id] = res
	return a
}

// FailWith sets the error returned for unanswered requests.
func (a *Advisor) FailWith(err error) *Advisor {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fallback = err
	return a
}

// Propose returns the scripted resolution for req.
func (a *Advisor) Propose(ctx context.Context, req ports.RepairRequest) (*domain.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)

	if len(req.Conflict.Nodes) > 0 {
		if res, ok := a.byNode[req.Conflict.Nodes[0]]; ok {
			return cloneResolution(res), nil
		}
	}
	if res, ok := a.byKind[req.Conflict.Kind]; ok {
		return cloneResolution(res), nil
	}
	return nil, fmt.Errorf("no scripted answer for %s: %w", req.Conflict.Kind, a.fallback)
}

// Requests returns every request seen so far, in arrival order.
func (a *Advisor) Requests() []ports.RepairRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ports.RepairRequest, len(a.requests))
	copy(out, a.requests)
	return out
}

func cloneResolution(res *domain.Resolution) *domain.Resolution {
	if res == nil {
		return nil
	}
	out := *res
	out.ModifiedNodes = append([]domain.Modification(nil), res.ModifiedNodes...)
	out.RemovedConnections = append([]string(nil), res.RemovedConnections...)
	out.NewNodes = make([]domain.NewNode, len(res.NewNodes))
	for i, n := range res.NewNodes {
		conns := make(map[string]string, len(n.Connections))
		for k, v := range n.Connections {
			conns[k] = v
		}
		n.Connections = conns
		out.NewNodes[i] = n
	}
	return &out
}
