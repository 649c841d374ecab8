package resolver

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Result is the outcome of one resolution pass.
type Result struct {
	// Graph is the repaired copy. The graph passed to Resolve is never mutated.
	Graph      *domain.Graph
	Resolved   []domain.Resolved
	Unresolved []domain.Conflict
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAdvisor sets the collaborator consulted for contradictory and overlapping conflicts.
func WithAdvisor(a ports.RepairAdvisor) Option {
	return func(r *Resolver) {
		r.advisor = a
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMinConfidence rejects advisor resolutions scoring below threshold.
func WithMinConfidence(threshold float64) Option {
	return func(r *Resolver) {
		r.minConfidence = threshold
	}
}

// Resolver applies targeted repairs for detected conflicts.
type Resolver struct {
	advisor       ports.RepairAdvisor
	logger        *slog.Logger
	minConfidence float64
}

// New creates a Resolver. Without an advisor, contradictory and overlapping
// conflicts are always reported unresolved.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// handlerOrder is the order in which conflict kinds are handled. Structural
// repairs run first so advisors see the graph without cycles or duplicates.
var handlerOrder = []domain.ConflictKind{
	domain.ConflictCircularDependency,
	domain.ConflictRedundantPaths,
	domain.ConflictContradictoryPaths,
	domain.ConflictOverlappingConditions,
}

// pass is the mutable state of one Resolve call.
type pass struct {
	graph *domain.Graph
	// removed holds ids deleted during this pass; they may not be reused.
	removed map[string]bool
	result  *Result
}

func (p *pass) resolve(c domain.Conflict, action string, confidence *float64) {
	p.result.Resolved = append(p.result.Resolved, domain.Resolved{Conflict: c, Action: action, Confidence: confidence})
}

func (p *pass) unresolve(c domain.Conflict) {
	p.result.Unresolved = append(p.result.Unresolved, c)
}

// Resolve repairs a deep copy of g. Conflicts are grouped by kind and handled
// in a fixed order, each handler receiving the graph left by the previous one.
// A failed repair leaves the graph as it was before that conflict and moves
// the conflict to Unresolved; unknown kinds are always unresolved.
func (r *Resolver) Resolve(ctx context.Context, g *domain.Graph, conflicts []domain.Conflict) *Result {
	p := &pass{
		graph:   g.Clone(),
		removed: make(map[string]bool),
		result:  &Result{},
	}

	byKind := make(map[domain.ConflictKind][]domain.Conflict)
	var unknown []domain.Conflict
	for _, c := range conflicts {
		if !c.Kind.Known() {
			unknown = append(unknown, c)
			continue
		}
		byKind[c.Kind] = append(byKind[c.Kind], c)
	}

	for _, kind := range handlerOrder {
		for _, c := range byKind[kind] {
			var err error
			switch kind {
			case domain.ConflictCircularDependency:
				err = r.breakCycle(p, c)
			case domain.ConflictRedundantPaths:
				err = r.pruneRedundant(p, c)
			default:
				err = r.consultAdvisor(ctx, p, c)
			}
			if err != nil {
				r.logger.Warn("conflict left unresolved", "kind", c.Kind, "nodes", c.Nodes, "error", err)
				p.unresolve(c)
			}
		}
	}

	for _, c := range unknown {
		r.logger.Warn("no handler for conflict kind", "kind", c.Kind, "nodes", c.Nodes)
		p.unresolve(c)
	}

	p.result.Graph = p.graph
	return p.result
}
