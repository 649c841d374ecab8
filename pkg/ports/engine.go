package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// Engine is the interface used by driving adapters (e.g., HTTP, MCP). Every call
// works on the graph it is given; nothing is shared between calls.
type Engine interface {
	// Validate runs the structural pass only.
	Validate(ctx context.Context, g *domain.Graph) domain.ValidationResult

	// Analyze validates the graph and runs every conflict detector without mutating it.
	Analyze(ctx context.Context, documentID string, g *domain.Graph) (*domain.Report, error)

	// Repair analyzes the graph, resolves what it can on a copy and reports the outcome.
	Repair(ctx context.Context, documentID string, g *domain.Graph) (*domain.Report, error)

	// Report returns a previously persisted report.
	Report(ctx context.Context, id string) (*domain.Report, error)
}
