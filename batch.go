package arbor

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/internal/codec"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds batch runs when no limit is given.
const DefaultConcurrency = 4

// BatchResult is the outcome for one document of a batch run.
// Err is set when the document could not be read, decoded or persisted.
type BatchResult struct {
	DocumentID string
	Report     *domain.Report
	Err        error
}

// AnalyzeAll analyzes every document of loader with at most concurrency
// documents in flight. Results follow the loader's document order.
func (e *Engine) AnalyzeAll(ctx context.Context, loader ports.DocumentLoader, concurrency int) ([]BatchResult, error) {
	return e.batch(ctx, loader, concurrency, e.Analyze)
}

// RepairAll repairs every document of loader with at most concurrency
// documents in flight. Documents are independent; a failure in one does not
// stop the others. Only a canceled context aborts the batch.
func (e *Engine) RepairAll(ctx context.Context, loader ports.DocumentLoader, concurrency int) ([]BatchResult, error) {
	return e.batch(ctx, loader, concurrency, e.Repair)
}

type runFunc func(ctx context.Context, documentID string, g *domain.Graph) (*domain.Report, error)

func (e *Engine) batch(ctx context.Context, loader ports.DocumentLoader, concurrency int, run runFunc) ([]BatchResult, error) {
	ids, err := loader.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	results := make([]BatchResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, id := range ids {
		results[i].DocumentID = id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i].Report, results[i].Err = e.runDocument(gctx, loader, id, run)
			if results[i].Err != nil {
				e.logger.Warn("batch document failed", "document", id, "error", results[i].Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (e *Engine) runDocument(ctx context.Context, loader ports.DocumentLoader, id string, run runFunc) (*domain.Report, error) {
	raw, err := loader.GetDocument(id)
	if err != nil {
		return nil, err
	}
	doc, err := codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	return run(ctx, id, doc.Graph)
}
