package arbor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/analysis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/metrics"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/resolver"
	"github.com/aretw0/arbor/pkg/traverse"
	"github.com/google/uuid"
)

// Version is the release of the arbor engine.
const Version = "0.3.0"

// DefaultLockTTL bounds a document lock when WithLocker is given no TTL.
const DefaultLockTTL = 30 * time.Second

// Engine is the high-level entry point for the Arbor library.
// It runs the structural validator, the conflict detectors and the resolver,
// and persists one report per run.
type Engine struct {
	traversal     traverse.Config
	validator     *validator.Validator
	advisor       ports.RepairAdvisor
	store         ports.ReportStore
	locker        ports.DistributedLocker
	lockTTL       time.Duration
	metrics       *metrics.Registry
	logger        *slog.Logger
	minConfidence float64

	now   func() time.Time
	newID func() string
}

var _ ports.Engine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithAdvisor sets the collaborator consulted for contradictory and
// overlapping conflicts. Without one those conflicts stay unresolved.
func WithAdvisor(a ports.RepairAdvisor) Option {
	return func(e *Engine) {
		e.advisor = a
	}
}

// WithStore sets where reports are persisted (default: in memory).
func WithStore(s ports.ReportStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker serializes repairs of the same document across replicas.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = l
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// WithMetrics records runs, advisor calls and report writes in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTraversalConfig bounds the traversals run by the structural validator.
func WithTraversalConfig(cfg traverse.Config) Option {
	return func(e *Engine) {
		e.traversal = cfg
	}
}

// WithMinConfidence rejects advisor resolutions scoring below threshold.
func WithMinConfidence(threshold float64) Option {
	return func(e *Engine) {
		e.minConfidence = threshold
	}
}

// New initializes a new Arbor Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		traversal: traverse.DefaultConfig(),
		lockTTL:   DefaultLockTTL,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.advisor != nil && e.metrics != nil {
		e.advisor = metrics.InstrumentAdvisor(e.advisor, e.metrics)
	}
	e.validator = validator.New(e.traversal, traverse.WithLogger(e.logger))
	return e
}

// Store returns the report store used by the engine.
func (e *Engine) Store() ports.ReportStore {
	return e.store
}

// Validate runs the structural pass only.
func (e *Engine) Validate(ctx context.Context, g *domain.Graph) domain.ValidationResult {
	result := e.validator.Validate(g)
	if e.metrics != nil {
		e.metrics.RecordValidation(result)
	}
	return result
}

// Analyze validates g and runs every conflict detector. The graph is not
// modified. The report is persisted before it is returned.
func (e *Engine) Analyze(ctx context.Context, documentID string, g *domain.Graph) (*domain.Report, error) {
	if g == nil {
		return nil, domain.ErrEmptyGraph
	}
	start := time.Now()
	report := e.analyze(documentID, g)

	e.logger.Info("graph analyzed",
		"report", report.ID, "document", documentID,
		"valid", report.Validation.Valid, "conflicts", len(report.Conflicts))
	if e.metrics != nil {
		e.metrics.RecordRun("analyze", report, time.Since(start))
	}
	if err := e.persist(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Repair analyzes g and resolves what it can on a copy. The caller's graph is
// never mutated; the repaired graph is returned in Report.Graph. A panic in
// the resolution pass rolls back to the unrepaired graph and reports every
// conflict unresolved.
func (e *Engine) Repair(ctx context.Context, documentID string, g *domain.Graph) (*domain.Report, error) {
	if g == nil {
		return nil, domain.ErrEmptyGraph
	}
	if e.locker != nil && documentID != "" {
		unlock, err := e.locker.Lock(ctx, documentID, e.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock document %s: %w", documentID, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("failed to release document lock", "document", documentID, "error", err)
			}
		}()
	}

	start := time.Now()
	report := e.analyze(documentID, g)

	before := g.Clone()
	result, err := e.resolve(ctx, before, report.Conflicts)
	if err != nil {
		e.logger.Error("resolution pass aborted, rolled back", "document", documentID, "error", err)
		report.RolledBack = true
		report.Resolved = []domain.Resolved{}
		report.Unresolved = append([]domain.Conflict{}, report.Conflicts...)
		report.Graph = before
	} else {
		report.Resolved = nonNil(result.Resolved)
		report.Unresolved = nonNilConflicts(result.Unresolved)
		report.Graph = result.Graph
	}

	report.Remaining = nonNilConflicts(analysis.DetectAll(report.Graph))
	report.Changes = domain.Diff(before, report.Graph)
	report.NodesAfter = report.Graph.Len()

	e.logger.Info("graph repaired",
		"report", report.ID, "document", documentID,
		"resolved", len(report.Resolved), "unresolved", len(report.Unresolved),
		"remaining", len(report.Remaining), "rolled_back", report.RolledBack)
	if e.metrics != nil {
		e.metrics.RecordRun("repair", report, time.Since(start))
	}
	if err := e.persist(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Report returns a previously persisted report.
func (e *Engine) Report(ctx context.Context, id string) (*domain.Report, error) {
	return e.store.Load(ctx, id)
}

func (e *Engine) analyze(documentID string, g *domain.Graph) *domain.Report {
	validation := e.validator.Validate(g)
	return &domain.Report{
		ID:          e.newID(),
		DocumentID:  documentID,
		CreatedAt:   e.now().UTC(),
		Validation:  validation,
		Conflicts:   nonNilConflicts(analysis.DetectAll(g)),
		NodesBefore: g.Len(),
		NodesAfter:  g.Len(),
	}
}

// errResolverPanic marks a recovered panic in the resolution pass.
var errResolverPanic = errors.New("resolver panicked")

func (e *Engine) resolve(ctx context.Context, g *domain.Graph, conflicts []domain.Conflict) (result *resolver.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", errResolverPanic, r)
		}
	}()

	opts := []resolver.Option{
		resolver.WithLogger(e.logger),
		resolver.WithMinConfidence(e.minConfidence),
	}
	if e.advisor != nil {
		opts = append(opts, resolver.WithAdvisor(e.advisor))
	}
	return resolver.New(opts...).Resolve(ctx, g, conflicts), nil
}

func (e *Engine) persist(ctx context.Context, report *domain.Report) error {
	err := e.store.Save(ctx, report.ID, report)
	if e.metrics != nil {
		e.metrics.RecordPersist(err)
	}
	if err != nil {
		return fmt.Errorf("failed to persist report %s: %w", report.ID, err)
	}
	return nil
}

func nonNil(in []domain.Resolved) []domain.Resolved {
	if in == nil {
		return []domain.Resolved{}
	}
	return in
}

func nonNilConflicts(in []domain.Conflict) []domain.Conflict {
	if in == nil {
		return []domain.Conflict{}
	}
	return in
}
