package arbor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/metrics"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mixedGraph carries a cycle, a contradiction and a dangling edge.
func mixedGraph(t *testing.T) *domain.Graph {
	return testutils.Graph(t,
		testutils.Question("start", "Age over 18", "yes", "q1", "no", "q2"),
		testutils.Question("q1", "Has diabetes", "yes", "approve", "loop", "q3"),
		testutils.Question("q2", "has diabetes", "yes", "deny"),
		testutils.Question("q3", "Smoker", "back", "q1", "no", "approve"),
		testutils.Outcome("approve", "APPROVED"),
		testutils.Outcome("deny", "DENIED"),
	)
}

func contradictionFix() *domain.Resolution {
	return &domain.Resolution{
		ModifiedNodes: []domain.Modification{
			{NodeID: "q2", Type: domain.ModUpdateCondition, OldValue: "has diabetes", NewValue: "Has type 1 diabetes"},
		},
		ConfidenceScore: 0.9,
	}
}

func TestEngine_Validate(t *testing.T) {
	g := mixedGraph(t)
	g.Nodes["q2"].Connections = append(g.Nodes["q2"].Connections, domain.Connection{Label: "maybe", Target: "ghost"})

	res := arbor.New().Validate(context.Background(), g)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Messages(), "Node q2 references non-existent node ghost")
}

func TestEngine_Analyze(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := arbor.New(arbor.WithStore(store))

	g := mixedGraph(t)
	report, err := engine.Analyze(ctx, "loan", g)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "loan", report.DocumentID)
	assert.False(t, report.Validation.Valid)
	assert.Contains(t, report.Validation.Messages(), "Circular reference detected starting from node start")

	kinds := map[domain.ConflictKind]int{}
	for _, c := range report.Conflicts {
		kinds[c.Kind]++
	}
	assert.Equal(t, 1, kinds[domain.ConflictCircularDependency])
	assert.Equal(t, 1, kinds[domain.ConflictContradictoryPaths])
	assert.Nil(t, report.Resolved, "analysis never resolves")
	assert.Equal(t, 6, report.NodesBefore)

	loaded, err := engine.Report(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, loaded.ID)
	assert.Len(t, loaded.Conflicts, len(report.Conflicts))
}

func TestEngine_Repair(t *testing.T) {
	ctx := context.Background()
	advisor := memory.NewAdvisor().OnNode("q2", contradictionFix())
	engine := arbor.New(arbor.WithAdvisor(advisor))

	g := mixedGraph(t)
	report, err := engine.Repair(ctx, "loan", g)
	require.NoError(t, err)

	assert.False(t, report.RolledBack)
	assert.Len(t, report.Resolved, 2, "cycle and contradiction")
	assert.Empty(t, report.Unresolved)
	assert.Empty(t, report.Remaining)

	require.NotNil(t, report.Graph)
	assert.False(t, report.Graph.HasEdge("q3", "q1"), "closing edge removed")
	assert.Equal(t, "Has type 1 diabetes", report.Graph.Nodes["q2"].Condition)

	require.NotNil(t, report.Changes)
	assert.Equal(t, []string{"q2"}, report.Changes.ModifiedNodes)
	assert.Equal(t, []domain.Edge{{From: "q3", Label: "back", To: "q1"}}, report.Changes.RemovedEdges)

	assert.True(t, g.HasEdge("q3", "q1"), "caller graph is untouched")
	assert.Equal(t, "has diabetes", g.Nodes["q2"].Condition)

	require.Len(t, advisor.Requests(), 1)
	assert.Equal(t, domain.ConflictContradictoryPaths, advisor.Requests()[0].Conflict.Kind)
}

func TestEngine_Repair_WithoutAdvisor(t *testing.T) {
	report, err := arbor.New().Repair(context.Background(), "", mixedGraph(t))
	require.NoError(t, err)

	require.Len(t, report.Resolved, 1)
	assert.Equal(t, domain.ConflictCircularDependency, report.Resolved[0].Conflict.Kind)
	require.Len(t, report.Unresolved, 1)
	assert.Equal(t, domain.ConflictContradictoryPaths, report.Unresolved[0].Kind)
	require.Len(t, report.Remaining, 1)
	assert.False(t, report.Clean())
}

func TestEngine_Repair_RollsBackOnPanic(t *testing.T) {
	advisor := ports.AdvisorFunc(func(ctx context.Context, req ports.RepairRequest) (*domain.Resolution, error) {
		panic("advisor exploded")
	})
	engine := arbor.New(arbor.WithAdvisor(advisor))

	g := mixedGraph(t)
	report, err := engine.Repair(context.Background(), "loan", g)
	require.NoError(t, err)

	assert.True(t, report.RolledBack)
	assert.Empty(t, report.Resolved)
	assert.Len(t, report.Unresolved, len(report.Conflicts))
	assert.Nil(t, report.Changes, "rolled back graph is unchanged")
	assert.True(t, report.Graph.HasEdge("q3", "q1"))
	assert.Len(t, report.Remaining, len(report.Conflicts))
}

func TestEngine_Repair_MinConfidence(t *testing.T) {
	fix := contradictionFix()
	fix.ConfidenceScore = 0.4
	engine := arbor.New(
		arbor.WithAdvisor(memory.NewAdvisor().OnNode("q2", fix)),
		arbor.WithMinConfidence(0.5),
	)

	report, err := engine.Repair(context.Background(), "", mixedGraph(t))
	require.NoError(t, err)
	require.Len(t, report.Unresolved, 1)
	assert.Equal(t, domain.ConflictContradictoryPaths, report.Unresolved[0].Kind)
}

type recordingLocker struct {
	keys     []string
	unlocked int
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(ctx context.Context) error {
		l.unlocked++
		return nil
	}, nil
}

func TestEngine_Repair_Locks(t *testing.T) {
	locker := &recordingLocker{}
	engine := arbor.New(arbor.WithLocker(locker, time.Second))

	_, err := engine.Repair(context.Background(), "loan", mixedGraph(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"loan"}, locker.keys)
	assert.Equal(t, 1, locker.unlocked)

	_, err = engine.Repair(context.Background(), "", mixedGraph(t))
	require.NoError(t, err)
	assert.Len(t, locker.keys, 1, "anonymous graphs are not locked")

	locker.err = errors.New("busy")
	_, err = engine.Repair(context.Background(), "loan", mixedGraph(t))
	assert.ErrorContains(t, err, "busy")
}

type failingStore struct {
	*memory.Store
}

func (failingStore) Save(ctx context.Context, id string, report *domain.Report) error {
	return errors.New("disk full")
}

func TestEngine_PersistFailure(t *testing.T) {
	reg := metrics.NewRegistry()
	engine := arbor.New(arbor.WithStore(failingStore{memory.NewStore()}), arbor.WithMetrics(reg))

	_, err := engine.Analyze(context.Background(), "loan", mixedGraph(t))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ReportsPersisted.WithLabelValues("error")))
}

func TestEngine_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	advisor := memory.NewAdvisor().OnNode("q2", contradictionFix())
	engine := arbor.New(arbor.WithAdvisor(advisor), arbor.WithMetrics(reg))

	_, err := engine.Repair(context.Background(), "loan", mixedGraph(t))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ValidationsTotal.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ConflictsDetected.WithLabelValues("circular_dependency", "critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ConflictsResolved.WithLabelValues("contradictory_paths", "resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.AdvisorRequestsTotal.WithLabelValues("contradictory_paths", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ReportsPersisted.WithLabelValues("ok")))
}

func TestEngine_NilGraph(t *testing.T) {
	engine := arbor.New()
	_, err := engine.Analyze(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyGraph)
	_, err = engine.Repair(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyGraph)
}

func TestEngine_ReportNotFound(t *testing.T) {
	_, err := arbor.New().Report(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}
