package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisor_Scripted(t *testing.T) {
	byKind := &domain.Resolution{ConfidenceScore: 0.5, RemovedConnections: []string{"a:yes"}}
	byNode := &domain.Resolution{ConfidenceScore: 0.9, ModifiedNodes: []domain.Modification{
		{NodeID: "q2", Type: domain.ModUpdateCondition, NewValue: "Has type 2 diabetes"},
	}}
	advisor := memory.NewAdvisor().
		OnKind(domain.ConflictContradictoryPaths, byKind).
		OnNode("q2", byNode)
	ctx := context.Background()

	res, err := advisor.Propose(ctx, ports.RepairRequest{Conflict: domain.NewContradiction("q1", "q3", "x")})
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.ConfidenceScore)

	res, err = advisor.Propose(ctx, ports.RepairRequest{Conflict: domain.NewContradiction("q2", "q1", "x")})
	require.NoError(t, err)
	assert.Equal(t, 0.9, res.ConfidenceScore)

	// Returned resolutions are copies.
	res.ModifiedNodes[0].NewValue = "mutated"
	res, err = advisor.Propose(ctx, ports.RepairRequest{Conflict: domain.NewContradiction("q2", "q1", "x")})
	require.NoError(t, err)
	assert.Equal(t, "Has type 2 diabetes", res.ModifiedNodes[0].NewValue)

	assert.Len(t, advisor.Requests(), 3)
}

func TestAdvisor_Unanswered(t *testing.T) {
	advisor := memory.NewAdvisor()
	_, err := advisor.Propose(context.Background(), ports.RepairRequest{Conflict: domain.NewCircularDependency([]string{"a", "a"})})
	assert.ErrorIs(t, err, domain.ErrNoAdvisor)

	boom := errors.New("boom")
	advisor.FailWith(boom)
	_, err = advisor.Propose(context.Background(), ports.RepairRequest{})
	assert.ErrorIs(t, err, boom)
}

func TestAdvisor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := memory.NewAdvisor().Propose(ctx, ports.RepairRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
