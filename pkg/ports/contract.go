package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractReport(id string) *domain.Report {
	return &domain.Report{
		ID:         id,
		DocumentID: "doc-" + id,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Validation: domain.ValidationResult{Valid: true, Issues: []domain.Issue{}},
		Conflicts: []domain.Conflict{
			domain.NewCircularDependency([]string{"n3", "n4", "n3"}),
		},
		NodesBefore: 4,
		NodesAfter:  4,
		Graph: domain.NewGraph(
			&domain.Node{ID: "n3", Kind: domain.KindQuestion, Condition: "x", Connections: []domain.Connection{{Label: "go", Target: "n4"}}},
			&domain.Node{ID: "n4", Kind: domain.KindOutcome, Decision: "APPROVED"},
		),
	}
}

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	reportID := "contract-test-report-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a report
		report := contractReport(reportID)

		// 2. Save
		err := store.Save(ctx, reportID, report)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, reportID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.DocumentID, loaded.DocumentID)
		assert.True(t, report.CreatedAt.Equal(loaded.CreatedAt))
		require.Len(t, loaded.Conflicts, 1)
		assert.Equal(t, domain.ConflictCircularDependency, loaded.Conflicts[0].Kind)
		assert.Equal(t, []string{"n3", "n4", "n3"}, loaded.Conflicts[0].Cycle)
		require.NotNil(t, loaded.Graph)
		assert.Equal(t, "n4", loaded.Graph.Nodes["n3"].Connections[0].Target)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, reportID)
		require.NoError(t, err)
		loaded.DocumentID = "mutated"

		again, err := store.Load(ctx, reportID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.DocumentID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+reportID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, reportID, contractReport(reportID))
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, reportID)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, reportID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 reports
		id1 := reportID + "-1"
		id2 := reportID + "-2"
		_ = store.Save(ctx, id1, contractReport(id1))
		_ = store.Save(ctx, id2, contractReport(id2))

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
