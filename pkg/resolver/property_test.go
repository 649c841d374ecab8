package resolver

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/analysis"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRepairInvariants checks the structural repairs on arbitrary graphs.
func TestRepairInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("repairs never grow the graph or leave edges into removed nodes", prop.ForAll(
		func(seed int64, size int) bool {
			g := testutils.RandomGraph(seed, size, 2)
			conflicts := analysis.DetectAll(g)
			res := New().Resolve(context.Background(), g, conflicts)

			if res.Graph.Len() > g.Len() || res.Graph.EdgeCount() > g.EdgeCount() {
				return false
			}
			if len(res.Resolved)+len(res.Unresolved) != len(conflicts) {
				return false
			}
			for _, id := range res.Graph.IDs() {
				for _, c := range res.Graph.Nodes[id].Connections {
					if g.Has(c.Target) && !res.Graph.Has(c.Target) {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 10),
	))

	properties.Property("resolving every detected cycle leaves the graph acyclic", prop.ForAll(
		func(seed int64, size int) bool {
			g := testutils.RandomGraph(seed, size, 2)
			for i := 0; i < size*2 && analysis.HasCycle(g); i++ {
				g = New().Resolve(context.Background(), g, analysis.DetectCircularDependencies(g)).Graph
			}
			return !analysis.HasCycle(g)
		},
		gen.Int64(),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
