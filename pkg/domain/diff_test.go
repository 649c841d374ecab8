package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	before := NewGraph(
		q("a", "A?", "yes", "b", "no", "c"),
		q("b", "B?", "yes", "c"),
		o("c", "OK"),
	)

	tests := []struct {
		name   string
		mutate func(g *Graph)
		want   *GraphDiff
	}{
		{
			name:   "No Changes",
			mutate: func(*Graph) {},
			want:   nil,
		},
		{
			name:   "Removed Node",
			mutate: func(g *Graph) { g.RemoveNodes("b") },
			want: &GraphDiff{
				RemovedNodes: []string{"b"},
				RemovedEdges: []Edge{{From: "a", Label: "yes", To: "b"}, {From: "b", Label: "yes", To: "c"}},
			},
		},
		{
			name: "Modified And Added",
			mutate: func(g *Graph) {
				g.Nodes["a"].Condition = "A2?"
				g.Nodes["d"] = o("d", "NO")
				g.SetConnection("b", "no", "d")
			},
			want: &GraphDiff{
				AddedNodes:    []string{"d"},
				ModifiedNodes: []string{"a"},
				AddedEdges:    []Edge{{From: "b", Label: "no", To: "d"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := before.Clone()
			tt.mutate(after)
			assert.Equal(t, tt.want, Diff(before, after))
		})
	}
}

func TestDiff_FromNil(t *testing.T) {
	g := NewGraph(q("a", "A?", "yes", "b"), o("b", "OK"))
	d := Diff(nil, g)
	assert.Equal(t, []string{"a", "b"}, d.AddedNodes)
	assert.Len(t, d.AddedEdges, 1)
}

func TestDiffSerialization(t *testing.T) {
	d := &GraphDiff{RemovedEdges: []Edge{{From: "n4", Label: "loop", To: "n3"}}}
	b, err := json.Marshal(d)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"removed_edges":[{"from":"n4","condition":"loop","to":"n3"}]}`, string(b))
}
