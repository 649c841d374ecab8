package domain

import "sort"

// GraphDiff summarizes the changes a repair made to a graph.
// It is designed to be serialized alongside a report.
type GraphDiff struct {
	RemovedNodes []string `json:"removed_nodes,omitempty" yaml:"removed_nodes,omitempty"`
	AddedNodes   []string `json:"added_nodes,omitempty" yaml:"added_nodes,omitempty"`
	// ModifiedNodes had their text or kind changed.
	ModifiedNodes []string `json:"modified_nodes,omitempty" yaml:"modified_nodes,omitempty"`

	RemovedEdges []Edge `json:"removed_edges,omitempty" yaml:"removed_edges,omitempty"`
	AddedEdges   []Edge `json:"added_edges,omitempty" yaml:"added_edges,omitempty"`
}

// Edge is a flattened connection.
type Edge struct {
	From  string `json:"from" yaml:"from"`
	Label string `json:"condition" yaml:"condition"`
	To    string `json:"to" yaml:"to"`
}

// Empty reports whether the diff carries no change.
func (d *GraphDiff) Empty() bool {
	return d == nil || (len(d.RemovedNodes) == 0 && len(d.AddedNodes) == 0 && len(d.ModifiedNodes) == 0 &&
		len(d.RemovedEdges) == 0 && len(d.AddedEdges) == 0)
}

// Diff calculates the difference between before and after.
// If before is nil every node and edge of after is reported as added.
func Diff(before, after *Graph) *GraphDiff {
	if after == nil {
		return nil
	}
	diff := &GraphDiff{}

	// 1. Nodes
	for _, id := range after.IDs() {
		old, ok := before.Node(id)
		if !ok {
			diff.AddedNodes = append(diff.AddedNodes, id)
			continue
		}
		n := after.Nodes[id]
		if old.Kind != n.Kind || old.Condition != n.Condition || old.QuestionText != n.QuestionText || old.Decision != n.Decision {
			diff.ModifiedNodes = append(diff.ModifiedNodes, id)
		}
	}
	for _, id := range before.IDs() {
		if !after.Has(id) {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}

	// 2. Edges
	oldEdges := edgeSet(before)
	newEdges := edgeSet(after)
	for e := range newEdges {
		if !oldEdges[e] {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for e := range oldEdges {
		if !newEdges[e] {
			diff.RemovedEdges = append(diff.RemovedEdges, e)
		}
	}
	sortEdges(diff.AddedEdges)
	sortEdges(diff.RemovedEdges)

	if diff.Empty() {
		return nil
	}
	return diff
}

func edgeSet(g *Graph) map[Edge]bool {
	set := make(map[Edge]bool)
	if g == nil {
		return set
	}
	for id, n := range g.Nodes {
		for _, c := range n.Connections {
			if c.Followable() {
				set[Edge{From: id, Label: c.Label, To: c.Target}] = true
			}
		}
	}
	return set
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].Label != edges[j].Label {
			return edges[i].Label < edges[j].Label
		}
		return edges[i].To < edges[j].To
	})
}
