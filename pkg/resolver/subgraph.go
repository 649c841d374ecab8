package resolver

import "github.com/aretw0/arbor/pkg/domain"

// Subgraph extracts the context an advisor needs for c: the implicated nodes,
// the contradicted peer, every question sharing the contradicted predicate,
// and the direct parents and children of all of these.
func Subgraph(g *domain.Graph, c domain.Conflict) *domain.Graph {
	core := make(map[string]bool)
	for _, id := range c.Nodes {
		core[id] = true
	}
	if c.Peer != "" {
		core[c.Peer] = true
	}
	if c.Kind == domain.ConflictContradictoryPaths {
		preds := make(map[string]bool)
		for id := range core {
			if n, ok := g.Node(id); ok {
				preds[domain.NormalizeText(n.Predicate())] = true
			}
		}
		for _, id := range g.IDs() {
			n := g.Nodes[id]
			if n.IsQuestion() && preds[domain.NormalizeText(n.Predicate())] {
				core[id] = true
			}
		}
	}

	keep := make(map[string]bool, len(core))
	for id := range core {
		if !g.Has(id) {
			continue
		}
		keep[id] = true
		for _, child := range g.Children(id) {
			keep[child] = true
		}
	}
	for _, id := range g.IDs() {
		for _, child := range g.Children(id) {
			if core[child] {
				keep[id] = true
			}
		}
	}

	sub := &domain.Graph{Nodes: make(map[string]*domain.Node, len(keep))}
	for id := range keep {
		sub.Nodes[id] = g.Nodes[id].Clone()
	}
	return sub
}
