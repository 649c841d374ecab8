package resolver

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// closingEdge picks the edge that closes a cycle. For a closed cycle of at
// least three entries [n0, ..., nk, n0] it is nk -> n0; otherwise the edge from
// the last listed node back to the first.
func closingEdge(cycle []string) (from, to string) {
	last := len(cycle) - 1
	if len(cycle) >= 3 && cycle[0] == cycle[last] {
		return cycle[last-1], cycle[last]
	}
	return cycle[last], cycle[0]
}

func (r *Resolver) breakCycle(p *pass, c domain.Conflict) error {
	cycle := c.Cycle
	if len(cycle) == 0 {
		cycle = c.Nodes
	}
	if len(cycle) == 0 {
		return fmt.Errorf("empty cycle: %w", domain.ErrEdgeNotFound)
	}

	from, to := closingEdge(cycle)
	if !p.graph.Has(from) {
		return fmt.Errorf("node %q: %w", from, domain.ErrNodeNotFound)
	}
	if p.graph.RemoveEdges(from, to) == 0 {
		return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrEdgeNotFound)
	}

	r.logger.Debug("cycle broken", "from", from, "to", to)
	p.resolve(c, fmt.Sprintf("Removed edge %s -> %s to break the cycle", from, to), nil)
	return nil
}

// redundantRemovals returns the nodes a redundancy repair deletes: the second
// half of the implicated nodes, minus anything in the first half and anything
// on the retained path.
func redundantRemovals(c domain.Conflict) []string {
	split := (len(c.Nodes) + 1) / 2
	keep := make(map[string]bool)
	for _, id := range c.Nodes[:split] {
		keep[id] = true
	}
	if len(c.Paths) > 0 {
		for _, id := range c.Paths[0] {
			keep[id] = true
		}
	}
	if c.Outcome != "" {
		keep[c.Outcome] = true
	}

	var out []string
	for _, id := range c.Nodes[split:] {
		if !keep[id] {
			keep[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (r *Resolver) pruneRedundant(p *pass, c domain.Conflict) error {
	candidates := redundantRemovals(c)
	if len(candidates) == 0 {
		return fmt.Errorf("no removable nodes among %v", c.Nodes)
	}

	var present []string
	alreadyGone := true
	for _, id := range candidates {
		switch {
		case p.graph.Has(id):
			present = append(present, id)
		case !p.removed[id]:
			alreadyGone = false
		}
	}
	if len(present) == 0 {
		if alreadyGone {
			p.resolve(c, "Duplicate path already removed earlier in this pass", nil)
			return nil
		}
		return fmt.Errorf("nodes %v: %w", candidates, domain.ErrNodeNotFound)
	}

	removed := p.graph.RemoveNodes(present...)
	for _, id := range removed {
		p.removed[id] = true
	}
	r.logger.Debug("redundant path pruned", "removed", removed)
	p.resolve(c, "Removed redundant nodes: "+strings.Join(removed, ", "), nil)
	return nil
}
