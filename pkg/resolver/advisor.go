package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/internal/codec"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

func (r *Resolver) consultAdvisor(ctx context.Context, p *pass, c domain.Conflict) error {
	if r.advisor == nil {
		return domain.ErrNoAdvisor
	}
	for _, id := range c.Nodes {
		if !p.graph.Has(id) {
			return fmt.Errorf("implicated node %q: %w", id, domain.ErrNodeNotFound)
		}
	}

	sub := Subgraph(p.graph, c)
	rendered, err := codec.Compact(sub)
	if err != nil {
		return err
	}

	res, err := r.advisor.Propose(ctx, ports.RepairRequest{Conflict: c, Subgraph: sub, Rendered: rendered})
	if err != nil {
		return fmt.Errorf("advisor: %w", err)
	}
	if err := ValidateResolution(res); err != nil {
		return err
	}
	if res.ConfidenceScore < r.minConfidence {
		return fmt.Errorf("%w: confidence %.2f below %.2f", domain.ErrUnusableResolution, res.ConfidenceScore, r.minConfidence)
	}

	// Apply to a copy so a partial failure leaves the pass graph untouched.
	trial := p.graph.Clone()
	added, err := Apply(trial, res, p.removed)
	if err != nil {
		return err
	}
	p.graph = trial

	confidence := res.ConfidenceScore
	action := fmt.Sprintf("Applied advisor resolution: %d modifications, %d new nodes, %d removed connections",
		len(res.ModifiedNodes), len(added), len(res.RemovedConnections))
	r.logger.Debug("advisor resolution applied", "kind", c.Kind, "nodes", c.Nodes, "confidence", confidence)
	p.resolve(c, action, &confidence)
	return nil
}

// Apply mutates g according to res. New nodes are inserted first, then node
// modifications run, then removed connections are deleted. Ids in removed may
// not be reused by new nodes. Every connection added must target an existing
// node. Apply stops at the first failure; callers apply to a copy.
func Apply(g *domain.Graph, res *domain.Resolution, removed map[string]bool) ([]string, error) {
	if res.Empty() {
		return nil, fmt.Errorf("%w: no changes proposed", domain.ErrUnusableResolution)
	}

	// 1. New nodes
	var added []string
	for _, nn := range res.NewNodes {
		if g.Has(nn.ID) || removed[nn.ID] {
			return nil, fmt.Errorf("%w: node id %q is already in use", domain.ErrUnusableResolution, nn.ID)
		}
		g.Nodes[nn.ID] = nn.ToNode()
		added = append(added, nn.ID)
	}

	// 2. Modifications
	for _, m := range res.ModifiedNodes {
		if err := modify(g, m); err != nil {
			return nil, err
		}
	}

	// 3. Removed connections
	for _, ref := range res.RemovedConnections {
		nodeID, label, ok := strings.Cut(ref, ":")
		if !ok {
			return nil, fmt.Errorf("%w: malformed connection %q", domain.ErrUnusableResolution, ref)
		}
		if !g.RemoveConnection(nodeID, label) {
			return nil, fmt.Errorf("connection %q: %w", ref, domain.ErrEdgeNotFound)
		}
	}

	// 4. Inserted nodes must not dangle
	for _, id := range added {
		for _, c := range g.Nodes[id].Connections {
			if !g.Has(c.Target) {
				return nil, fmt.Errorf("%w: new node %q targets unknown node %q", domain.ErrUnusableResolution, id, c.Target)
			}
		}
	}
	return added, nil
}

func modify(g *domain.Graph, m domain.Modification) error {
	n, ok := g.Node(m.NodeID)
	if !ok {
		return fmt.Errorf("modification target %q: %w", m.NodeID, domain.ErrNodeNotFound)
	}

	switch m.Type {
	case domain.ModUpdateCondition:
		n.Condition = m.NewValue
	case domain.ModUpdateText:
		n.QuestionText = m.NewValue
	case domain.ModAddConnection:
		label, target, ok := strings.Cut(m.NewValue, ":")
		if !ok || label == "" || target == "" {
			return fmt.Errorf("%w: add_connection expects \"label:target\", got %q", domain.ErrUnusableResolution, m.NewValue)
		}
		if !g.Has(target) {
			return fmt.Errorf("%w: connection %q targets unknown node %q", domain.ErrUnusableResolution, label, target)
		}
		g.SetConnection(m.NodeID, label, target)
	case domain.ModRemoveConnection:
		label := m.NewValue
		if label == "" {
			label = m.OldValue
		}
		if g.RemoveConnection(m.NodeID, label) {
			return nil
		}
		if prefix, _, ok := strings.Cut(label, ":"); ok && g.RemoveConnection(m.NodeID, prefix) {
			return nil
		}
		return fmt.Errorf("connection %s:%s: %w", m.NodeID, label, domain.ErrEdgeNotFound)
	default:
		return fmt.Errorf("%w: unknown modification type %q", domain.ErrUnusableResolution, m.Type)
	}
	return nil
}
