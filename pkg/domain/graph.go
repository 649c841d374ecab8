package domain

import "sort"

// Graph is a decision graph keyed by node id. It may contain cycles.
type Graph struct {
	Nodes     map[string]*Node `json:"nodes" yaml:"nodes"`
	StartNode string           `json:"start_node,omitempty" yaml:"start_node,omitempty"`
}

// NewGraph builds a graph from nodes. Later duplicates replace earlier ones.
func NewGraph(nodes ...*Node) *Graph {
	g := &Graph{Nodes: make(map[string]*Node, len(nodes))}
	for _, n := range nodes {
		if n != nil {
			g.Nodes[n.ID] = n
		}
	}
	return g
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.Nodes[id]
	return n, ok
}

// Has reports whether id names a node in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// IDs returns node ids in sorted order. Every analysis iterates in this order
// so results are deterministic across runs.
func (g *Graph) IDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Referenced returns the set of ids that appear as a connection target.
func (g *Graph) Referenced() map[string]bool {
	refs := make(map[string]bool)
	if g == nil {
		return refs
	}
	for _, n := range g.Nodes {
		for _, c := range n.Connections {
			if c.Followable() {
				refs[c.Target] = true
			}
		}
	}
	return refs
}

// Roots returns nodes not referenced by any other node, in id order.
// When every node is referenced (a pure cycle) the first id is returned.
func (g *Graph) Roots() []string {
	ids := g.IDs()
	if len(ids) == 0 {
		return nil
	}
	refs := g.Referenced()
	var roots []string
	for _, id := range ids {
		if !refs[id] {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		return ids[:1]
	}
	return roots
}

// Start returns the explicit start node when it exists, otherwise the first root.
func (g *Graph) Start() string {
	if g == nil {
		return ""
	}
	if g.StartNode != "" && g.Has(g.StartNode) {
		return g.StartNode
	}
	roots := g.Roots()
	if len(roots) == 0 {
		return ""
	}
	return roots[0]
}

// Children returns the existing targets of id's connections, in connection order.
// Dangling and invalid targets are skipped.
func (g *Graph) Children(id string) []string {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	var out []string
	for _, c := range n.Connections {
		if c.Followable() && g.Has(c.Target) {
			out = append(out, c.Target)
		}
	}
	return out
}

// HasEdge reports whether from has at least one connection to to.
func (g *Graph) HasEdge(from, to string) bool {
	n, ok := g.Node(from)
	if !ok {
		return false
	}
	for _, c := range n.Connections {
		if c.Followable() && c.Target == to {
			return true
		}
	}
	return false
}

// RemoveEdges deletes every connection from -> to and returns how many were removed.
func (g *Graph) RemoveEdges(from, to string) int {
	n, ok := g.Node(from)
	if !ok {
		return 0
	}
	kept := n.Connections[:0]
	removed := 0
	for _, c := range n.Connections {
		if c.Followable() && c.Target == to {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	n.Connections = kept
	return removed
}

// RemoveConnection deletes the connection with the given label from a node.
func (g *Graph) RemoveConnection(from, label string) bool {
	n, ok := g.Node(from)
	if !ok {
		return false
	}
	for i, c := range n.Connections {
		if c.Label == label {
			n.Connections = append(n.Connections[:i], n.Connections[i+1:]...)
			return true
		}
	}
	return false
}

// SetConnection points label at target, replacing an existing connection with the
// same label or appending a new one.
func (g *Graph) SetConnection(from, label, target string) bool {
	n, ok := g.Node(from)
	if !ok {
		return false
	}
	for i, c := range n.Connections {
		if c.Label == label {
			n.Connections[i] = Connection{Label: label, Target: target}
			return true
		}
	}
	n.Connections = append(n.Connections, Connection{Label: label, Target: target})
	return true
}

// RemoveNodes deletes the given nodes and every surviving connection into them.
// It returns the ids that were actually present.
func (g *Graph) RemoveNodes(ids ...string) []string {
	if g == nil {
		return nil
	}
	gone := make(map[string]bool, len(ids))
	var removed []string
	for _, id := range ids {
		if _, ok := g.Nodes[id]; ok && !gone[id] {
			gone[id] = true
			removed = append(removed, id)
			delete(g.Nodes, id)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	for _, n := range g.Nodes {
		kept := n.Connections[:0]
		for _, c := range n.Connections {
			if c.Followable() && gone[c.Target] {
				continue
			}
			kept = append(kept, c)
		}
		n.Connections = kept
	}
	if gone[g.StartNode] {
		g.StartNode = ""
	}
	return removed
}

// Clone returns a deep copy. Mutating the copy never affects g.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		Nodes:     make(map[string]*Node, len(g.Nodes)),
		StartNode: g.StartNode,
	}
	for id, n := range g.Nodes {
		out.Nodes[id] = n.Clone()
	}
	return out
}

// EdgeCount returns the number of followable connections.
func (g *Graph) EdgeCount() int {
	total := 0
	if g == nil {
		return 0
	}
	for _, n := range g.Nodes {
		for _, c := range n.Connections {
			if c.Followable() {
				total++
			}
		}
	}
	return total
}
