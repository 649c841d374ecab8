package dsl

import "github.com/aretw0/arbor/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Ask sets the prompt of a question node.
func (n *NodeBuilder) Ask(question string) *NodeBuilder {
	n.node.Kind = domain.KindQuestion
	n.node.QuestionText = question
	return n
}

// When sets the predicate evaluated at a question node.
func (n *NodeBuilder) When(condition string) *NodeBuilder {
	n.node.Kind = domain.KindQuestion
	n.node.Condition = condition
	return n
}

// Branch adds a labeled connection to the target node.
func (n *NodeBuilder) Branch(label string, target string) *NodeBuilder {
	n.node.Connections = append(n.node.Connections, domain.Connection{
		Label:  label,
		Target: target,
	})
	return n
}

// Decide marks the node as an outcome carrying the given decision label.
// Outcomes have no connections, so any added earlier are dropped.
func (n *NodeBuilder) Decide(decision string) *NodeBuilder {
	n.node.Kind = domain.KindOutcome
	n.node.Decision = decision
	n.node.Connections = nil
	return n
}

// Meta adds a metadata entry to the node.
func (n *NodeBuilder) Meta(key, value string) *NodeBuilder {
	if n.node.Metadata == nil {
		n.node.Metadata = make(map[string]string)
	}
	n.node.Metadata[key] = value
	return n
}

// Build returns a copy of the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return *n.node.Clone()
}
