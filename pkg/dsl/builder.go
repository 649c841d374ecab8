package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
	start string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Start sets the explicit start node.
func (b *Builder) Start(id string) *Builder {
	b.start = id
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:   id,
			Kind: domain.KindQuestion,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Graph returns a fresh graph holding a copy of every node added so far.
func (b *Builder) Graph() *domain.Graph {
	nodes := make([]*domain.Node, 0, len(b.order))
	for _, id := range b.order {
		node := b.nodes[id].Build()
		nodes = append(nodes, &node)
	}
	g := domain.NewGraph(nodes...)
	g.StartNode = b.start
	return g
}

// Build compiles the graph into a memory.Loader holding one document.
func (b *Builder) Build(documentID string) (*memory.Loader, error) {
	loader, err := memory.NewFromGraphs(map[string]*domain.Graph{documentID: b.Graph()})
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
