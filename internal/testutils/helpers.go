package testutils

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/require"
)

// Question builds a question node. conns alternates label and target.
func Question(id, condition string, conns ...string) *domain.Node {
	n := &domain.Node{ID: id, Kind: domain.KindQuestion, Condition: condition}
	for i := 0; i+1 < len(conns); i += 2 {
		n.Connections = append(n.Connections, domain.Connection{Label: conns[i], Target: conns[i+1]})
	}
	return n
}

// Outcome builds an outcome node.
func Outcome(id, decision string) *domain.Node {
	return &domain.Node{ID: id, Kind: domain.KindOutcome, Decision: decision}
}

// Graph builds a graph and fails the test if two nodes share an id.
func Graph(t *testing.T, nodes ...*domain.Node) *domain.Graph {
	t.Helper()

	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		require.False(t, seen[n.ID], "duplicate node id %q in fixture", n.ID)
		seen[n.ID] = true
	}
	return domain.NewGraph(nodes...)
}

// RandomGraph builds a deterministic pseudo-random graph of size nodes. Every
// question node gets up to maxOut connections to arbitrary nodes, including
// itself and missing ids, so the result is usually cyclic and malformed.
func RandomGraph(seed int64, size, maxOut int) *domain.Graph {
	if size < 1 {
		size = 1
	}
	if maxOut < 1 {
		maxOut = 1
	}
	r := rand.New(rand.NewSource(seed))
	g := &domain.Graph{Nodes: make(map[string]*domain.Node, size)}
	for i := 0; i < size; i++ {
		id := fmt.Sprintf("n%d", i)
		if r.Intn(4) == 0 {
			g.Nodes[id] = Outcome(id, []string{"APPROVED", "DENIED", "REVIEW"}[r.Intn(3)])
			continue
		}
		n := Question(id, fmt.Sprintf("criterion %d", r.Intn(size)))
		out := 1 + r.Intn(maxOut)
		for j := 0; j < out; j++ {
			target := fmt.Sprintf("n%d", r.Intn(size+1))
			n.Connections = append(n.Connections, domain.Connection{Label: fmt.Sprintf("c%d", j), Target: target})
		}
		g.Nodes[id] = n
	}
	return g
}
