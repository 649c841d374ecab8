package analysis

import (
	"testing"

	"github.com/aretw0/arbor/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestAllPaths(t *testing.T) {
	g := testutils.Graph(t,
		testutils.Question("s", "s", "left", "a", "right", "b"),
		testutils.Question("a", "a", "next", "e", "loop", "s"),
		testutils.Question("b", "b", "next", "e", "side", "dead"),
		testutils.Question("dead", "d", "next", "dead"),
		testutils.Outcome("e", "OK"),
	)

	assert.Equal(t, [][]string{{"s", "a", "e"}, {"s", "b", "e"}}, AllPaths(g, "s", "e"))
	assert.Equal(t, [][]string{{"a", "e"}, {"a", "s", "b", "e"}}, AllPaths(g, "a", "e"))
	assert.Equal(t, [][]string{{"e"}}, AllPaths(g, "e", "e"))
	assert.Nil(t, AllPaths(g, "e", "s"))
	assert.Nil(t, AllPaths(g, "missing", "e"))
	assert.Len(t, AllPathsLimit(g, "s", "e", 1), 1)
}
