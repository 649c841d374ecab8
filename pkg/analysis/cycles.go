package analysis

import (
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// DetectCycles finds cycles across the whole graph, disconnected components
// included. Each cycle is closed: its first and last ids are equal, and a
// self-loop is reported as [n, n].
//
// Algorithm: depth-first search with a "visiting" set for the active path and
// a global "done" set. A back edge into the visiting set yields the suffix of
// the current path from the repeated node onward. Roots are searched first so
// the closing edge of a reported cycle is the one that points back toward the
// entry, then every remaining node in id order.
func DetectCycles(g *domain.Graph) [][]string {
	if g.Len() == 0 {
		return nil
	}
	d := &cycleSearch{
		g:        g,
		visiting: make(map[string]bool),
		done:     make(map[string]bool),
		seen:     make(map[string]bool),
	}
	for _, id := range append(g.Roots(), g.IDs()...) {
		if !d.done[id] {
			d.dfs(id)
		}
	}
	return d.cycles
}

type cycleSearch struct {
	g        *domain.Graph
	visiting map[string]bool
	done     map[string]bool
	path     []string
	cycles   [][]string
	seen     map[string]bool
}

func (d *cycleSearch) dfs(id string) {
	d.visiting[id] = true
	d.path = append(d.path, id)

	for _, next := range d.g.Children(id) {
		switch {
		case d.visiting[next]:
			d.record(next)
		case !d.done[next]:
			d.dfs(next)
		}
	}

	d.path = d.path[:len(d.path)-1]
	delete(d.visiting, id)
	d.done[id] = true
}

// record captures path[index(start):] + start. Parallel edges produce the same
// sequence more than once; it is only reported the first time.
func (d *cycleSearch) record(start string) {
	from := 0
	for i := len(d.path) - 1; i >= 0; i-- {
		if d.path[i] == start {
			from = i
			break
		}
	}
	cycle := make([]string, 0, len(d.path)-from+1)
	cycle = append(cycle, d.path[from:]...)
	cycle = append(cycle, start)

	key := strings.Join(cycle, "\x00")
	if d.seen[key] {
		return
	}
	d.seen[key] = true
	d.cycles = append(d.cycles, cycle)
}

// HasCycle reports whether the graph contains at least one cycle.
func HasCycle(g *domain.Graph) bool {
	return len(DetectCycles(g)) > 0
}
