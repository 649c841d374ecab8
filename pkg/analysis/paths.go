package analysis

import "github.com/aretw0/arbor/pkg/domain"

// DefaultPathLimit caps the number of paths AllPaths returns for one pair.
const DefaultPathLimit = 1024

// AllPaths returns the simple paths from start to end, up to DefaultPathLimit.
func AllPaths(g *domain.Graph, start, end string) [][]string {
	return AllPathsLimit(g, start, end, DefaultPathLimit)
}

// AllPathsLimit returns the simple paths from start to end. A node never
// repeats within a path, so enumeration terminates on cyclic graphs. Paths are
// produced in connection order; limit <= 0 means no cap.
func AllPathsLimit(g *domain.Graph, start, end string, limit int) [][]string {
	if !g.Has(start) || !g.Has(end) {
		return nil
	}
	if start == end {
		return [][]string{{start}}
	}

	e := &pathSearch{
		g:        g,
		end:      end,
		limit:    limit,
		canReach: reachesTarget(g, end),
		onPath:   make(map[string]bool),
	}
	if !e.canReach[start] {
		return nil
	}
	e.dfs(start)
	return e.paths
}

type pathSearch struct {
	g        *domain.Graph
	end      string
	limit    int
	canReach map[string]bool
	onPath   map[string]bool
	path     []string
	paths    [][]string
}

func (e *pathSearch) full() bool {
	return e.limit > 0 && len(e.paths) >= e.limit
}

func (e *pathSearch) dfs(id string) {
	if e.full() {
		return
	}
	e.onPath[id] = true
	e.path = append(e.path, id)
	defer func() {
		e.path = e.path[:len(e.path)-1]
		delete(e.onPath, id)
	}()

	if id == e.end {
		e.paths = append(e.paths, append([]string(nil), e.path...))
		return
	}
	seen := make(map[string]bool)
	for _, next := range e.g.Children(id) {
		if e.onPath[next] || seen[next] || !e.canReach[next] {
			continue
		}
		seen[next] = true
		e.dfs(next)
	}
}

// reachesTarget returns the set of nodes from which target is reachable,
// target included. It prunes branches that can never complete a path.
func reachesTarget(g *domain.Graph, target string) map[string]bool {
	reverse := make(map[string][]string)
	for _, id := range g.IDs() {
		for _, child := range g.Children(id) {
			reverse[child] = append(reverse[child], id)
		}
	}
	reach := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range reverse[cur] {
			if !reach[p] {
				reach[p] = true
				queue = append(queue, p)
			}
		}
	}
	return reach
}
