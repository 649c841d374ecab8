package traverse

// Session holds the state of a single traversal. A new session is created for
// every Walk call and is safe to inspect once the call has returned.
type Session struct {
	path    []string
	onPath  map[string]int
	visited map[string]bool
	order   []string
	cycles  [][]string

	visits    int
	truncated int
}

func newSession() *Session {
	return &Session{
		onPath:  make(map[string]int),
		visited: make(map[string]bool),
	}
}

func (s *Session) push(id string) {
	s.path = append(s.path, id)
	s.onPath[id]++
}

func (s *Session) pop() {
	id := s.path[len(s.path)-1]
	s.path = s.path[:len(s.path)-1]
	if s.onPath[id]--; s.onPath[id] <= 0 {
		delete(s.onPath, id)
	}
}

func (s *Session) markVisited(id string) {
	s.visits++
	if !s.visited[id] {
		s.visited[id] = true
		s.order = append(s.order, id)
	}
}

// closeCycle records the suffix of the active path starting at id, closed by id.
func (s *Session) closeCycle(id string) []string {
	start := 0
	for i, p := range s.path {
		if p == id {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(s.path)-start+1)
	cycle = append(cycle, s.path[start:]...)
	cycle = append(cycle, id)
	s.cycles = append(s.cycles, cycle)
	return cycle
}

// HasCycle reports whether any branch re-entered its own path.
func (s *Session) HasCycle() bool { return len(s.cycles) > 0 }

// Cycles returns every cycle met, each closed by repeating its first id.
func (s *Session) Cycles() [][]string {
	out := make([][]string, len(s.cycles))
	for i, c := range s.cycles {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// Visited returns the ids visited at least once, in first-visit order.
func (s *Session) Visited() []string { return append([]string(nil), s.order...) }

// WasVisited reports whether id was visited.
func (s *Session) WasVisited(id string) bool { return s.visited[id] }

// Visits is the total number of visit calls, counting revisits.
func (s *Session) Visits() int { return s.visits }

// Truncated is the number of branches cut by the depth or visit bounds.
func (s *Session) Truncated() int { return s.truncated }
