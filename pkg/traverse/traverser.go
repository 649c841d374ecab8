package traverse

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// Context is the per-branch data handed to visit functions. Children inherit a
// copy of their parent's context merged with the context their edge provides.
type Context map[string]any

// VisitFunc is called once per node reached. Its verdict decides whether the
// traversal descends.
type VisitFunc[R any] func(node *domain.Node, ctx Context, depth int) (R, Verdict)

// Child is a node to descend into with the context contributed by its edge.
type Child struct {
	Node    *domain.Node
	Context Context
}

// ChildrenFunc enumerates the children of a node. Malformed edges must be left out.
type ChildrenFunc func(node *domain.Node, g *domain.Graph) []Child

// Option configures a Traverser.
type Option func(*Traverser)

// WithLogger sets the logger used for truncation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Traverser) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Traverser walks decision graphs within the bounds of its Config.
// It holds no per-call state and may be shared across goroutines.
type Traverser struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Traverser. A zero MaxDepth is replaced by the default.
func New(cfg Config, opts ...Option) *Traverser {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}
	t := &Traverser{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the traverser configuration.
func (t *Traverser) Config() Config { return t.cfg }

// DefaultChildren follows every connection whose target names an existing node.
// The child context carries the edge label under "condition".
func DefaultChildren(node *domain.Node, g *domain.Graph) []Child {
	var out []Child
	for _, c := range node.Connections {
		if !c.Followable() {
			continue
		}
		target, ok := g.Node(c.Target)
		if !ok {
			continue
		}
		out = append(out, Child{Node: target, Context: Context{"condition": c.Label}})
	}
	return out
}

// Walk performs a depth-first traversal from start and returns the result of
// visiting start together with the session state. A nil children function
// means DefaultChildren.
//
// Walk always terminates: every branch is cut once it exceeds MaxDepth, and
// with DetectCycles set, once it re-enters a node already on its path.
// The only errors are a missing start node, a *CycleError when RaiseOnCycle is
// set, and an *AbortError when a visit answers Fail.
func Walk[R any](t *Traverser, g *domain.Graph, start string, visit VisitFunc[R], children ChildrenFunc, initial Context) (R, *Session, error) {
	var zero R
	s := newSession()
	node, ok := g.Node(start)
	if !ok {
		return zero, s, fmt.Errorf("start node %q: %w", start, domain.ErrNodeNotFound)
	}
	if children == nil {
		children = DefaultChildren
	}
	w := &walker[R]{t: t, g: g, s: s, visit: visit, children: children}
	res, err := w.walk(node, copyContext(initial), 0)
	return res, s, err
}

type walker[R any] struct {
	t        *Traverser
	g        *domain.Graph
	s        *Session
	visit    VisitFunc[R]
	children ChildrenFunc
}

func (w *walker[R]) walk(node *domain.Node, ctx Context, depth int) (R, error) {
	var zero R
	cfg := w.t.cfg

	if depth > cfg.MaxDepth {
		w.s.truncated++
		if cfg.LogWarnings {
			w.t.logger.Warn("max traversal depth exceeded", "node", node.ID, "depth", depth, "max_depth", cfg.MaxDepth)
		}
		return zero, nil
	}
	if cfg.MaxVisits > 0 && w.s.visits >= cfg.MaxVisits {
		w.s.truncated++
		if cfg.LogWarnings && w.s.visits == cfg.MaxVisits {
			w.t.logger.Warn("traversal visit budget exhausted", "node", node.ID, "max_visits", cfg.MaxVisits)
		}
		return zero, nil
	}
	if cfg.DetectCycles && w.s.onPath[node.ID] > 0 {
		cycle := w.s.closeCycle(node.ID)
		if cfg.LogWarnings {
			w.t.logger.Warn("circular reference detected", "node", node.ID, "cycle", cycle)
		}
		if cfg.RaiseOnCycle {
			return zero, &CycleError{Cycle: cycle}
		}
		return zero, nil
	}

	w.s.push(node.ID)
	defer w.s.pop()
	w.s.markVisited(node.ID)

	res, verdict := w.visit(node, ctx, depth)
	switch {
	case verdict.IsFail():
		return res, &AbortError{NodeID: node.ID, Reason: verdict.Reason()}
	case verdict.IsStop():
		return res, nil
	}

	for _, child := range w.children(node, w.g) {
		if child.Node == nil {
			continue
		}
		if _, err := w.walk(child.Node, mergeContext(ctx, child.Context), depth+1); err != nil {
			return res, err
		}
	}
	return res, nil
}

func copyContext(ctx Context) Context {
	out := make(Context, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}

func mergeContext(parent, child Context) Context {
	out := copyContext(parent)
	for k, v := range child {
		out[k] = v
	}
	return out
}
