package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/traverse"
)

// Validator is the cheap structural pass that runs before conflict analysis.
// It never calls an advisor and never mutates the graph.
type Validator struct {
	traverser *traverse.Traverser
}

// New creates a Validator whose cycle probe uses cfg. RaiseOnCycle is always
// disabled: a cycle is an issue, not a failure.
func New(cfg traverse.Config, opts ...traverse.Option) *Validator {
	cfg.RaiseOnCycle = false
	cfg.DetectCycles = true
	return &Validator{traverser: traverse.New(cfg, opts...)}
}

// ValidateGraph validates g with the default traversal configuration.
func ValidateGraph(g *domain.Graph) domain.ValidationResult {
	cfg := traverse.DefaultConfig()
	cfg.LogWarnings = false
	return New(cfg).Validate(g)
}

// Validate checks referential integrity and reports:
//   - connections to ids that do not exist
//   - nested objects in target slots (a warning when an id was recovered)
//   - targets that are not ids at all
//   - self-referencing edges
//   - outcomes with outgoing connections and questions without any
//   - cycles reachable from a root
func (v *Validator) Validate(g *domain.Graph) domain.ValidationResult {
	var issues []domain.Issue
	add := func(rule string, sev domain.IssueSeverity, node, format string, args ...any) {
		issues = append(issues, domain.Issue{Rule: rule, Severity: sev, NodeID: node, Message: fmt.Sprintf(format, args...)})
	}

	if g.Len() == 0 {
		add(domain.RuleEmptyGraph, domain.IssueError, "", "Graph has no nodes")
		return result(issues)
	}
	if g.StartNode != "" && !g.Has(g.StartNode) {
		add(domain.RuleMissingStart, domain.IssueError, g.StartNode, "Start node %s does not exist", g.StartNode)
	}

	// 1. Per-node checks
	for _, id := range g.IDs() {
		n := g.Nodes[id]
		followable := 0
		for _, c := range n.Connections {
			switch c.Shape {
			case domain.TargetInvalid:
				add(domain.RuleInvalidTarget, domain.IssueError, id,
					"Node %s has invalid target for connection %q: %s", id, c.Label, c.Raw)
				continue
			case domain.TargetNested:
				add(domain.RuleNestedTarget, domain.IssueWarning, id,
					"Node %s has nested object target for connection %q; normalized to %s", id, c.Label, c.Target)
			}
			followable++
			switch {
			case c.Target == id:
				add(domain.RuleSelfReference, domain.IssueError, id, "Node %s has self-reference", id)
			case !g.Has(c.Target):
				add(domain.RuleDanglingTarget, domain.IssueError, id, "Node %s references non-existent node %s", id, c.Target)
			}
		}
		switch {
		case n.IsOutcome() && followable > 0:
			add(domain.RuleOutcomeEdges, domain.IssueError, id, "Outcome node %s has %d outgoing connections", id, followable)
		case n.IsQuestion() && followable == 0:
			add(domain.RuleQuestionEdges, domain.IssueError, id, "Question node %s has no connections", id)
		}
	}

	// 2. Cycle probe from every root
	for _, root := range v.roots(g) {
		_, session, err := traverse.Walk(v.traverser, g, root, noop, nil, nil)
		if err != nil {
			continue
		}
		if session.HasCycle() {
			add(domain.RuleCycle, domain.IssueError, root, "Circular reference detected starting from node %s", root)
		}
	}

	return result(issues)
}

func (v *Validator) roots(g *domain.Graph) []string {
	roots := g.Roots()
	if g.StartNode == "" || !g.Has(g.StartNode) {
		return roots
	}
	for _, r := range roots {
		if r == g.StartNode {
			return roots
		}
	}
	return append([]string{g.StartNode}, roots...)
}

func noop(*domain.Node, traverse.Context, int) (struct{}, traverse.Verdict) {
	return struct{}{}, traverse.Continue()
}

func result(issues []domain.Issue) domain.ValidationResult {
	r := domain.ValidationResult{Valid: true, Issues: issues}
	if r.Issues == nil {
		r.Issues = []domain.Issue{}
	}
	for _, i := range issues {
		if i.Severity == domain.IssueError {
			r.Valid = false
			break
		}
	}
	return r
}

// AsError folds the error-severity issues of r into a single error, or returns
// nil when r is valid.
func AsError(r domain.ValidationResult) error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return fmt.Errorf("found %d errors:\n- %s", len(msgs), strings.Join(msgs, "\n- "))
}
