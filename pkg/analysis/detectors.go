package analysis

import (
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Detector is one conflict analysis.
type Detector func(g *domain.Graph) []domain.Conflict

// Check pairs a detector with the kind it reports.
type Check struct {
	Kind   domain.ConflictKind
	Detect Detector
}

// Checks returns the four analyses in the order DetectAll runs them.
func Checks() []Check {
	return []Check{
		{domain.ConflictContradictoryPaths, DetectContradictions},
		{domain.ConflictCircularDependency, DetectCircularDependencies},
		{domain.ConflictRedundantPaths, DetectRedundantPaths},
		{domain.ConflictOverlappingConditions, DetectOverlaps},
	}
}

// DetectAll runs every detector on g and concatenates their results.
func DetectAll(g *domain.Graph) []domain.Conflict {
	var out []domain.Conflict
	for _, d := range Checks() {
		out = append(out, d.Detect(g)...)
	}
	return out
}

// DetectContradictions groups question nodes by normalized predicate and
// compares the outcome labels each reaches through its direct connections.
// Every node whose label set differs from the first node of its group is
// reported. Nodes without a predicate are ignored.
func DetectContradictions(g *domain.Graph) []domain.Conflict {
	type first struct {
		id       string
		outcomes map[string]bool
	}
	groups := make(map[string]first)
	var out []domain.Conflict

	for _, id := range g.IDs() {
		n := g.Nodes[id]
		if !n.IsQuestion() {
			continue
		}
		pred := domain.NormalizeText(n.Predicate())
		if pred == "" {
			continue
		}
		outcomes := directOutcomes(g, n)
		prev, ok := groups[pred]
		if !ok {
			groups[pred] = first{id: id, outcomes: outcomes}
			continue
		}
		if !sameSet(prev.outcomes, outcomes) {
			out = append(out, domain.NewContradiction(id, prev.id, n.Predicate()))
		}
	}
	return out
}

func directOutcomes(g *domain.Graph, n *domain.Node) map[string]bool {
	labels := make(map[string]bool)
	for _, c := range n.Connections {
		if !c.Followable() {
			continue
		}
		if target, ok := g.Node(c.Target); ok && target.IsOutcome() {
			labels[target.Decision] = true
		}
	}
	return labels
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// DetectCircularDependencies reports one critical conflict per cycle.
func DetectCircularDependencies(g *domain.Graph) []domain.Conflict {
	var out []domain.Conflict
	for _, cycle := range DetectCycles(g) {
		out = append(out, domain.NewCircularDependency(cycle))
	}
	return out
}

// SignatureSeparator joins node texts into a path signature.
const SignatureSeparator = " -> "

// Signature joins the texts of every node on path except the last, skipping
// nodes without text.
func Signature(g *domain.Graph, path []string) string {
	if len(path) < 2 {
		return ""
	}
	var parts []string
	for _, id := range path[:len(path)-1] {
		if n, ok := g.Node(id); ok {
			if text := n.SignatureText(); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, SignatureSeparator)
}

// PathStarts returns the nodes that are never a connection target. When every
// node is referenced, all non-outcome nodes are used instead.
func PathStarts(g *domain.Graph) []string {
	refs := g.Referenced()
	var starts []string
	for _, id := range g.IDs() {
		if !refs[id] {
			starts = append(starts, id)
		}
	}
	if len(starts) > 0 {
		return starts
	}
	for _, id := range g.IDs() {
		if !g.Nodes[id].IsOutcome() {
			starts = append(starts, id)
		}
	}
	return starts
}

// DetectRedundantPaths enumerates, for every outcome node, the simple paths
// from each start node and reports each path whose signature repeats the
// signature of an earlier path to the same outcome. Empty signatures, such as
// a direct edge, are never flagged.
func DetectRedundantPaths(g *domain.Graph) []domain.Conflict {
	starts := PathStarts(g)
	var out []domain.Conflict

	for _, outcome := range g.IDs() {
		target := g.Nodes[outcome]
		if !target.IsOutcome() {
			continue
		}
		bySignature := make(map[string][]string)
		for _, start := range starts {
			for _, path := range AllPaths(g, start, outcome) {
				sig := Signature(g, path)
				if sig == "" {
					continue
				}
				if retained, ok := bySignature[sig]; ok {
					out = append(out, domain.NewRedundancy(outcome, target.Decision, retained, path))
					continue
				}
				bySignature[sig] = path
			}
		}
	}
	return out
}

// overlapStopwords are ignored when comparing predicates.
var overlapStopwords = map[string]bool{
	"is": true, "the": true, "and": true, "or": true, "not": true, "has": true,
	"have": true, "with": true, "than": true, "greater": true, "less": true,
}

// MinSharedKeywords is the overlap threshold.
const MinSharedKeywords = 2

// Keywords splits text on whitespace, lowercases it and drops stopwords.
func Keywords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if !overlapStopwords[w] {
			words[w] = true
		}
	}
	return words
}

// SharedKeywords returns how many keywords a and b have in common.
func SharedKeywords(a, b string) int {
	ka, kb := Keywords(a), Keywords(b)
	shared := 0
	for w := range ka {
		if kb[w] {
			shared++
		}
	}
	return shared
}

// DetectOverlaps compares every unordered pair of question nodes and reports
// those whose predicates share at least MinSharedKeywords keywords.
func DetectOverlaps(g *domain.Graph) []domain.Conflict {
	var questions []*domain.Node
	for _, id := range g.IDs() {
		if n := g.Nodes[id]; n.IsQuestion() {
			questions = append(questions, n)
		}
	}

	var out []domain.Conflict
	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			a, b := questions[i], questions[j]
			if SharedKeywords(a.Predicate(), b.Predicate()) >= MinSharedKeywords {
				out = append(out, domain.NewOverlap(a, b))
			}
		}
	}
	return out
}
