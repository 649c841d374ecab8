package domain

import (
	"fmt"
	"strings"
)

// ConflictKind is the closed set of defects the analyses report.
type ConflictKind string

const (
	ConflictContradictoryPaths    ConflictKind = "contradictory_paths"
	ConflictCircularDependency    ConflictKind = "circular_dependency"
	ConflictRedundantPaths        ConflictKind = "redundant_paths"
	ConflictOverlappingConditions ConflictKind = "overlapping_conditions"
)

// Known reports whether k is one of the four analysed kinds. Conflicts decoded
// from external input may carry anything else.
func (k ConflictKind) Known() bool {
	switch k {
	case ConflictContradictoryPaths, ConflictCircularDependency, ConflictRedundantPaths, ConflictOverlappingConditions:
		return true
	}
	return false
}

// Severity ranks conflicts for reporting.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from low (1) to critical (4). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Conflict is a detected defect. Build it with the New* constructors; the
// kind-specific payload fields are only populated for their own kind.
type Conflict struct {
	Kind        ConflictKind `json:"type" yaml:"type"`
	Description string       `json:"description" yaml:"description"`
	Nodes       []string     `json:"nodes" yaml:"nodes"`
	Severity    Severity     `json:"severity" yaml:"severity"`

	// Peer is the earlier node sharing the predicate (contradictory_paths).
	Peer string `json:"peer,omitempty" yaml:"peer,omitempty"`
	// Cycle is the closed node sequence (circular_dependency).
	Cycle []string `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	// Paths holds the retained path followed by its duplicate (redundant_paths).
	Paths [][]string `json:"paths,omitempty" yaml:"paths,omitempty"`
	// Outcome is the shared terminal node (redundant_paths).
	Outcome string `json:"outcome,omitempty" yaml:"outcome,omitempty"`
}

// NewContradiction reports that node reaches different outcome labels than peer
// although both evaluate the same predicate.
func NewContradiction(node, peer, predicate string) Conflict {
	return Conflict{
		Kind:        ConflictContradictoryPaths,
		Description: fmt.Sprintf("Condition %q leads to different outcomes", predicate),
		Nodes:       []string{node},
		Severity:    SeverityHigh,
		Peer:        peer,
	}
}

// NewCircularDependency reports a closed cycle, first element repeated last.
func NewCircularDependency(cycle []string) Conflict {
	c := append([]string(nil), cycle...)
	return Conflict{
		Kind:        ConflictCircularDependency,
		Description: "Circular dependency detected: " + strings.Join(c, " -> "),
		Nodes:       c,
		Severity:    SeverityCritical,
		Cycle:       append([]string(nil), c...),
	}
}

// NewRedundancy reports two paths to outcome sharing a condition signature.
// Nodes lists the retained path followed by the nodes only the duplicate visits.
func NewRedundancy(outcome, label string, retained, duplicate []string) Conflict {
	seen := make(map[string]bool, len(retained))
	nodes := make([]string, 0, len(retained)+len(duplicate))
	for _, id := range retained {
		if !seen[id] {
			seen[id] = true
			nodes = append(nodes, id)
		}
	}
	for _, id := range duplicate {
		if !seen[id] {
			seen[id] = true
			nodes = append(nodes, id)
		}
	}
	return Conflict{
		Kind:        ConflictRedundantPaths,
		Description: fmt.Sprintf("Multiple paths with identical conditions lead to %q", label),
		Nodes:       nodes,
		Severity:    SeverityMedium,
		Paths: [][]string{
			append([]string(nil), retained...),
			append([]string(nil), duplicate...),
		},
		Outcome: outcome,
	}
}

// NewOverlap reports two question nodes whose conditions share keywords.
func NewOverlap(a, b *Node) Conflict {
	return Conflict{
		Kind:        ConflictOverlappingConditions,
		Description: fmt.Sprintf("Conditions may overlap: %q and %q", a.Predicate(), b.Predicate()),
		Nodes:       []string{a.ID, b.ID},
		Severity:    SeverityLow,
	}
}

// Involves reports whether id is among the implicated nodes.
func (c Conflict) Involves(id string) bool {
	for _, n := range c.Nodes {
		if n == id {
			return true
		}
	}
	return c.Peer == id
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s[%s] %s", c.Kind, c.Severity, c.Description)
}
