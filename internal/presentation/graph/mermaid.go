package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// ConflictOverlay marks nodes implicated in conflicts. Each node is styled by
// the most severe conflict that involves it.
type ConflictOverlay struct {
	severity map[string]domain.Severity
}

// NewConflictOverlay builds an overlay from detected conflicts.
func NewConflictOverlay(conflicts []domain.Conflict) *ConflictOverlay {
	o := &ConflictOverlay{severity: make(map[string]domain.Severity)}
	for _, c := range conflicts {
		ids := append(append([]string(nil), c.Nodes...), c.Cycle...)
		if c.Peer != "" {
			ids = append(ids, c.Peer)
		}
		for _, id := range ids {
			if cur, ok := o.severity[id]; !ok || c.Severity.Rank() > cur.Rank() {
				o.severity[id] = c.Severity
			}
		}
	}
	return o
}

// Severity returns the overlay severity of id, if any.
func (o *ConflictOverlay) Severity(id string) (domain.Severity, bool) {
	if o == nil {
		return "", false
	}
	s, ok := o.severity[id]
	return s, ok
}

var severityStyles = []struct {
	severity domain.Severity
	style    string
}{
	{domain.SeverityCritical, "fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000"},
	{domain.SeverityHigh, "fill:#ffe0b2,stroke:#e65100,stroke-width:3px,color:#000"},
	{domain.SeverityMedium, "fill:#fff9c4,stroke:#f9a825,stroke-width:2px,color:#000"},
	{domain.SeverityLow, "fill:#e1f5fe,stroke:#01579b,stroke-width:1px,color:#000"},
}

// GenerateMermaid produces a Mermaid flowchart from a decision graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Question: {Rhombus} labelled with its predicate
// - Outcome: ([Stadium]) labelled with its decision
// Targets that name no node are drawn as a dashed "missing" node.
// Conflict styles are applied when overlay is non-nil.
func GenerateMermaid(g *domain.Graph, overlay *ConflictOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	start := g.Start()
	missing := make(map[string]bool)

	for _, id := range g.IDs() {
		node := g.Nodes[id]
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		label := id
		switch {
		case id == start:
			opener, closer = "((", "))"
			if p := node.Predicate(); p != "" {
				label = id + ": " + p
			}
		case node.IsOutcome():
			opener, closer = "([", "])"
			if node.Decision != "" {
				label = node.Decision
			}
		case node.IsQuestion():
			opener, closer = "{", "}"
			if p := node.Predicate(); p != "" {
				label = id + ": " + p
			}
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))

		for _, c := range node.Connections {
			if !c.Followable() {
				continue
			}
			if !g.Has(c.Target) {
				missing[c.Target] = true
			}
			arrow := "-->"
			if c.Label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(c.Label))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(c.Target)))
		}
	}

	if len(missing) > 0 {
		sb.WriteString("\n    classDef missing stroke-dasharray:5 5,color:#b71c1c;\n")
		for _, id := range sortedKeys(missing) {
			safeID := sanitizeMermaidID(id)
			sb.WriteString(fmt.Sprintf("    %s[\"%s (missing)\"]\n", safeID, escapeLabel(id)))
			sb.WriteString(fmt.Sprintf("    class %s missing;\n", safeID))
		}
	}

	if overlay != nil && len(overlay.severity) > 0 {
		sb.WriteString("\n    %% Conflict Styles\n")
		for _, s := range severityStyles {
			sb.WriteString(fmt.Sprintf("    classDef %s %s;\n", s.severity, s.style))
		}
		for _, id := range sortedKeys(overlay.severity) {
			if !g.Has(id) {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(id), overlay.severity[id]))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
