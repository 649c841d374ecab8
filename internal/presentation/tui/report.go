package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Markdown renders a report as a markdown document.
func Markdown(r *domain.Report) string {
	var sb strings.Builder

	title := "Decision tree report"
	if r.DocumentID != "" {
		title += ": " + r.DocumentID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if r.ID != "" {
		fmt.Fprintf(&sb, "Report `%s`", r.ID)
		if !r.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, " created %s", r.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Structure\n\n")
	if r.Validation.Valid {
		sb.WriteString("The graph is structurally valid.\n\n")
	} else {
		sb.WriteString("The graph has structural errors.\n\n")
	}
	for _, issue := range r.Validation.Issues {
		fmt.Fprintf(&sb, "- **%s** %s\n", issue.Severity, issue.Message)
	}
	if len(r.Validation.Issues) > 0 {
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Conflicts (%d)\n\n", len(r.Conflicts))
	writeConflictTable(&sb, r.Conflicts)

	if r.Resolved != nil || r.Unresolved != nil {
		fmt.Fprintf(&sb, "## Repairs (%d resolved, %d unresolved)\n\n", len(r.Resolved), len(r.Unresolved))
		if r.RolledBack {
			sb.WriteString("> The resolution pass failed and was rolled back; the graph is unchanged.\n\n")
		}
		for _, res := range r.Resolved {
			fmt.Fprintf(&sb, "- `%s` %s", res.Conflict.Kind, res.Action)
			if res.Confidence != nil {
				fmt.Fprintf(&sb, " (confidence %.2f)", *res.Confidence)
			}
			sb.WriteString("\n")
		}
		for _, c := range r.Unresolved {
			fmt.Fprintf(&sb, "- `%s` left unresolved: %s\n", c.Kind, c.Description)
		}
		sb.WriteString("\n")

		if d := r.Changes; d != nil {
			sb.WriteString("### Changes\n\n")
			writeList(&sb, "Removed nodes", d.RemovedNodes)
			writeList(&sb, "Added nodes", d.AddedNodes)
			writeList(&sb, "Modified nodes", d.ModifiedNodes)
			writeEdges(&sb, "Removed edges", d.RemovedEdges)
			writeEdges(&sb, "Added edges", d.AddedEdges)
			sb.WriteString("\n")
		}

		fmt.Fprintf(&sb, "## Remaining conflicts (%d)\n\n", len(r.Remaining))
		writeConflictTable(&sb, r.Remaining)
		fmt.Fprintf(&sb, "Nodes: %d before, %d after.\n", r.NodesBefore, r.NodesAfter)
	}
	return sb.String()
}

func writeConflictTable(sb *strings.Builder, conflicts []domain.Conflict) {
	if len(conflicts) == 0 {
		sb.WriteString("None.\n\n")
		return
	}
	sb.WriteString("| Severity | Type | Nodes | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, c := range conflicts {
		fmt.Fprintf(sb, "| %s | %s | %s | %s |\n",
			c.Severity, c.Kind, strings.Join(c.Nodes, ", "), strings.ReplaceAll(c.Description, "|", `\|`))
	}
	sb.WriteString("\n")
}

func writeList(sb *strings.Builder, title string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", title, strings.Join(ids, ", "))
}

func writeEdges(sb *strings.Builder, title string, edges []domain.Edge) {
	if len(edges) == 0 {
		return
	}
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = fmt.Sprintf("%s -[%s]-> %s", e.From, e.Label, e.To)
	}
	fmt.Fprintf(sb, "- %s: %s\n", title, strings.Join(parts, "; "))
}
