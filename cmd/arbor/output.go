package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
)

const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatMarkdown:
		return nil
	}
	return fmt.Errorf("unknown format %q (text, json, markdown)", format)
}

// printReport writes report in the requested format. Markdown is rendered
// with glamour when stdout is a terminal and written raw otherwise.
func printReport(w io.Writer, report *domain.Report, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatMarkdown:
		md := tui.Markdown(report)
		if !isTerminal(os.Stdout) {
			_, err := io.WriteString(w, md)
			return err
		}
		render, err := tui.NewRenderer(100)
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		printText(w, report)
		return nil
	}
}

func printText(w io.Writer, report *domain.Report) {
	if report.DocumentID != "" {
		fmt.Fprintf(w, "Document: %s\n", report.DocumentID)
	}
	fmt.Fprintf(w, "Report:   %s\n", report.ID)

	if report.Validation.Valid {
		fmt.Fprintln(w, "Structure: valid")
	} else {
		fmt.Fprintln(w, "Structure: invalid")
	}
	for _, issue := range report.Validation.Issues {
		fmt.Fprintf(w, "  - [%s] %s\n", issue.Severity, issue.Message)
	}

	fmt.Fprintf(w, "Conflicts: %d\n", len(report.Conflicts))
	for _, c := range report.Conflicts {
		fmt.Fprintf(w, "  - [%s] %s: %s\n", tui.Severity(c.Severity), c.Kind, c.Description)
	}

	if report.Resolved == nil && report.Unresolved == nil {
		return
	}
	if report.RolledBack {
		fmt.Fprintln(w, "Resolution failed and was rolled back.")
	}
	fmt.Fprintf(w, "Resolved: %d\n", len(report.Resolved))
	for _, r := range report.Resolved {
		fmt.Fprintf(w, "  - %s: %s\n", r.Conflict.Kind, r.Action)
	}
	fmt.Fprintf(w, "Unresolved: %d\n", len(report.Unresolved))
	for _, c := range report.Unresolved {
		fmt.Fprintf(w, "  - %s: %s\n", c.Kind, c.Description)
	}
	fmt.Fprintf(w, "Remaining: %d (nodes %d -> %d)\n", len(report.Remaining), report.NodesBefore, report.NodesAfter)
}
