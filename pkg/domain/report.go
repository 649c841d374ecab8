package domain

import "time"

// Report is the persisted summary of one analysis or repair run.
type Report struct {
	ID         string    `json:"id" yaml:"id"`
	DocumentID string    `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`

	Validation ValidationResult `json:"validation" yaml:"validation"`
	Conflicts  []Conflict       `json:"conflicts" yaml:"conflicts"`

	// Repair results. Empty for analysis-only reports.
	Resolved   []Resolved `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Unresolved []Conflict `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	// Remaining are the conflicts still detected on the repaired graph.
	Remaining  []Conflict `json:"remaining,omitempty" yaml:"remaining,omitempty"`
	Changes    *GraphDiff `json:"changes,omitempty" yaml:"changes,omitempty"`
	RolledBack bool       `json:"rolled_back,omitempty" yaml:"rolled_back,omitempty"`

	NodesBefore int    `json:"nodes_before" yaml:"nodes_before"`
	NodesAfter  int    `json:"nodes_after" yaml:"nodes_after"`
	Graph       *Graph `json:"graph,omitempty" yaml:"graph,omitempty"`

	// Sealed holds an encrypted copy of the whole report. Only encrypting
	// stores set it; every other field except the identifiers is then empty.
	Sealed string `json:"sealed,omitempty" yaml:"sealed,omitempty"`
}

// CountBySeverity tallies detected conflicts per severity.
func (r *Report) CountBySeverity() map[Severity]int {
	out := make(map[Severity]int)
	for _, c := range r.Conflicts {
		out[c.Severity]++
	}
	return out
}

// Clean reports whether the graph passed validation and carries no conflicts
// after the run.
func (r *Report) Clean() bool {
	if !r.Validation.Valid {
		return false
	}
	if r.Resolved != nil || r.Unresolved != nil || r.Remaining != nil {
		return len(r.Remaining) == 0
	}
	return len(r.Conflicts) == 0
}
