package domain

// IssueSeverity separates hard structural defects from recovered ones.
type IssueSeverity string

const (
	IssueError   IssueSeverity = "error"
	IssueWarning IssueSeverity = "warning"
)

// Rule identifiers reported by the structural validator.
const (
	RuleDanglingTarget = "dangling_target"
	RuleNestedTarget   = "nested_target"
	RuleInvalidTarget  = "invalid_target"
	RuleSelfReference  = "self_reference"
	RuleOutcomeEdges   = "outcome_with_connections"
	RuleQuestionEdges  = "question_without_connections"
	RuleCycle          = "cycle"
	RuleEmptyGraph     = "empty_graph"
	RuleMissingStart   = "missing_start"
)

// Issue is one structural finding.
type Issue struct {
	Rule     string        `json:"rule" yaml:"rule"`
	Severity IssueSeverity `json:"severity" yaml:"severity"`
	NodeID   string        `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	Message  string        `json:"message" yaml:"message"`
}

// ValidationResult is the outcome of a structural pass. Valid is false when
// any issue has error severity.
type ValidationResult struct {
	Valid  bool    `json:"valid" yaml:"valid"`
	Issues []Issue `json:"issues" yaml:"issues"`
}

// Messages returns the issue texts in report order.
func (r ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		out = append(out, i.Message)
	}
	return out
}

// Errors returns only the error-severity issues.
func (r ValidationResult) Errors() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == IssueError {
			out = append(out, i)
		}
	}
	return out
}
