package domain

import "strings"

// NodeKind identifies the role a node plays in a decision graph.
type NodeKind string

const (
	// KindQuestion is an internal decision point with outgoing connections.
	KindQuestion NodeKind = "question"
	// KindOutcome is a terminal node carrying a decision label.
	KindOutcome NodeKind = "outcome"

	// legacyDecisionKind is emitted by older tree generators for question nodes.
	legacyDecisionKind = "decision"
)

// ParseNodeKind normalizes a wire "type" value. The legacy "decision" value maps
// to KindQuestion. An empty value is inferred from the presence of a decision label.
func ParseNodeKind(raw string, decision string) NodeKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(KindOutcome), "terminal", "leaf":
		return KindOutcome
	case string(KindQuestion), legacyDecisionKind:
		return KindQuestion
	case "":
		if decision != "" {
			return KindOutcome
		}
		return KindQuestion
	default:
		return NodeKind(raw)
	}
}

// TargetShape records how a connection target arrived on the wire.
type TargetShape int

const (
	// TargetID is a plain node id.
	TargetID TargetShape = iota
	// TargetNested was a nested object whose "id" field was recovered.
	TargetNested
	// TargetInvalid could not be interpreted as a node id. Target is empty.
	TargetInvalid
)

func (s TargetShape) String() string {
	switch s {
	case TargetNested:
		return "nested"
	case TargetInvalid:
		return "invalid"
	default:
		return "id"
	}
}

// Connection is a labeled edge from its owning node to Target.
type Connection struct {
	Label  string `json:"condition" yaml:"condition"`
	Target string `json:"target_node_id" yaml:"target_node_id"`

	// Shape and Raw describe the original wire value; they are set by the codec
	// and consumed by the structural validator.
	Shape TargetShape `json:"-" yaml:"-"`
	Raw   string      `json:"-" yaml:"-"`
}

// Followable reports whether the connection names a node id at all.
func (c Connection) Followable() bool {
	return c.Shape != TargetInvalid && c.Target != ""
}

// Node is one question or outcome point in a decision graph.
type Node struct {
	ID   string   `json:"id" yaml:"id"`
	Kind NodeKind `json:"type" yaml:"type"`

	// Condition is the predicate evaluated at a question node.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
	// QuestionText is the prompt shown for a question node.
	QuestionText string `json:"question,omitempty" yaml:"question,omitempty"`
	// Decision is the terminal label of an outcome node, e.g. "APPROVED".
	Decision string `json:"decision,omitempty" yaml:"decision,omitempty"`

	// Connections keep their wire order.
	Connections []Connection `json:"connections,omitempty" yaml:"connections,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsQuestion reports whether the node is a decision point.
func (n *Node) IsQuestion() bool { return n.Kind == KindQuestion }

// IsOutcome reports whether the node is terminal.
func (n *Node) IsOutcome() bool { return n.Kind == KindOutcome }

// Predicate is the text compared by the contradiction and overlap analyses.
func (n *Node) Predicate() string {
	if n.Condition != "" {
		return n.Condition
	}
	return n.QuestionText
}

// SignatureText is the text contributed by the node to a path signature.
func (n *Node) SignatureText() string {
	if n.QuestionText != "" {
		return n.QuestionText
	}
	return n.Condition
}

// Connection returns the first connection with the given label.
func (n *Node) Connection(label string) (Connection, bool) {
	for _, c := range n.Connections {
		if c.Label == label {
			return c, true
		}
	}
	return Connection{}, false
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Connections != nil {
		out.Connections = make([]Connection, len(n.Connections))
		copy(out.Connections, n.Connections)
	}
	if n.Metadata != nil {
		out.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// NormalizeText lowercases and collapses whitespace so predicates can be compared.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
