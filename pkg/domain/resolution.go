package domain

// ModificationType names the field a Modification rewrites.
type ModificationType string

const (
	ModUpdateCondition  ModificationType = "update_condition"
	ModUpdateText       ModificationType = "update_text"
	ModAddConnection    ModificationType = "add_connection"
	ModRemoveConnection ModificationType = "remove_connection"
)

// Modification is one edit to an existing node.
//
// For add_connection NewValue is "label:target_id". For remove_connection the
// label is read from NewValue, falling back to OldValue.
type Modification struct {
	NodeID   string           `json:"node_id" yaml:"node_id" mapstructure:"node_id" validate:"required"`
	Type     ModificationType `json:"modification_type" yaml:"modification_type" mapstructure:"modification_type" validate:"required,oneof=update_condition update_text add_connection remove_connection"`
	OldValue string           `json:"old_value,omitempty" yaml:"old_value,omitempty" mapstructure:"old_value"`
	NewValue string           `json:"new_value" yaml:"new_value" mapstructure:"new_value"`
}

// Resolution is the structured repair description returned by a repair advisor.
type Resolution struct {
	ModifiedNodes      []Modification `json:"modified_nodes" yaml:"modified_nodes" mapstructure:"modified_nodes" validate:"dive"`
	NewNodes           []NewNode      `json:"new_nodes,omitempty" yaml:"new_nodes,omitempty" mapstructure:"new_nodes" validate:"dive"`
	RemovedConnections []string       `json:"removed_connections,omitempty" yaml:"removed_connections,omitempty" mapstructure:"removed_connections" validate:"dive,contains=:"`
	ConfidenceScore    float64        `json:"confidence_score" yaml:"confidence_score" mapstructure:"confidence_score" validate:"gte=0,lte=1"`
}

// NewNode is a complete node record proposed for insertion. Connections are a
// label to target id mapping, the shape advisors reply with.
type NewNode struct {
	ID           string            `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Type         string            `json:"type" yaml:"type" mapstructure:"type"`
	Condition    string            `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
	QuestionText string            `json:"question,omitempty" yaml:"question,omitempty" mapstructure:"question"`
	Decision     string            `json:"decision,omitempty" yaml:"decision,omitempty" mapstructure:"decision"`
	Connections  map[string]string `json:"connections,omitempty" yaml:"connections,omitempty" mapstructure:"connections"`
}

// ToNode converts the record into a graph node. Connections are sorted by label.
func (n NewNode) ToNode() *Node {
	node := &Node{
		ID:           n.ID,
		Kind:         ParseNodeKind(n.Type, n.Decision),
		Condition:    n.Condition,
		QuestionText: n.QuestionText,
		Decision:     n.Decision,
	}
	for _, label := range sortedKeys(n.Connections) {
		node.Connections = append(node.Connections, Connection{Label: label, Target: n.Connections[label]})
	}
	return node
}

// Empty reports whether the resolution proposes no change at all.
func (r *Resolution) Empty() bool {
	return r == nil || (len(r.ModifiedNodes) == 0 && len(r.NewNodes) == 0 && len(r.RemovedConnections) == 0)
}

// Resolved records a conflict that a repair removed.
type Resolved struct {
	Conflict   Conflict `json:"conflict" yaml:"conflict"`
	Action     string   `json:"action" yaml:"action"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}
