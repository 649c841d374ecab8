package llm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

const systemPrompt = `You repair decision trees. Reply with a single JSON object and nothing else:
{"modified_nodes":[{"node_id":"","modification_type":"update_condition|update_text|add_connection|remove_connection","old_value":"","new_value":""}],
 "new_nodes":[{"id":"","type":"question|outcome","condition":"","question":"","decision":"","connections":{"label":"target_id"}}],
 "removed_connections":["node_id:label"],
 "confidence_score":0.0}
For add_connection, new_value is "label:target_id". Only reference node ids that exist or that you add in new_nodes.`

var promptTemplate = template.Must(template.New("prompt").Parse(`{{.Intro}}

Conflict: {{.Conflict.Description}}
Affected nodes: {{.Nodes}}
Tree structure: {{.Rendered}}

{{.Goals}}
`))

var intros = map[domain.ConflictKind]struct{ intro, goals string }{
	domain.ConflictContradictoryPaths: {
		intro: "Analyze this contradictory path conflict in a decision tree.",
		goals: "Resolve the contradiction by refining the conditions to be mutually exclusive, adding decision nodes if needed and clarifying the logic.",
	},
	domain.ConflictOverlappingConditions: {
		intro: "Analyze these overlapping conditions in a decision tree.",
		goals: "Reword the conditions so they are mutually exclusive and unambiguous while still covering every case.",
	},
}

// BuildPrompt renders the user message for req.
func BuildPrompt(req ports.RepairRequest) (string, error) {
	text, ok := intros[req.Conflict.Kind]
	if !ok {
		text = intros[domain.ConflictContradictoryPaths]
		text.intro = fmt.Sprintf("Analyze this %s conflict in a decision tree.", req.Conflict.Kind)
	}

	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, map[string]any{
		"Intro":    text.intro,
		"Goals":    text.goals,
		"Conflict": req.Conflict,
		"Nodes":    strings.Join(req.Conflict.Nodes, ", "),
		"Rendered": req.Rendered,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}
