package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrMalformedDocument is returned when a document cannot be read as a graph.
var ErrMalformedDocument = errors.New("malformed graph document")

// Document is a decoded graph together with its document-level metadata.
type Document struct {
	Graph    *domain.Graph
	Metadata map[string]string
}

// ID returns the document id from metadata, if any.
func (d *Document) ID() string {
	if d == nil {
		return ""
	}
	return d.Metadata[domain.KeyDocumentID]
}

// Parser converts raw JSON or YAML into a Document.
//
// Both connection shapes are accepted: a label to target mapping and a list of
// {condition, target_node_id} records ("to" and "target" are accepted as
// aliases). A nested object in a target slot is normalized to its "id" field
// and marked domain.TargetNested; any other non-string target is kept as
// domain.TargetInvalid so the structural validator can report it.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Decode is a convenience wrapper around Parser.Parse.
func Decode(data []byte) (*Document, error) {
	return NewParser().Parse(data)
}

// Parse reads data as JSON when it looks like JSON and as YAML otherwise.
// Mapping order is preserved so connections keep their wire order.
func (p *Parser) Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}
	if data[0] == '{' || data[0] == '[' {
		tree, err := jsonTree(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse graph document: %w", err)
		}
		return p.document(tree)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse graph document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedDocument)
	}
	return p.document(root.Content[0])
}

func (p *Parser) document(n *yaml.Node) (*Document, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrMalformedDocument)
	}
	for _, key := range []string{"decision_tree", "tree"} {
		if inner := lookup(n, key); inner != nil && inner.Kind == yaml.MappingNode && lookup(n, "nodes") == nil {
			return p.document(inner)
		}
	}

	doc := &Document{
		Graph:    &domain.Graph{Nodes: make(map[string]*domain.Node)},
		Metadata: make(map[string]string),
	}
	if meta := lookup(n, "metadata"); meta != nil {
		doc.Metadata = scalars(meta)
	}
	if id := scalarValue(lookup(n, domain.KeyDocumentID)); id != "" {
		doc.Metadata[domain.KeyDocumentID] = id
	}

	nodes := lookup(n, "nodes")
	if nodes == nil {
		return nil, fmt.Errorf("%w: missing \"nodes\"", ErrMalformedDocument)
	}
	if err := p.nodes(nodes, doc.Graph); err != nil {
		return nil, err
	}

	switch {
	case scalarValue(lookup(n, "start_node")) != "":
		doc.Graph.StartNode = scalarValue(lookup(n, "start_node"))
	case scalarValue(lookup(n, "start_node_id")) != "":
		doc.Graph.StartNode = scalarValue(lookup(n, "start_node_id"))
	default:
		doc.Graph.StartNode = doc.Metadata[domain.KeyStartNodeID]
	}
	return doc, nil
}

func (p *Parser) nodes(n *yaml.Node, g *domain.Graph) error {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i].Value, n.Content[i+1]
			node, err := p.node(value, key)
			if err != nil {
				return err
			}
			// The mapping key is what connections refer to.
			node.ID = key
			g.Nodes[key] = node
		}
	case yaml.SequenceNode:
		for idx, item := range n.Content {
			node, err := p.node(item, "")
			if err != nil {
				return err
			}
			if node.ID == "" {
				return fmt.Errorf("%w: node at index %d missing ID", ErrMalformedDocument, idx)
			}
			if _, dup := g.Nodes[node.ID]; dup {
				return fmt.Errorf("%w: duplicate node id %q", ErrMalformedDocument, node.ID)
			}
			g.Nodes[node.ID] = node
		}
	case yaml.ScalarNode:
		if n.Tag != "!!null" {
			return fmt.Errorf("%w: \"nodes\" must be a mapping or a list", ErrMalformedDocument)
		}
	default:
		return fmt.Errorf("%w: \"nodes\" must be a mapping or a list", ErrMalformedDocument)
	}
	return nil
}

func (p *Parser) node(n *yaml.Node, key string) (*domain.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: node %q must be a mapping", ErrMalformedDocument, key)
	}
	node := &domain.Node{}
	var kind string
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i].Value, n.Content[i+1]
		switch k {
		case "id":
			node.ID = scalarValue(v)
		case "type", "kind":
			kind = scalarValue(v)
		case "condition":
			node.Condition = scalarValue(v)
		case "question", "question_text":
			node.QuestionText = scalarValue(v)
		case "decision":
			node.Decision = scalarValue(v)
		case "connections", "transitions":
			node.Connections = connections(v)
		case "metadata":
			node.Metadata = mergeMeta(node.Metadata, scalars(v))
		default:
			if v.Kind == yaml.ScalarNode && v.Tag != "!!null" {
				node.Metadata = mergeMeta(node.Metadata, map[string]string{k: v.Value})
			}
		}
	}
	node.Kind = domain.ParseNodeKind(kind, node.Decision)
	return node, nil
}

func connections(n *yaml.Node) []domain.Connection {
	var out []domain.Connection
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			c := target(n.Content[i+1])
			c.Label = n.Content[i].Value
			out = append(out, c)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.MappingNode {
				out = append(out, domain.Connection{Shape: domain.TargetInvalid, Raw: render(item)})
				continue
			}
			slot := firstOf(item, "target_node_id", "to", "target", "to_node_id")
			var c domain.Connection
			if slot == nil {
				c = domain.Connection{Shape: domain.TargetInvalid, Raw: render(item)}
			} else {
				c = target(slot)
			}
			c.Label = scalarValue(firstOf(item, "condition", "label", "answer"))
			out = append(out, c)
		}
	}
	return out
}

// target interprets a value found in a target slot.
func target(n *yaml.Node) domain.Connection {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!str" && strings.TrimSpace(n.Value) != "" {
			return domain.Connection{Target: n.Value, Shape: domain.TargetID}
		}
	case yaml.MappingNode:
		if id := firstOf(n, "id", "node_id", "target_node_id"); id != nil && id.Kind == yaml.ScalarNode && id.Value != "" {
			return domain.Connection{Target: id.Value, Shape: domain.TargetNested, Raw: render(n)}
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			return target(n.Alias)
		}
	}
	return domain.Connection{Shape: domain.TargetInvalid, Raw: render(n)}
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func firstOf(n *yaml.Node, keys ...string) *yaml.Node {
	for _, k := range keys {
		if v := lookup(n, k); v != nil {
			return v
		}
	}
	return nil
}

func scalarValue(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

func scalars(n *yaml.Node) map[string]string {
	out := make(map[string]string)
	if n == nil || n.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if v := n.Content[i+1]; v.Kind == yaml.ScalarNode && v.Tag != "!!null" {
			out[n.Content[i].Value] = v.Value
		}
	}
	return out
}

func mergeMeta(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// render produces a compact JSON rendering of n for diagnostics.
func render(n *yaml.Node) string {
	var v any
	if err := n.Decode(&v); err != nil {
		return n.Value
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
