package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type wireDocument struct {
	StartNode string                  `json:"start_node,omitempty" yaml:"start_node,omitempty"`
	Metadata  map[string]string       `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Nodes     map[string]*domain.Node `json:"nodes" yaml:"nodes"`
}

// Encode writes doc in the canonical wire shape: nodes keyed by id and
// connections as {condition, target_node_id} records. Nested targets are
// written as plain ids and invalid targets are dropped.
func Encode(doc *Document, format Format) ([]byte, error) {
	if doc == nil || doc.Graph == nil {
		return nil, fmt.Errorf("%w: nothing to encode", ErrMalformedDocument)
	}
	w := canonical(doc.Graph)
	if len(doc.Metadata) > 0 {
		w.Metadata = doc.Metadata
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(w); err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return buf.Bytes(), nil
	default:
		b, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return append(b, '\n'), nil
	}
}

// EncodeGraph writes a graph without document metadata.
func EncodeGraph(g *domain.Graph, format Format) ([]byte, error) {
	return Encode(&Document{Graph: g}, format)
}

// Compact renders g as single-line JSON, the form handed to repair advisors.
func Compact(g *domain.Graph) (string, error) {
	if g == nil {
		return "{}", nil
	}
	b, err := json.Marshal(canonical(g))
	if err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return string(b), nil
}

func canonical(g *domain.Graph) wireDocument {
	w := wireDocument{
		StartNode: g.StartNode,
		Nodes:     make(map[string]*domain.Node, len(g.Nodes)),
	}
	for id, n := range g.Nodes {
		out := n.Clone()
		out.ID = id
		out.Connections = out.Connections[:0]
		for _, c := range n.Connections {
			if c.Followable() {
				out.Connections = append(out.Connections, domain.Connection{Label: c.Label, Target: c.Target})
			}
		}
		if len(out.Connections) == 0 {
			out.Connections = nil
		}
		w.Nodes[id] = out
	}
	return w
}
