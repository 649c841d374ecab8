package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/arbor/internal/codec"
	"github.com/aretw0/arbor/pkg/domain"
)

// Loader implements ports.DocumentLoader using an in-memory map.
type Loader struct {
	docs map[string][]byte
}

// NewLoader creates a new Loader with the provided raw documents (JSON or YAML strings).
func NewLoader(data map[string]string) *Loader {
	docs := make(map[string][]byte)
	for k, v := range data {
		docs[k] = []byte(v)
	}
	return &Loader{
		docs: docs,
	}
}

// NewFromGraphs creates a Loader from domain graphs.
// This handles serialization automatically, improving DX for tests.
func NewFromGraphs(graphs map[string]*domain.Graph) (*Loader, error) {
	docs := make(map[string][]byte, len(graphs))
	for id, g := range graphs {
		if id == "" {
			return nil, fmt.Errorf("graph missing document id")
		}
		raw, err := codec.EncodeGraph(g, codec.FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph %s: %w", id, err)
		}
		docs[id] = raw
	}
	return &Loader{docs: docs}, nil
}

// GetDocument retrieves the raw bytes of a document by ID.
func (l *Loader) GetDocument(id string) ([]byte, error) {
	content, ok := l.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return content, nil
}

// ListDocuments returns all available document IDs.
func (l *Loader) ListDocuments() ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
