package domain

import "sort"

// Metadata keys understood by the codec.
const (
	// KeyStartNodeID is the document metadata key naming the entry node.
	KeyStartNodeID = "start_node_id"
	// KeyDocumentID is the document metadata key naming the source document.
	KeyDocumentID = "document_id"
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
