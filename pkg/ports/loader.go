package ports

// DocumentLoader defines how raw graph documents are found and read.
// This allows the document source (filesystem, memory) to be decoupled.
type DocumentLoader interface {
	// GetDocument returns the raw JSON or YAML bytes of a document.
	GetDocument(id string) ([]byte, error)

	// ListDocuments returns every document id, in a deterministic order.
	ListDocuments() ([]string, error)
}
