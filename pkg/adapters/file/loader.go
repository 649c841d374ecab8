package file

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// documentExts are the file extensions the loader treats as graph documents.
var documentExts = []string{".json", ".yaml", ".yml"}

// Loader implements ports.DocumentLoader over a directory tree.
// A document's id is its slash-separated path relative to the root, without extension.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{root: dir}
}

// GetDocument reads the document with the given id, trying each known extension.
func (l *Loader) GetDocument(id string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(id))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid document id %q", id)
	}
	for _, ext := range documentExts {
		data, err := os.ReadFile(filepath.Join(l.root, clean+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read document %s: %w", id, err)
		}
	}
	return nil, fmt.Errorf("document not found: %s", id)
}

// ListDocuments walks the root and returns every document id in sorted order.
func (l *Loader) ListDocuments() ([]string, error) {
	seen := make(map[string]bool)
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if !isDocument(ext) {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		seen[filepath.ToSlash(strings.TrimSuffix(rel, ext))] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func isDocument(ext string) bool {
	for _, e := range documentExts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
