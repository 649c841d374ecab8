package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/file"
	contract "github.com/aretw0/arbor/pkg/ports/tests"
)

func TestFileLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	data := map[string][]byte{
		"loan":         []byte(`{"nodes": {"start": {"type": "question"}}}`),
		"triage/adult": []byte("nodes:\n  a:\n    type: outcome\n"),
	}
	for id, content := range data {
		ext := ".json"
		if id == "triage/adult" {
			ext = ".yaml"
		}
		path := filepath.Join(dir, filepath.FromSlash(id)+ext)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Noise the loader must ignore.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# trees"), 0644); err != nil {
		t.Fatal(err)
	}

	contract.DocumentLoaderContractTest(t, file.NewLoader(dir), data)
}

func TestFileLoader_RejectsEscapes(t *testing.T) {
	loader := file.NewLoader(t.TempDir())
	if _, err := loader.GetDocument("../etc/passwd"); err == nil {
		t.Error("expected error for path escaping the root")
	}
}
