package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlyingStore)

	ctx := context.Background()
	reportID := "test-report"

	// 1. Save
	if err := secureStore.Save(ctx, reportID, sampleReport(reportID)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 2. Verify Underlying Store directly (Should be encrypted)
	stored, err := underlyingStore.Load(ctx, reportID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored.Graph != nil || len(stored.Conflicts) != 0 {
		t.Fatal("Expected graph and conflicts to be hidden in the envelope")
	}
	if stored.Sealed == "" {
		t.Fatal("Expected sealed payload in envelope")
	}
	if stored.DocumentID != "patients" {
		t.Errorf("Expected identifiers to stay visible, got %q", stored.DocumentID)
	}

	// 3. Load via Middleware (Should be decrypted)
	loaded, err := secureStore.Load(ctx, reportID)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.Graph == nil || loaded.Graph.Nodes["q1"].Metadata["patient_ssn"] != "999-99-9999" {
		t.Error("Expected decrypted graph to match the original")
	}
	if len(loaded.Conflicts) != 1 {
		t.Errorf("Expected 1 conflict, got %d", len(loaded.Conflicts))
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	// 1. Save with OLD key
	storeOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	if err := storeOld.Save(ctx, "rotation", sampleReport("rotation")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 2. Load with NEW key (Active) + OLD key (Fallback)
	storeNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)
	if _, err := storeNew.Load(ctx, "rotation"); err != nil {
		t.Fatalf("Load with fallback key failed: %v", err)
	}

	// 3. Without the fallback the report is unreadable
	storeStrict := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(underlyingStore)
	if _, err := storeStrict.Load(ctx, "rotation"); err == nil {
		t.Fatal("Expected decryption to fail without the old key")
	}
}

func TestEncryptionMiddleware_RejectsPlainReports(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()
	_ = underlyingStore.Save(ctx, "plain", sampleReport("plain"))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Load(ctx, "plain"); err == nil || !strings.Contains(err.Error(), "envelope") {
		t.Fatalf("Expected envelope error, got %v", err)
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore())
	ports.RunReportStoreContract(t, store)
}

func TestEncryptionMiddleware_PanicsOnShortKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a 16-byte key")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: make([]byte, 16)})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	for _, encoded := range []string{base64.StdEncoding.EncodeToString(key), hex.EncodeToString(key)} {
		got, err := middleware.ParseKey(encoded)
		if err != nil {
			t.Fatalf("ParseKey(%q) failed: %v", encoded, err)
		}
		if string(got) != string(key) {
			t.Error("decoded key does not match")
		}
	}

	if _, err := middleware.ParseKey("too-short"); err == nil {
		t.Error("Expected error for malformed key")
	}
}
