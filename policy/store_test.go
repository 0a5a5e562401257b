package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/voocel/aegis/schema"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	path := writePolicyFile(t, "allowed_tools:\n  - web_search\n")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	p, err := store.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if !p.IsToolAllowed("web_search") {
		t.Error("expected web_search to be allowed")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error")
	}
	var cfgErr *schema.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected a ConfigError, got %T", err)
	}
	if cfgErr.Source == "" {
		t.Error("expected the file path as error source")
	}
}

func TestCurrentOnEmptyStore(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.Current(); !errors.Is(err, schema.ErrPolicyNotLoaded) {
		t.Errorf("expected ErrPolicyNotLoaded, got %v", err)
	}
}

func TestReloadSwapsSnapshot(t *testing.T) {
	path := writePolicyFile(t, "allowed_tools:\n  - web_search\n")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("allowed_tools:\n  - file_reader\n"), 0o644); err != nil {
		t.Fatalf("rewrite policy file: %v", err)
	}
	if err := store.Reload(path); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	p, err := store.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if p.IsToolAllowed("web_search") {
		t.Error("old allow list still active after reload")
	}
	if !p.IsToolAllowed("file_reader") {
		t.Error("new allow list not active after reload")
	}
}

func TestReloadFailureKeepsOldSnapshot(t *testing.T) {
	path := writePolicyFile(t, "allowed_tools:\n  - web_search\n")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("tool_rules: {}\n"), 0o644); err != nil {
		t.Fatalf("rewrite policy file: %v", err)
	}
	if err := store.Reload(path); err == nil {
		t.Fatal("expected reload to fail on malformed policy")
	}

	p, err := store.Current()
	if err != nil {
		t.Fatalf("Current failed after failed reload: %v", err)
	}
	if !p.IsToolAllowed("web_search") {
		t.Error("previous snapshot lost after failed reload")
	}
}
