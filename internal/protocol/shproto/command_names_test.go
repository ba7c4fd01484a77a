package shproto

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCommandNames_DefaultAndFallback(t *testing.T) {
	names := DefaultCommandNames()
	if got := names.Name(0x01); got != "ping" {
		t.Fatalf("0x01: got %q want ping", got)
	}
	if got := names.Name(0x7F); got != "cmd_0x7F" {
		t.Fatalf("fallback: got %q", got)
	}
}

func TestLoadCommandNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yaml")
	content := []byte("map:\n  0x01: hello\n  0x30: custom_report\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	names, err := LoadCommandNames(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := names.Name(0x30); got != "custom_report" {
		t.Fatalf("0x30: got %q", got)
	}
	if got := names.Name(0x01); got != "hello" {
		t.Fatalf("0x01: got %q", got)
	}
}

func TestLoadCommandNames_MissingFile(t *testing.T) {
	if _, err := LoadCommandNames("/nonexistent/names.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
