// ABOUTME: Tests for MCP server creation and validation.
// ABOUTME: Verifies the server requires a post store.
package mcp

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/2389-research/postboard/internal/storage"
)

func TestNewServerRequiresStore(t *testing.T) {
	_, err := NewServer(nil)
	if err == nil {
		t.Error("expected error when post store is nil")
	}
}

func TestNewServerSuccess(t *testing.T) {
	store, _ := storage.NewJSONFileStore(filepath.Join(t.TempDir(), "data.json"), nil)

	server, err := NewServer(store, WithLogger(slog.Default()))
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if server == nil {
		t.Error("expected non-nil server")
	}
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	store, _ := storage.NewJSONFileStore(filepath.Join(t.TempDir(), "data.json"), nil)

	server, err := NewServer(store, WithLogger(nil))
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if server.log == nil {
		t.Error("expected default logger to be kept")
	}
}
