package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelhq/normlog/internal/logs"
)

// TempArchivePath returns an archive database path inside a per-test temp
// directory.
func TempArchivePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "archive.db")
}

// WriteConversationFile serializes a conversation to a temp file and
// returns its path, for tests that feed files to commands.
func WriteConversationFile(t *testing.T, conv *logs.NormalizedConversation) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversation.json")
	if err := os.WriteFile(path, EncodeConversation(t, conv), 0644); err != nil {
		t.Fatalf("Failed to write conversation file: %v", err)
	}
	return path
}
