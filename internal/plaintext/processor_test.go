package plaintext

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelhq/normlog/internal/logs"
)

func collect(t *testing.T, input string) []logs.NormalizedEntry {
	t.Helper()
	conv, err := New("testtool").Collect(context.Background(), strings.NewReader(input), "")
	require.NoError(t, err)
	return conv.Entries
}

func TestFileReadLine(t *testing.T) {
	entries := collect(t, "Read file: src/main.go\n")
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, logs.EntryToolUse, entry.EntryType.Kind)
	assert.Equal(t, "read", entry.EntryType.ToolName)
	require.NotNil(t, entry.EntryType.Action)
	assert.Equal(t, logs.ActionFileRead, entry.EntryType.Action.Kind)
	assert.Equal(t, "src/main.go", entry.EntryType.Action.Path)
	assert.NotEmpty(t, entry.Content)
}

func TestCommandWithExitTrailer(t *testing.T) {
	entries := collect(t, "$ go test ./...\nexit 1\n")
	require.Len(t, entries, 1)

	action := entries[0].EntryType.Action
	require.NotNil(t, action)
	assert.Equal(t, logs.ActionCommandRun, action.Kind)
	assert.Equal(t, "go test ./...", action.Command)
	assert.Equal(t, "go", entries[0].EntryType.ToolName)
	require.NotNil(t, action.Result)
	require.NotNil(t, action.Result.ExitStatus)
	assert.Equal(t, logs.ExitStatusCode, action.Result.ExitStatus.Kind)
	assert.Equal(t, 1, action.Result.ExitStatus.Code)
}

func TestCommandInlineExit(t *testing.T) {
	entries := collect(t, "$ make build [exit 2]\n")
	require.Len(t, entries, 1)

	action := entries[0].EntryType.Action
	require.NotNil(t, action)
	assert.Equal(t, "make build", action.Command)
	require.NotNil(t, action.Result)
	assert.Equal(t, 2, action.Result.ExitStatus.Code)
}

func TestCommandWithoutResult(t *testing.T) {
	entries := collect(t, "$ sleep 100\nsome unrelated output\n")
	require.Len(t, entries, 2)

	action := entries[0].EntryType.Action
	require.NotNil(t, action)
	assert.Equal(t, logs.ActionCommandRun, action.Kind)
	assert.Nil(t, action.Result, "result stays unknown without a trailer")
	assert.Equal(t, logs.EntryAssistantMessage, entries[1].EntryType.Kind)
}

func TestEditFileWithDiff(t *testing.T) {
	input := strings.Join([]string{
		"Edit file: pkg/util.go",
		"--- pkg/util.go",
		"+++ pkg/util.go",
		"@@ -1 +1 @@",
		"-old",
		"+new",
		"",
		"done editing",
	}, "\n")

	entries := collect(t, input)
	require.Len(t, entries, 2)

	action := entries[0].EntryType.Action
	require.NotNil(t, action)
	assert.Equal(t, logs.ActionFileEdit, action.Kind)
	assert.Equal(t, "pkg/util.go", action.Path)
	require.Len(t, action.Changes, 1)
	change := action.Changes[0]
	assert.Equal(t, logs.ChangeEdit, change.Kind)
	assert.False(t, change.HasLineNumbers, "plain-text diffs have untrusted anchors")
	assert.Contains(t, change.UnifiedDiff, "-old")
	assert.Contains(t, change.UnifiedDiff, "+new")
}

func TestSearchAndFetch(t *testing.T) {
	entries := collect(t, "Search: normalize entries\nFetch: https://example.com/doc\n")
	require.Len(t, entries, 2)

	assert.Equal(t, logs.ActionSearch, entries[0].EntryType.Action.Kind)
	assert.Equal(t, "normalize entries", entries[0].EntryType.Action.Query)
	assert.Equal(t, logs.ActionWebFetch, entries[1].EntryType.Action.Kind)
	assert.Equal(t, "https://example.com/doc", entries[1].EntryType.Action.URL)
}

func TestPlanBlock(t *testing.T) {
	entries := collect(t, "Plan:\n1. read the code\n2. fix it\n\nok\n")
	require.Len(t, entries, 2)

	action := entries[0].EntryType.Action
	require.NotNil(t, action)
	assert.Equal(t, logs.ActionPlanPresentation, action.Kind)
	assert.Equal(t, "1. read the code\n2. fix it", action.Plan)
}

func TestChecklistBecomesTodos(t *testing.T) {
	entries := collect(t, "- [x] write parser\n- [~] write tests\n- [ ] ship it\n")
	require.Len(t, entries, 1)

	action := entries[0].EntryType.Action
	require.NotNil(t, action)
	assert.Equal(t, logs.ActionTodoManagement, action.Kind)
	assert.Equal(t, "update", action.Operation)
	require.Len(t, action.Todos, 3)
	assert.Equal(t, "completed", action.Todos[0].Status)
	assert.Equal(t, "in_progress", action.Todos[1].Status)
	assert.Equal(t, "pending", action.Todos[2].Status)
	assert.Equal(t, "ship it", action.Todos[2].Content)
}

func TestThinkingAndErrorLines(t *testing.T) {
	entries := collect(t, "thinking: what if the cache is stale\nError: connection refused\n")
	require.Len(t, entries, 2)
	assert.Equal(t, logs.EntryThinking, entries[0].EntryType.Kind)
	assert.Equal(t, "what if the cache is stale", entries[0].Content)
	assert.Equal(t, logs.EntryErrorMessage, entries[1].EntryType.Kind)
	assert.Equal(t, "connection refused", entries[1].Content)
}

func TestJSONToolLine(t *testing.T) {
	entries := collect(t, `{"tool_name":"code_search","arguments":{"query":"foo"}}`+"\n")
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "code_search", entry.EntryType.ToolName)
	action := entry.EntryType.Action
	require.NotNil(t, action)
	assert.Equal(t, logs.ActionTool, action.Kind)
	assert.Equal(t, "code_search", action.ToolName)
	assert.JSONEq(t, `{"query":"foo"}`, string(action.Arguments))
}

func TestTimestampPrefix(t *testing.T) {
	entries := collect(t, "[2024-05-01T10:00:00Z] Read file: a.go\n")
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Timestamp)
	assert.Equal(t, "2024-05-01T10:00:00Z", *entries[0].Timestamp)
}

func TestPlainLinesCoalesce(t *testing.T) {
	entries := collect(t, "I will now\nfix the bug\n\nnext paragraph\n")
	require.Len(t, entries, 2)
	assert.Equal(t, "I will now\nfix the bug", entries[0].Content)
	assert.Equal(t, "next paragraph", entries[1].Content)
	assert.Equal(t, logs.EntryAssistantMessage, entries[0].EntryType.Kind)
}

func TestUserPrefixBecomesPrompt(t *testing.T) {
	conv, err := New("testtool").Collect(context.Background(),
		strings.NewReader("user: fix the flaky test\nworking on it\n"), "sess-9")
	require.NoError(t, err)

	require.Len(t, conv.Entries, 2)
	assert.Equal(t, logs.EntryUserMessage, conv.Entries[0].EntryType.Kind)
	require.NotNil(t, conv.Prompt)
	assert.Equal(t, "fix the flaky test", *conv.Prompt)
	require.NotNil(t, conv.SessionID)
	assert.Equal(t, "sess-9", *conv.SessionID)
	assert.Equal(t, "testtool", conv.ExecutorType)
}

// Three raw lines: a file read, a command with exit code 1, and a tool call
// nobody recognizes. All three must normalize; the unknown tool degrades to
// the generic action, never to a failure.
func TestUnrecognizedToolNeverFails(t *testing.T) {
	input := "Read file: a.txt\n" +
		"$ make build [exit 1]\n" +
		`{"tool":"quantum_refactor","args":{"depth":3}}` + "\n"

	entries := collect(t, input)
	require.Len(t, entries, 3)

	assert.Equal(t, logs.ActionFileRead, entries[0].EntryType.Action.Kind)
	assert.Equal(t, 1, entries[1].EntryType.Action.Result.ExitStatus.Code)

	third := entries[2].EntryType.Action
	require.NotNil(t, third)
	assert.Contains(t, []logs.ActionKind{logs.ActionTool, logs.ActionOther}, third.Kind)
	assert.Equal(t, "quantum_refactor", third.ToolName)
}

func TestCancelledContextStopsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("testtool").Collect(ctx, strings.NewReader("line\n"), "")
	assert.Error(t, err)
}

// brokenReader yields its data and then fails instead of reaching EOF.
type brokenReader struct {
	r   io.Reader
	err error
}

func (b *brokenReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		return n, b.err
	}
	return n, err
}

// A mid-stream read failure must surface as an error, and the torn last
// line must not be passed off as a complete entry.
func TestReadFailureSurfaces(t *testing.T) {
	readErr := errors.New("pipe broke")
	r := &brokenReader{r: strings.NewReader("Read file: a.go\n$ go te"), err: readErr}

	_, err := New("testtool").Collect(context.Background(), r, "")
	require.ErrorIs(t, err, readErr)
}

func TestReadFailureDropsTornTail(t *testing.T) {
	readErr := errors.New("pipe broke")
	r := &brokenReader{r: strings.NewReader("Read file: a.go\n$ go te"), err: readErr}

	stream := New("testtool").Process(context.Background(), r)
	var entries []logs.NormalizedEntry
	for entry := range stream.Entries() {
		entries = append(entries, entry)
	}
	require.ErrorIs(t, stream.Err(), readErr)

	// Only the complete first line became an entry; the truncated command
	// was dropped.
	require.Len(t, entries, 1)
	assert.Equal(t, logs.ActionFileRead, entries[0].EntryType.Action.Kind)
}
