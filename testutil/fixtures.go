package testutil

import (
	"encoding/json"
	"testing"

	"github.com/kestrelhq/normlog/internal/logs"
)

// SampleConversation builds a conversation exercising every entry type and
// action variant, for round-trip and export tests.
func SampleConversation() *logs.NormalizedConversation {
	output := "compiled ok"
	status := logs.ExitCode(0)
	priority := "high"

	entries := []logs.NormalizedEntry{
		stamped("2024-05-01T10:00:00Z", logs.NewEntry(logs.UserMessage(), "please fix the build")),
		logs.NewEntry(logs.Thinking(), "the failure is in the parser"),
		logs.NewEntry(logs.ToolUse("read", logs.FileRead("parser.go")), "Read file: parser.go"),
		logs.NewEntry(logs.ToolUse("edit", logs.FileEdit("parser.go", []logs.FileChange{
			logs.WriteChange("package parser\n"),
			logs.EditChange("--- parser.go\n+++ parser.go\n@@ -1 +1 @@\n-package parser\n+package parser2\n", false),
			logs.RenameChange("parser2.go"),
		})), "Edit file: parser.go"),
		logs.NewEntry(logs.ToolUse("go", logs.CommandRun("go build ./...", &logs.CommandRunResult{
			ExitStatus: &status,
			Output:     &output,
		})), "$ go build ./..."),
		logs.NewEntry(logs.ToolUse("search", logs.Search("func Parse")), "Search: func Parse"),
		logs.NewEntry(logs.ToolUse("fetch", logs.WebFetch("https://example.com/spec")), "Fetch: https://example.com/spec"),
		logs.NewEntry(logs.ToolUse("linter", logs.Tool("linter", json.RawMessage(`{"paths":["."]}`), logs.MarkdownResult("no issues"))), "tool call: linter"),
		logs.NewEntry(logs.ToolUse("task", logs.TaskCreate("split the parser package")), "task created"),
		logs.NewEntry(logs.ToolUse("plan", logs.PlanPresentation("1. fix build\n2. add tests")), "Plan:"),
		logs.NewEntry(logs.ToolUse("todo", logs.TodoManagement([]logs.TodoItem{
			{Content: "fix build", Status: "completed", Priority: &priority},
			{Content: "add tests", Status: "pending"},
		}, "update")), "- [x] fix build\n- [ ] add tests"),
		logs.NewEntry(logs.ToolUse("mystery", logs.Other("unrecognized tool output")), "???"),
		logs.NewEntry(logs.SystemMessage(), "executor finished"),
		logs.NewEntry(logs.ErrorMessage(), "warning: deprecated flag"),
		logs.NewEntry(logs.AssistantMessage(), "done, the build is green"),
	}

	return &logs.NormalizedConversation{
		Entries:      entries,
		SessionID:    logs.Ptr("sess-42"),
		ExecutorType: "sampletool",
		Prompt:       logs.Ptr("please fix the build"),
		Summary:      logs.Ptr("fixed the parser build"),
	}
}

// MinimalConversation builds a small conversation for tests that don't
// need the full variant coverage.
func MinimalConversation(executorType string) *logs.NormalizedConversation {
	return &logs.NormalizedConversation{
		Entries: []logs.NormalizedEntry{
			logs.NewEntry(logs.UserMessage(), "hello"),
			logs.NewEntry(logs.AssistantMessage(), "hi"),
		},
		ExecutorType: executorType,
	}
}

// EncodeConversation marshals a conversation for fixture files.
func EncodeConversation(t *testing.T, conv *logs.NormalizedConversation) []byte {
	t.Helper()
	data, err := json.Marshal(conv)
	if err != nil {
		t.Fatalf("Failed to marshal conversation: %v", err)
	}
	return data
}

func stamped(timestamp string, entry logs.NormalizedEntry) logs.NormalizedEntry {
	entry.Timestamp = logs.Ptr(timestamp)
	return entry
}
