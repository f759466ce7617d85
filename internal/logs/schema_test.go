package logs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestEntryTypeRoundTrip(t *testing.T) {
	output := "hello\n"
	status := ExitCode(1)

	tests := []struct {
		name string
		in   NormalizedEntryType
	}{
		{"user message", UserMessage()},
		{"assistant message", AssistantMessage()},
		{"system message", SystemMessage()},
		{"error message", ErrorMessage()},
		{"thinking", Thinking()},
		{"tool use file read", ToolUse("read", FileRead("main.go"))},
		{"tool use file edit", ToolUse("edit", FileEdit("main.go", []FileChange{
			WriteChange("package main\n"),
			EditChange("--- main.go\n+++ main.go\n@@ -1 +1 @@\n-a\n+b\n", true),
			RenameChange("cmd/main.go"),
			DeleteChange(),
		}))},
		{"tool use command without result", ToolUse("bash", CommandRun("ls -la", nil))},
		{"tool use command with result", ToolUse("bash", CommandRun("cat x", &CommandRunResult{
			ExitStatus: &status,
			Output:     &output,
		}))},
		{"tool use search", ToolUse("grep", Search("TODO"))},
		{"tool use web fetch", ToolUse("fetch", WebFetch("https://example.com"))},
		{"tool use generic tool", ToolUse("linter", Tool("linter", json.RawMessage(`{"paths":["."]}`), JSONResult(json.RawMessage(`{"issues":0}`))))},
		{"tool use generic tool markdown result", ToolUse("docs", Tool("docs", nil, MarkdownResult("# ok")))},
		{"tool use generic tool bare", ToolUse("noop", Tool("noop", nil, nil))},
		{"tool use task create", ToolUse("task", TaskCreate("do the thing"))},
		{"tool use plan", ToolUse("plan", PlanPresentation("1. a\n2. b"))},
		{"tool use todos", ToolUse("todo", TodoManagement([]TodoItem{
			{Content: "a", Status: "pending"},
			{Content: "b", Status: "done", Priority: Ptr("low")},
		}, "add"))},
		{"tool use other", ToolUse("mystery", Other("unclassifiable output"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)

			var got NormalizedEntryType
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestExitStatusRoundTrip(t *testing.T) {
	for _, status := range []CommandExitStatus{
		ExitCode(0),
		ExitCode(127),
		ExitCode(-1),
		SuccessStatus(true),
		SuccessStatus(false),
	} {
		data, err := json.Marshal(status)
		require.NoError(t, err)

		var got CommandExitStatus
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, status, got)
	}
}

func TestDiscriminantStability(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		key  string
		want string
	}{
		{"file read", FileRead("a.txt"), "action", "file_read"},
		{"file edit", FileEdit("a.txt", nil), "action", "file_edit"},
		{"command run", CommandRun("ls", nil), "action", "command_run"},
		{"search", Search("q"), "action", "search"},
		{"web fetch", WebFetch("https://x"), "action", "web_fetch"},
		{"tool", Tool("t", nil, nil), "action", "tool"},
		{"task create", TaskCreate("d"), "action", "task_create"},
		{"plan presentation", PlanPresentation("p"), "action", "plan_presentation"},
		{"todo management", TodoManagement(nil, "add"), "action", "todo_management"},
		{"other", Other("d"), "action", "other"},
		{"change write", WriteChange("c"), "action", "write"},
		{"change delete", DeleteChange(), "action", "delete"},
		{"change rename", RenameChange("b"), "action", "rename"},
		{"change edit", EditChange("diff", true), "action", "edit"},
		{"user message", UserMessage(), "type", "user_message"},
		{"tool use", ToolUse("x", Other("d")), "type", "tool_use"},
		{"exit code", ExitCode(1), "type", "exit_code"},
		{"success", SuccessStatus(true), "type", "success"},
		{"markdown result", MarkdownResult("m").Type, "type", "markdown"},
		{"json result", JSONResult(json.RawMessage(`1`)).Type, "type", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gjson.GetBytes(data, tt.key).Str)
		})
	}
}

func TestEditChangeWire(t *testing.T) {
	data, err := json.Marshal(EditChange("--- a\n+++ b\n@@ -1 +1 @@\n-x\n+y\n", true))
	require.NoError(t, err)
	assert.Equal(t, "edit", gjson.GetBytes(data, "action").Str)
	assert.True(t, gjson.GetBytes(data, "has_line_numbers").Bool())
	assert.True(t, gjson.GetBytes(data, "unified_diff").Exists())
}

func TestUnknownDiscriminantFails(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		into    json.Unmarshaler
		union   string
	}{
		{"entry type", `{"type":"banana"}`, &NormalizedEntryType{}, "NormalizedEntryType"},
		{"entry type missing tag", `{}`, &NormalizedEntryType{}, "NormalizedEntryType"},
		{"action type", `{"action":"banana"}`, &ActionType{}, "ActionType"},
		{"file change", `{"action":"truncate"}`, &FileChange{}, "FileChange"},
		{"exit status", `{"type":"signal","code":9}`, &CommandExitStatus{}, "CommandExitStatus"},
		{"tool result value type", `{"type":"xml"}`, &ToolResultValueType{}, "ToolResultValueType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := json.Unmarshal([]byte(tt.payload), tt.into)
			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tt.union, decodeErr.Union)
		})
	}
}

func TestNestedUnknownDiscriminantSurfaces(t *testing.T) {
	// An unknown FileChange tag nested three unions deep still fails the
	// whole entry decode; it is never silently dropped.
	payload := `{
		"timestamp": null,
		"entry_type": {
			"type": "tool_use",
			"tool_name": "edit",
			"action_type": {
				"action": "file_edit",
				"path": "a.go",
				"changes": [{"action": "truncate"}]
			}
		},
		"content": "edit"
	}`
	_, err := DecodeEntry([]byte(payload))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "FileChange", decodeErr.Union)
	assert.Equal(t, "truncate", decodeErr.Tag)
}

func TestMalformedPayloadFails(t *testing.T) {
	_, err := DecodeEntry([]byte(`{"entry_type": "not an object"`))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)

	// tool_use without its action_type payload is structurally malformed.
	err = json.Unmarshal([]byte(`{"type":"tool_use","tool_name":"x"}`), &NormalizedEntryType{})
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "tool_use", decodeErr.Tag)
}

// A recognized discriminant with a required variant field absent must fail,
// never zero-default: {"type":"exit_code"} is "code unknown", not "exited
// with code 0".
func TestMissingVariantFieldFails(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		into    json.Unmarshaler
		union   string
		tag     string
	}{
		{"exit code without code", `{"type":"exit_code"}`, &CommandExitStatus{}, "CommandExitStatus", "exit_code"},
		{"exit code with null code", `{"type":"exit_code","code":null}`, &CommandExitStatus{}, "CommandExitStatus", "exit_code"},
		{"success without flag", `{"type":"success"}`, &CommandExitStatus{}, "CommandExitStatus", "success"},
		{"file read without path", `{"action":"file_read"}`, &ActionType{}, "ActionType", "file_read"},
		{"file edit without changes", `{"action":"file_edit","path":"a.go"}`, &ActionType{}, "ActionType", "file_edit"},
		{"command run without command", `{"action":"command_run"}`, &ActionType{}, "ActionType", "command_run"},
		{"search without query", `{"action":"search"}`, &ActionType{}, "ActionType", "search"},
		{"web fetch without url", `{"action":"web_fetch"}`, &ActionType{}, "ActionType", "web_fetch"},
		{"tool without name", `{"action":"tool"}`, &ActionType{}, "ActionType", "tool"},
		{"task create without description", `{"action":"task_create"}`, &ActionType{}, "ActionType", "task_create"},
		{"plan without body", `{"action":"plan_presentation"}`, &ActionType{}, "ActionType", "plan_presentation"},
		{"todos without operation", `{"action":"todo_management","todos":[]}`, &ActionType{}, "ActionType", "todo_management"},
		{"write without content", `{"action":"write"}`, &FileChange{}, "FileChange", "write"},
		{"rename without new path", `{"action":"rename"}`, &FileChange{}, "FileChange", "rename"},
		{"edit without diff", `{"action":"edit","has_line_numbers":true}`, &FileChange{}, "FileChange", "edit"},
		{"edit without anchor flag", `{"action":"edit","unified_diff":"d"}`, &FileChange{}, "FileChange", "edit"},
		{"tool use without tool name", `{"type":"tool_use","action_type":{"action":"other","description":"x"}}`, &NormalizedEntryType{}, "NormalizedEntryType", "tool_use"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := json.Unmarshal([]byte(tt.payload), tt.into)
			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tt.union, decodeErr.Union)
			assert.Equal(t, tt.tag, decodeErr.Tag)
		})
	}
}

// Optional fields stay optional: these are the minimal valid payloads of
// the variants that carry them.
func TestOptionalVariantFieldsMayBeAbsent(t *testing.T) {
	var action ActionType
	require.NoError(t, json.Unmarshal([]byte(`{"action":"command_run","command":"ls"}`), &action))
	assert.Nil(t, action.Result)

	require.NoError(t, json.Unmarshal([]byte(`{"action":"tool","tool_name":"linter"}`), &action))
	assert.Nil(t, action.Arguments)
	assert.Nil(t, action.ToolResult)

	require.NoError(t, json.Unmarshal([]byte(`{"action":"delete"}`), &FileChange{}))
}

func TestResultAbsenceIsNotEmptiness(t *testing.T) {
	unknown := CommandRunResult{}
	status := ExitCode(0)
	empty := CommandRunResult{ExitStatus: &status, Output: Ptr("")}

	unknownWire, err := json.Marshal(unknown)
	require.NoError(t, err)
	emptyWire, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.NotEqual(t, string(unknownWire), string(emptyWire))

	var unknownBack, emptyBack CommandRunResult
	require.NoError(t, json.Unmarshal(unknownWire, &unknownBack))
	require.NoError(t, json.Unmarshal(emptyWire, &emptyBack))

	assert.Nil(t, unknownBack.ExitStatus)
	assert.Nil(t, unknownBack.Output)
	require.NotNil(t, emptyBack.ExitStatus)
	require.NotNil(t, emptyBack.Output)
	assert.Equal(t, 0, emptyBack.ExitStatus.Code)
	assert.Equal(t, "", *emptyBack.Output)
}

func TestConversationRoundTrip(t *testing.T) {
	conv := NormalizedConversation{
		Entries: []NormalizedEntry{
			{
				Timestamp: Ptr("2024-05-01T10:00:00Z"),
				EntryType: UserMessage(),
				Content:   "hi",
				Metadata:  json.RawMessage(`{"raw":"user: hi"}`),
			},
			NewEntry(ToolUse("bash", CommandRun("true", nil)), "$ true"),
		},
		SessionID:    Ptr("s-1"),
		ExecutorType: "sometool",
		Prompt:       Ptr("hi"),
	}

	data, err := json.Marshal(&conv)
	require.NoError(t, err)

	got, err := DecodeConversation(data)
	require.NoError(t, err)
	assert.Equal(t, &conv, got)
}

func TestNewEntry(t *testing.T) {
	entry := NewEntry(Thinking(), "hmm")
	if entry.Content != "hmm" {
		t.Errorf("NewEntry content = %q, want %q", entry.Content, "hmm")
	}
	if entry.EntryType.Kind != EntryThinking {
		t.Errorf("NewEntry kind = %q, want %q", entry.EntryType.Kind, EntryThinking)
	}
	if entry.Timestamp != nil || entry.Metadata != nil {
		t.Error("NewEntry should leave optional fields unset")
	}
}

func TestToolResultMarkdownAccessor(t *testing.T) {
	md := MarkdownResult("# title")
	got, ok := md.Markdown()
	require.True(t, ok)
	assert.Equal(t, "# title", got)

	js := JSONResult(json.RawMessage(`{"a":1}`))
	_, ok = js.Markdown()
	assert.False(t, ok, "json results must not be interpreted as markdown")
}
