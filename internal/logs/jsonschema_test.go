package logs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestWireSchema(t *testing.T) {
	data, err := json.Marshal(WireSchema())
	require.NoError(t, err)

	doc := gjson.ParseBytes(data)
	require.Equal(t, "#/$defs/NormalizedConversation", doc.Get("$ref").String())

	// Every union must pin its discriminant to the wire strings.
	entryTags := doc.Get(`$defs.NormalizedEntryType.oneOf.#.properties.type.enum.0`)
	require.Equal(t, []string{
		"user_message", "assistant_message", "system_message",
		"error_message", "thinking", "tool_use",
	}, toStrings(entryTags))

	actionTags := doc.Get(`$defs.ActionType.oneOf.#.properties.action.enum.0`)
	require.Equal(t, []string{
		"file_read", "file_edit", "command_run", "search", "web_fetch",
		"tool", "task_create", "plan_presentation", "todo_management", "other",
	}, toStrings(actionTags))

	changeTags := doc.Get(`$defs.FileChange.oneOf.#.properties.action.enum.0`)
	require.Equal(t, []string{"write", "delete", "rename", "edit"}, toStrings(changeTags))

	// Metadata is an executor-private bag and stays out of the contract.
	require.False(t, doc.Get(`$defs.NormalizedEntry.properties.metadata`).Exists())
}

func toStrings(result gjson.Result) []string {
	var out []string
	for _, r := range result.Array() {
		out = append(out, r.String())
	}
	return out
}
