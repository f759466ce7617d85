// Package logs defines the normalized log schema shared by every executor
// adapter: one uniform stream of structured entries representing what an
// external coding-agent tool did (messages, file edits, commands, searches,
// generic tool calls), plus the JSON wire contract those entries serialize
// to. The discriminant strings emitted here are consumed by renderers in
// other languages and must not change.
package logs

import "encoding/json"

// NormalizedConversation is the top-level container for one executor
// session. Entries are chronological; insertion order is meaningful.
type NormalizedConversation struct {
	Entries      []NormalizedEntry `json:"entries"`
	SessionID    *string           `json:"session_id"`
	ExecutorType string            `json:"executor_type"`
	Prompt       *string           `json:"prompt"`
	Summary      *string           `json:"summary"`
}

// NormalizedEntry is one unit of conversational/action log. Content is
// always present, even for tool-use entries, as a fallback summary.
// Metadata is an executor-specific details bag and is not part of the
// portable contract.
type NormalizedEntry struct {
	Timestamp *string             `json:"timestamp"`
	EntryType NormalizedEntryType `json:"entry_type"`
	Content   string              `json:"content"`
	Metadata  json.RawMessage     `json:"metadata,omitempty"`
}

// NewEntry constructs an entry from an entry type and content. Construction
// cannot fail; the caller is expected to have already interpreted the raw
// tool output.
func NewEntry(entryType NormalizedEntryType, content string) NormalizedEntry {
	return NormalizedEntry{EntryType: entryType, Content: content}
}

// EntryKind discriminates NormalizedEntryType variants on the wire.
type EntryKind string

const (
	EntryUserMessage      EntryKind = "user_message"
	EntryAssistantMessage EntryKind = "assistant_message"
	EntrySystemMessage    EntryKind = "system_message"
	EntryErrorMessage     EntryKind = "error_message"
	EntryThinking         EntryKind = "thinking"
	EntryToolUse          EntryKind = "tool_use"
)

// NormalizedEntryType is a tagged union. Kind selects the variant; ToolName
// and Action are populated only for EntryToolUse.
type NormalizedEntryType struct {
	Kind     EntryKind
	ToolName string
	Action   *ActionType
}

// UserMessage returns the user_message entry type.
func UserMessage() NormalizedEntryType { return NormalizedEntryType{Kind: EntryUserMessage} }

// AssistantMessage returns the assistant_message entry type.
func AssistantMessage() NormalizedEntryType { return NormalizedEntryType{Kind: EntryAssistantMessage} }

// SystemMessage returns the system_message entry type.
func SystemMessage() NormalizedEntryType { return NormalizedEntryType{Kind: EntrySystemMessage} }

// ErrorMessage returns the error_message entry type.
func ErrorMessage() NormalizedEntryType { return NormalizedEntryType{Kind: EntryErrorMessage} }

// Thinking returns the thinking entry type.
func Thinking() NormalizedEntryType { return NormalizedEntryType{Kind: EntryThinking} }

// ToolUse returns a tool_use entry type carrying the tool name and the
// structured description of what the call did.
func ToolUse(toolName string, action ActionType) NormalizedEntryType {
	return NormalizedEntryType{Kind: EntryToolUse, ToolName: toolName, Action: &action}
}

// MarshalJSON emits the variant under the "type" discriminant key.
func (t NormalizedEntryType) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case EntryToolUse:
		return json.Marshal(struct {
			Type     EntryKind   `json:"type"`
			ToolName string      `json:"tool_name"`
			Action   *ActionType `json:"action_type"`
		}{t.Kind, t.ToolName, t.Action})
	case EntryUserMessage, EntryAssistantMessage, EntrySystemMessage, EntryErrorMessage, EntryThinking:
		return json.Marshal(struct {
			Type EntryKind `json:"type"`
		}{t.Kind})
	default:
		return nil, &DecodeError{Union: "NormalizedEntryType", Tag: string(t.Kind)}
	}
}

// UnmarshalJSON decodes a variant by its "type" discriminant. Unrecognized
// discriminants fail with a DecodeError rather than defaulting.
func (t *NormalizedEntryType) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Type     EntryKind   `json:"type"`
		ToolName *string     `json:"tool_name"`
		Action   *ActionType `json:"action_type"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return wrapDecode("NormalizedEntryType", err)
	}
	switch shadow.Type {
	case EntryToolUse:
		if shadow.ToolName == nil {
			return &DecodeError{Union: "NormalizedEntryType", Tag: string(shadow.Type), Err: errMissingField("tool_name")}
		}
		if shadow.Action == nil {
			return &DecodeError{Union: "NormalizedEntryType", Tag: string(shadow.Type), Err: errMissingField("action_type")}
		}
		*t = NormalizedEntryType{Kind: shadow.Type, ToolName: *shadow.ToolName, Action: shadow.Action}
	case EntryUserMessage, EntryAssistantMessage, EntrySystemMessage, EntryErrorMessage, EntryThinking:
		*t = NormalizedEntryType{Kind: shadow.Type}
	default:
		return &DecodeError{Union: "NormalizedEntryType", Tag: string(shadow.Type)}
	}
	return nil
}

// DecodeConversation decodes a serialized conversation. A DecodeError from
// any nested union aborts this decode only; callers that want per-entry
// degradation should decode entries individually (see DecodeEntry).
func DecodeConversation(data []byte) (*NormalizedConversation, error) {
	var conv NormalizedConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, wrapDecode("NormalizedConversation", err)
	}
	return &conv, nil
}

// DecodeEntry decodes a single serialized entry.
func DecodeEntry(data []byte) (NormalizedEntry, error) {
	var entry NormalizedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return NormalizedEntry{}, wrapDecode("NormalizedEntry", err)
	}
	return entry, nil
}

// Ptr returns a pointer to v. Convenience for the schema's optional fields.
func Ptr[T any](v T) *T { return &v }
