package logs

import "encoding/json"

// ExitStatusKind discriminates CommandExitStatus variants on the wire under
// the "type" key.
type ExitStatusKind string

const (
	ExitStatusCode    ExitStatusKind = "exit_code"
	ExitStatusSuccess ExitStatusKind = "success"
)

// CommandExitStatus reports how a command finished. Executors differ in
// what they expose: some report a numeric exit code, others only a boolean
// outcome. Both are representable without coercing one into the other.
type CommandExitStatus struct {
	Kind    ExitStatusKind
	Code    int  // exit_code
	Success bool // success
}

// ExitCode reports a numeric process exit code.
func ExitCode(code int) CommandExitStatus {
	return CommandExitStatus{Kind: ExitStatusCode, Code: code}
}

// SuccessStatus reports a boolean-only outcome.
func SuccessStatus(success bool) CommandExitStatus {
	return CommandExitStatus{Kind: ExitStatusSuccess, Success: success}
}

// Failed reports whether the status represents a failure.
func (s CommandExitStatus) Failed() bool {
	switch s.Kind {
	case ExitStatusCode:
		return s.Code != 0
	case ExitStatusSuccess:
		return !s.Success
	}
	return false
}

// MarshalJSON emits the variant under the "type" discriminant key.
func (s CommandExitStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ExitStatusCode:
		return json.Marshal(struct {
			Type ExitStatusKind `json:"type"`
			Code int            `json:"code"`
		}{s.Kind, s.Code})
	case ExitStatusSuccess:
		return json.Marshal(struct {
			Type    ExitStatusKind `json:"type"`
			Success bool           `json:"success"`
		}{s.Kind, s.Success})
	default:
		return nil, &DecodeError{Union: "CommandExitStatus", Tag: string(s.Kind)}
	}
}

// UnmarshalJSON decodes by the "type" discriminant. Unknown discriminants
// and missing variant fields fail with a DecodeError: a payload without
// "code" must not collapse into exit code zero.
func (s *CommandExitStatus) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Type    ExitStatusKind `json:"type"`
		Code    *int           `json:"code"`
		Success *bool          `json:"success"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return wrapDecode("CommandExitStatus", err)
	}
	switch shadow.Type {
	case ExitStatusCode:
		if shadow.Code == nil {
			return &DecodeError{Union: "CommandExitStatus", Tag: string(shadow.Type), Err: errMissingField("code")}
		}
		*s = CommandExitStatus{Kind: shadow.Type, Code: *shadow.Code}
	case ExitStatusSuccess:
		if shadow.Success == nil {
			return &DecodeError{Union: "CommandExitStatus", Tag: string(shadow.Type), Err: errMissingField("success")}
		}
		*s = CommandExitStatus{Kind: shadow.Type, Success: *shadow.Success}
	default:
		return &DecodeError{Union: "CommandExitStatus", Tag: string(shadow.Type)}
	}
	return nil
}

// CommandRunResult is the result of a completed command. A nil ExitStatus
// or Output means "not yet known" or "not captured", which is distinct from
// a zero code or an empty string.
type CommandRunResult struct {
	ExitStatus *CommandExitStatus `json:"exit_status"`
	Output     *string            `json:"output"`
}

// ToolResultKind discriminates ToolResultValueType variants on the wire
// under the "type" key.
type ToolResultKind string

const (
	ToolResultMarkdown ToolResultKind = "markdown"
	ToolResultJSON     ToolResultKind = "json"
)

// ToolResultValueType tells a consumer how to interpret a ToolResult's
// value. Consumers must branch on it before touching the value; the value's
// shape alone is not authoritative.
type ToolResultValueType struct {
	Kind ToolResultKind
}

// MarshalJSON emits the variant under the "type" discriminant key.
func (t ToolResultValueType) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case ToolResultMarkdown, ToolResultJSON:
		return json.Marshal(struct {
			Type ToolResultKind `json:"type"`
		}{t.Kind})
	default:
		return nil, &DecodeError{Union: "ToolResultValueType", Tag: string(t.Kind)}
	}
}

// UnmarshalJSON decodes by the "type" discriminant; unknown discriminants
// fail with a DecodeError.
func (t *ToolResultValueType) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Type ToolResultKind `json:"type"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return wrapDecode("ToolResultValueType", err)
	}
	switch shadow.Type {
	case ToolResultMarkdown, ToolResultJSON:
		*t = ToolResultValueType{Kind: shadow.Type}
	default:
		return &DecodeError{Union: "ToolResultValueType", Tag: string(shadow.Type)}
	}
	return nil
}

// ToolResult is the generic result payload of a tool action. For markdown,
// Value holds a JSON-encoded string; for json, a structured value. The
// wire shape is uniform across both cases.
type ToolResult struct {
	Type  ToolResultValueType `json:"type"`
	Value json.RawMessage     `json:"value"`
}

// MarkdownResult wraps rendered markdown text as a tool result.
func MarkdownResult(markdown string) *ToolResult {
	value, _ := json.Marshal(markdown)
	return &ToolResult{Type: ToolResultValueType{Kind: ToolResultMarkdown}, Value: value}
}

// JSONResult wraps a structured value as a tool result.
func JSONResult(value json.RawMessage) *ToolResult {
	return &ToolResult{Type: ToolResultValueType{Kind: ToolResultJSON}, Value: value}
}

// Markdown returns the markdown text when Type says markdown.
func (r *ToolResult) Markdown() (string, bool) {
	if r.Type.Kind != ToolResultMarkdown {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// TodoItem is one todo-list entry. Status and priority are free-form;
// executors use varying vocabularies, so they are deliberately not closed
// enums.
type TodoItem struct {
	Content  string  `json:"content"`
	Status   string  `json:"status"`
	Priority *string `json:"priority,omitempty"`
}
