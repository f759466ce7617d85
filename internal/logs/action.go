package logs

import "encoding/json"

// ActionKind discriminates ActionType variants on the wire under the
// "action" key.
type ActionKind string

const (
	ActionFileRead         ActionKind = "file_read"
	ActionFileEdit         ActionKind = "file_edit"
	ActionCommandRun       ActionKind = "command_run"
	ActionSearch           ActionKind = "search"
	ActionWebFetch         ActionKind = "web_fetch"
	ActionTool             ActionKind = "tool"
	ActionTaskCreate       ActionKind = "task_create"
	ActionPlanPresentation ActionKind = "plan_presentation"
	ActionTodoManagement   ActionKind = "todo_management"
	ActionOther            ActionKind = "other"
)

// ActionType describes what a tool call did. It is a tagged union: Kind
// selects the variant and only that variant's fields are populated. The
// union is closed but wide; Tool and Other guarantee every input is
// representable, so adapters never fail to produce an entry just because a
// tool type is unrecognized.
type ActionType struct {
	Kind ActionKind

	Path        string            // file_read, file_edit
	Changes     []FileChange      // file_edit
	Command     string            // command_run
	Result      *CommandRunResult // command_run
	Query       string            // search
	URL         string            // web_fetch
	ToolName    string            // tool
	Arguments   json.RawMessage   // tool
	ToolResult  *ToolResult       // tool
	Description string            // task_create, other
	Plan        string            // plan_presentation
	Todos       []TodoItem        // todo_management
	Operation   string            // todo_management
}

// FileRead records that a tool read a file.
func FileRead(path string) ActionType {
	return ActionType{Kind: ActionFileRead, Path: path}
}

// FileEdit records that a tool mutated a file. Changes are ordered and each
// one applies to the result of the previous (see Replay).
func FileEdit(path string, changes []FileChange) ActionType {
	return ActionType{Kind: ActionFileEdit, Path: path, Changes: changes}
}

// CommandRun records that a tool ran a shell command. result is nil until
// the command completes.
func CommandRun(command string, result *CommandRunResult) ActionType {
	return ActionType{Kind: ActionCommandRun, Command: command, Result: result}
}

// Search records that a tool performed a search.
func Search(query string) ActionType {
	return ActionType{Kind: ActionSearch, Query: query}
}

// WebFetch records that a tool fetched a URL.
func WebFetch(url string) ActionType {
	return ActionType{Kind: ActionWebFetch, URL: url}
}

// Tool is the generic fallback for any tool not covered by a dedicated
// variant. arguments and result are opaque structured payloads kept for
// rich rendering.
func Tool(toolName string, arguments json.RawMessage, result *ToolResult) ActionType {
	return ActionType{Kind: ActionTool, ToolName: toolName, Arguments: arguments, ToolResult: result}
}

// TaskCreate records that a tool created a sub-task.
func TaskCreate(description string) ActionType {
	return ActionType{Kind: ActionTaskCreate, Description: description}
}

// PlanPresentation records that a tool surfaced a plan to the user.
func PlanPresentation(plan string) ActionType {
	return ActionType{Kind: ActionPlanPresentation, Plan: plan}
}

// TodoManagement records that a tool mutated a todo list. operation is a
// free-form verb such as "add" or "complete".
func TodoManagement(todos []TodoItem, operation string) ActionType {
	return ActionType{Kind: ActionTodoManagement, Todos: todos, Operation: operation}
}

// Other is the escape hatch for anything unclassifiable.
func Other(description string) ActionType {
	return ActionType{Kind: ActionOther, Description: description}
}

// MarshalJSON emits only the selected variant's fields under the "action"
// discriminant key.
func (a ActionType) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ActionFileRead:
		return json.Marshal(struct {
			Action ActionKind `json:"action"`
			Path   string     `json:"path"`
		}{a.Kind, a.Path})
	case ActionFileEdit:
		return json.Marshal(struct {
			Action  ActionKind   `json:"action"`
			Path    string       `json:"path"`
			Changes []FileChange `json:"changes"`
		}{a.Kind, a.Path, a.Changes})
	case ActionCommandRun:
		return json.Marshal(struct {
			Action  ActionKind        `json:"action"`
			Command string            `json:"command"`
			Result  *CommandRunResult `json:"result,omitempty"`
		}{a.Kind, a.Command, a.Result})
	case ActionSearch:
		return json.Marshal(struct {
			Action ActionKind `json:"action"`
			Query  string     `json:"query"`
		}{a.Kind, a.Query})
	case ActionWebFetch:
		return json.Marshal(struct {
			Action ActionKind `json:"action"`
			URL    string     `json:"url"`
		}{a.Kind, a.URL})
	case ActionTool:
		return json.Marshal(struct {
			Action    ActionKind      `json:"action"`
			ToolName  string          `json:"tool_name"`
			Arguments json.RawMessage `json:"arguments,omitempty"`
			Result    *ToolResult     `json:"result,omitempty"`
		}{a.Kind, a.ToolName, a.Arguments, a.ToolResult})
	case ActionTaskCreate:
		return json.Marshal(struct {
			Action      ActionKind `json:"action"`
			Description string     `json:"description"`
		}{a.Kind, a.Description})
	case ActionPlanPresentation:
		return json.Marshal(struct {
			Action ActionKind `json:"action"`
			Plan   string     `json:"plan"`
		}{a.Kind, a.Plan})
	case ActionTodoManagement:
		return json.Marshal(struct {
			Action    ActionKind `json:"action"`
			Todos     []TodoItem `json:"todos"`
			Operation string     `json:"operation"`
		}{a.Kind, a.Todos, a.Operation})
	case ActionOther:
		return json.Marshal(struct {
			Action      ActionKind `json:"action"`
			Description string     `json:"description"`
		}{a.Kind, a.Description})
	default:
		return nil, &DecodeError{Union: "ActionType", Tag: string(a.Kind)}
	}
}

// UnmarshalJSON decodes by the "action" discriminant. Unknown discriminants
// and missing variant fields fail with a DecodeError; only the fields the
// contract marks optional (command_run's result, tool's arguments/result)
// may be absent.
func (a *ActionType) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Action      ActionKind        `json:"action"`
		Path        *string           `json:"path"`
		Changes     json.RawMessage   `json:"changes"`
		Command     *string           `json:"command"`
		Result      *CommandRunResult `json:"result"`
		Query       *string           `json:"query"`
		URL         *string           `json:"url"`
		ToolName    *string           `json:"tool_name"`
		Arguments   json.RawMessage   `json:"arguments"`
		Description *string           `json:"description"`
		Plan        *string           `json:"plan"`
		Todos       json.RawMessage   `json:"todos"`
		Operation   *string           `json:"operation"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return wrapDecode("ActionType", err)
	}
	missing := func(field string) error {
		return &DecodeError{Union: "ActionType", Tag: string(shadow.Action), Err: errMissingField(field)}
	}
	switch shadow.Action {
	case ActionFileRead:
		if shadow.Path == nil {
			return missing("path")
		}
		*a = ActionType{Kind: shadow.Action, Path: *shadow.Path}
	case ActionFileEdit:
		if shadow.Path == nil {
			return missing("path")
		}
		if shadow.Changes == nil {
			return missing("changes")
		}
		var changes []FileChange
		if err := json.Unmarshal(shadow.Changes, &changes); err != nil {
			return wrapDecode("ActionType", err)
		}
		*a = ActionType{Kind: shadow.Action, Path: *shadow.Path, Changes: changes}
	case ActionCommandRun:
		if shadow.Command == nil {
			return missing("command")
		}
		*a = ActionType{Kind: shadow.Action, Command: *shadow.Command, Result: shadow.Result}
	case ActionSearch:
		if shadow.Query == nil {
			return missing("query")
		}
		*a = ActionType{Kind: shadow.Action, Query: *shadow.Query}
	case ActionWebFetch:
		if shadow.URL == nil {
			return missing("url")
		}
		*a = ActionType{Kind: shadow.Action, URL: *shadow.URL}
	case ActionTool:
		if shadow.ToolName == nil {
			return missing("tool_name")
		}
		tool := ActionType{Kind: shadow.Action, ToolName: *shadow.ToolName, Arguments: shadow.Arguments}
		// The "result" key means CommandRunResult for command_run but
		// ToolResult for tool, so it is re-decoded per variant.
		var res struct {
			Result *ToolResult `json:"result"`
		}
		if err := json.Unmarshal(data, &res); err != nil {
			return wrapDecode("ActionType", err)
		}
		tool.ToolResult = res.Result
		*a = tool
	case ActionTaskCreate:
		if shadow.Description == nil {
			return missing("description")
		}
		*a = ActionType{Kind: shadow.Action, Description: *shadow.Description}
	case ActionPlanPresentation:
		if shadow.Plan == nil {
			return missing("plan")
		}
		*a = ActionType{Kind: shadow.Action, Plan: *shadow.Plan}
	case ActionTodoManagement:
		if shadow.Todos == nil {
			return missing("todos")
		}
		if shadow.Operation == nil {
			return missing("operation")
		}
		var todos []TodoItem
		if err := json.Unmarshal(shadow.Todos, &todos); err != nil {
			return wrapDecode("ActionType", err)
		}
		*a = ActionType{Kind: shadow.Action, Todos: todos, Operation: *shadow.Operation}
	case ActionOther:
		if shadow.Description == nil {
			return missing("description")
		}
		*a = ActionType{Kind: shadow.Action, Description: *shadow.Description}
	default:
		return &DecodeError{Union: "ActionType", Tag: string(shadow.Action)}
	}
	return nil
}
