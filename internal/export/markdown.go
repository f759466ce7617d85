package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/kestrelhq/normlog/internal/logs"
)

// MarkdownExporter exports conversations in Markdown format
type MarkdownExporter struct{}

// Export exports a conversation to Markdown format
func (e *MarkdownExporter) Export(conv *logs.NormalizedConversation, w io.Writer) error {
	title := conv.ExecutorType
	if conv.SessionID != nil {
		title = fmt.Sprintf("%s — %s", conv.ExecutorType, *conv.SessionID)
	}
	_, _ = fmt.Fprintf(w, "# Session %s\n\n", title)
	_, _ = fmt.Fprintf(w, "**Executor:** %s  \n", conv.ExecutorType)
	_, _ = fmt.Fprintf(w, "**Entries:** %d\n\n", len(conv.Entries))

	if conv.Prompt != nil && *conv.Prompt != "" {
		_, _ = fmt.Fprintf(w, "**Prompt:** %s\n\n", *conv.Prompt)
	}
	if conv.Summary != nil && *conv.Summary != "" {
		_, _ = fmt.Fprintf(w, "**Summary:** %s\n\n", *conv.Summary)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, entry := range conv.Entries {
		e.writeEntry(w, i, entry)
	}
	return nil
}

func (e *MarkdownExporter) writeEntry(w io.Writer, i int, entry logs.NormalizedEntry) {
	stamp := ""
	if entry.Timestamp != nil {
		stamp = fmt.Sprintf(" (%s)", *entry.Timestamp)
	}
	_, _ = fmt.Fprintf(w, "### %d. %s%s\n\n", i+1, entryHeading(entry.EntryType), stamp)

	if entry.EntryType.Kind == logs.EntryToolUse && entry.EntryType.Action != nil {
		e.writeAction(w, *entry.EntryType.Action)
	}

	_, _ = fmt.Fprintf(w, "%s\n\n", entry.Content)
}

func (e *MarkdownExporter) writeAction(w io.Writer, action logs.ActionType) {
	switch action.Kind {
	case logs.ActionFileRead:
		_, _ = fmt.Fprintf(w, "Read `%s`\n\n", action.Path)
	case logs.ActionFileEdit:
		_, _ = fmt.Fprintf(w, "Edited `%s` (%d change(s))\n\n", action.Path, len(action.Changes))
		for _, change := range action.Changes {
			if change.Kind == logs.ChangeEdit {
				_, _ = fmt.Fprintf(w, "```diff\n%s\n```\n\n", strings.TrimRight(change.UnifiedDiff, "\n"))
			}
		}
	case logs.ActionCommandRun:
		_, _ = fmt.Fprintf(w, "```console\n$ %s\n```\n\n", action.Command)
		if action.Result != nil && action.Result.ExitStatus != nil {
			status := action.Result.ExitStatus
			switch status.Kind {
			case logs.ExitStatusCode:
				_, _ = fmt.Fprintf(w, "Exit code: %d\n\n", status.Code)
			case logs.ExitStatusSuccess:
				_, _ = fmt.Fprintf(w, "Succeeded: %t\n\n", status.Success)
			}
		}
	case logs.ActionSearch:
		_, _ = fmt.Fprintf(w, "Searched for `%s`\n\n", action.Query)
	case logs.ActionWebFetch:
		_, _ = fmt.Fprintf(w, "Fetched <%s>\n\n", action.URL)
	case logs.ActionTool:
		_, _ = fmt.Fprintf(w, "Tool call: `%s`\n\n", action.ToolName)
		if action.ToolResult != nil {
			if md, ok := action.ToolResult.Markdown(); ok {
				_, _ = fmt.Fprintf(w, "%s\n\n", md)
			} else {
				_, _ = fmt.Fprintf(w, "```json\n%s\n```\n\n", string(action.ToolResult.Value))
			}
		}
	case logs.ActionTaskCreate:
		_, _ = fmt.Fprintf(w, "Created task: %s\n\n", action.Description)
	case logs.ActionPlanPresentation:
		_, _ = fmt.Fprintf(w, "%s\n\n", action.Plan)
	case logs.ActionTodoManagement:
		for _, todo := range action.Todos {
			_, _ = fmt.Fprintf(w, "- [%s] %s (%s)\n", todoMark(todo.Status), todo.Content, todo.Status)
		}
		_, _ = fmt.Fprintf(w, "\n")
	case logs.ActionOther:
		_, _ = fmt.Fprintf(w, "%s\n\n", action.Description)
	}
}

func entryHeading(t logs.NormalizedEntryType) string {
	switch t.Kind {
	case logs.EntryUserMessage:
		return "User"
	case logs.EntryAssistantMessage:
		return "Assistant"
	case logs.EntrySystemMessage:
		return "System"
	case logs.EntryErrorMessage:
		return "Error"
	case logs.EntryThinking:
		return "Thinking"
	case logs.EntryToolUse:
		return fmt.Sprintf("Tool: %s", t.ToolName)
	}
	return string(t.Kind)
}

func todoMark(status string) string {
	switch strings.ToLower(status) {
	case "completed", "done":
		return "x"
	case "in_progress", "in-progress", "doing":
		return "~"
	default:
		return " "
	}
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
