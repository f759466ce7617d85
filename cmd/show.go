package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kestrelhq/normlog/internal/logs"
	"github.com/kestrelhq/normlog/internal/store"
)

var (
	showLimit int
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true).
			Padding(0, 1)

	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Padding(0, 1)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginBottom(1)

	stampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show entries for an archived conversation",
	Long:  `Display the normalized entries of one archived conversation.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := archivePath()
		if err != nil {
			return err
		}
		archive, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer func() { _ = archive.Close() }()

		conv, err := archive.Get(args[0])
		if err != nil {
			return fmt.Errorf("failed to load conversation: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("Conversation %s", args[0])))
		meta := fmt.Sprintf("executor: %s · entries: %d", conv.ExecutorType, len(conv.Entries))
		if conv.Summary != nil && *conv.Summary != "" {
			meta += " · " + *conv.Summary
		}
		fmt.Fprintln(out, sessionMetaStyle.Render(meta))

		entries := conv.Entries
		if showLimit > 0 && len(entries) > showLimit {
			entries = entries[:showLimit]
		}
		for _, entry := range entries {
			fmt.Fprintln(out, entryLabel(entry))
			fmt.Fprintln(out, contentStyle.Render(entryBody(entry)))
		}
		if showLimit > 0 && len(conv.Entries) > showLimit {
			fmt.Fprintln(out, sessionMetaStyle.Render(fmt.Sprintf("… %d more entries (use --limit 0 for all)", len(conv.Entries)-showLimit)))
		}
		return nil
	},
}

func entryLabel(entry logs.NormalizedEntry) string {
	stamp := ""
	if entry.Timestamp != nil {
		stamp = " " + stampStyle.Render(*entry.Timestamp)
	}
	switch entry.EntryType.Kind {
	case logs.EntryUserMessage:
		return userStyle.Render("user") + stamp
	case logs.EntryAssistantMessage:
		return assistantStyle.Render("assistant") + stamp
	case logs.EntrySystemMessage:
		return sessionMetaStyle.Render("system") + stamp
	case logs.EntryErrorMessage:
		return errorStyle.Render("error") + stamp
	case logs.EntryThinking:
		return sessionMetaStyle.Render("thinking") + stamp
	case logs.EntryToolUse:
		return toolStyle.Render("tool "+entry.EntryType.ToolName) + stamp
	}
	return string(entry.EntryType.Kind) + stamp
}

// entryBody favors the structured action over the fallback content when
// there is something more specific to show.
func entryBody(entry logs.NormalizedEntry) string {
	if entry.EntryType.Kind != logs.EntryToolUse || entry.EntryType.Action == nil {
		return entry.Content
	}
	action := entry.EntryType.Action
	switch action.Kind {
	case logs.ActionFileRead:
		return fmt.Sprintf("read %s", action.Path)
	case logs.ActionFileEdit:
		return fmt.Sprintf("edit %s (%d change(s))", action.Path, len(action.Changes))
	case logs.ActionCommandRun:
		body := "$ " + action.Command
		if action.Result != nil && action.Result.ExitStatus != nil {
			status := action.Result.ExitStatus
			switch status.Kind {
			case logs.ExitStatusCode:
				body += fmt.Sprintf(" → exit %d", status.Code)
			case logs.ExitStatusSuccess:
				body += fmt.Sprintf(" → success=%t", status.Success)
			}
		}
		return body
	case logs.ActionSearch:
		return fmt.Sprintf("search %q", action.Query)
	case logs.ActionWebFetch:
		return fmt.Sprintf("fetch %s", action.URL)
	case logs.ActionTodoManagement:
		items := make([]string, 0, len(action.Todos))
		for _, todo := range action.Todos {
			items = append(items, fmt.Sprintf("[%s] %s", todo.Status, todo.Content))
		}
		return strings.Join(items, "\n")
	case logs.ActionPlanPresentation:
		return action.Plan
	}
	return entry.Content
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "Maximum number of entries to display (0 = all)")
}
