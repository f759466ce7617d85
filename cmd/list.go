package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kestrelhq/normlog/internal/store"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	executorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived conversations",
	Long:  `List all conversations in the local archive.`,
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

		summaries, err := archive.List()
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No archived conversations. Use 'normlog normalize --save' to add one.")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(fmt.Sprintf("Archived conversations (%d)", len(summaries))))
		fmt.Fprintln(cmd.OutOrStdout())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, s := range summaries {
			summary := s.Summary
			if summary == "" {
				summary = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				idStyle.Render(s.ID),
				executorStyle.Render(s.ExecutorType),
				countStyle.Render(strconv.Itoa(s.EntryCount)+" entries"),
				dateStyle.Render(s.SavedAt),
				summary,
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
