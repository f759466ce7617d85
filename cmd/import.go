package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/normlog/internal/logs"
	"github.com/kestrelhq/normlog/internal/store"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a serialized conversation into the archive",
	Long: `Decode a serialized NormalizedConversation (as produced by 'normlog
normalize' or 'normlog export --format json') and save it to the archive.

The decode is strict: an unrecognized discriminant anywhere in the file
rejects the import. Use 'normlog inspect' first to locate bad entries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		conv, err := logs.DecodeConversation(data)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", args[0], err)
		}

		path, err := archivePath()
		if err != nil {
			return err
		}
		archive, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer func() { _ = archive.Close() }()

		id, err := archive.Save(conv)
		if err != nil {
			return fmt.Errorf("failed to save conversation: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported conversation %s (%d entries)\n", id, len(conv.Entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
