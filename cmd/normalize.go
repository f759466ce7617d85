package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/normlog/internal"
	"github.com/kestrelhq/normlog/internal/plaintext"
	"github.com/kestrelhq/normlog/internal/stderrproc"
	"github.com/kestrelhq/normlog/internal/store"
)

var (
	normalizeExecutor string
	normalizeSession  string
	normalizeStderr   string
	normalizeSave     bool
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize [log-file]",
	Short: "Normalize a raw executor log",
	Long: `Run the plain-text adapter over a raw executor log (a file, or stdin
when no file is given) and print the normalized conversation as JSON.

With --stderr, the executor's stderr stream is normalized too and its
error entries are appended. With --save, the conversation is archived
instead of printed.

Examples:
  normlog normalize --executor mytool session.log
  mytool run | normlog normalize --executor mytool --save
  normlog normalize --executor mytool --stderr errors.log session.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input io.Reader = os.Stdin
		source := "stdin"
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			input = f
			source = args[0]
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		processor := plaintext.New(normalizeExecutor)
		conv, err := processor.Collect(ctx, input, normalizeSession)
		if err != nil {
			return fmt.Errorf("failed to normalize %s: %w", source, err)
		}
		internal.LogDebug("normalized %d entries from %s", len(conv.Entries), source)

		if normalizeStderr != "" {
			f, err := os.Open(normalizeStderr)
			if err != nil {
				return fmt.Errorf("failed to open stderr file: %w", err)
			}
			defer f.Close()
			entries, err := stderrproc.New().Collect(ctx, f)
			if err != nil {
				return fmt.Errorf("failed to normalize stderr: %w", err)
			}
			conv.Entries = append(conv.Entries, entries...)
			internal.LogDebug("appended %d stderr entries", len(entries))
		}

		if normalizeSave {
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
			fmt.Fprintf(cmd.OutOrStdout(), "Saved conversation %s (%d entries)\n", id, len(conv.Entries))
			return nil
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(conv)
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVarP(&normalizeExecutor, "executor", "e", "plaintext", "Executor type to attribute entries to")
	normalizeCmd.Flags().StringVarP(&normalizeSession, "session", "s", "", "External session identifier, if the executor supplied one")
	normalizeCmd.Flags().StringVar(&normalizeStderr, "stderr", "", "Path to the executor's captured stderr")
	normalizeCmd.Flags().BoolVar(&normalizeSave, "save", false, "Save to the archive instead of printing")
}
