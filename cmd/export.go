package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/normlog/internal"
	"github.com/kestrelhq/normlog/internal/export"
	"github.com/kestrelhq/normlog/internal/logs"
	"github.com/kestrelhq/normlog/internal/store"
)

var (
	exportFormat  string
	exportOutDir  string
	exportSession string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived conversations to files",
	Long: `Export archived conversations to various formats (json, jsonl, yaml, md).

You can export every conversation in the archive or a single one by id.
Use 'normlog list' to see available ids.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
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

		var ids []string
		if exportSession != "" {
			ids = []string{exportSession}
		} else {
			summaries, err := archive.List()
			if err != nil {
				return fmt.Errorf("failed to list conversations: %w", err)
			}
			for _, s := range summaries {
				ids = append(ids, s.ID)
			}
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to export.")
			return nil
		}

		if err := os.MkdirAll(exportOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		for _, id := range ids {
			conv, err := archive.Get(id)
			if err != nil {
				internal.LogWarn("skipping %s: %v", id, err)
				continue
			}
			outPath := filepath.Join(exportOutDir, fmt.Sprintf("%s.%s", id, exporter.Extension()))
			if err := writeExport(exporter, conv, outPath); err != nil {
				return err
			}
			internal.LogDebug("exported %s to %s", id, outPath)
			exported++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d conversation(s) to %s\n", exported, exportOutDir)
		return nil
	},
}

func writeExport(exporter export.Exporter, conv *logs.NormalizedConversation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := exporter.Export(conv, f); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: "+strings.Join(export.Formats(), ", "))
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVarP(&exportSession, "session", "s", "", "Export only this conversation id")
}
