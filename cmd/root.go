package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/normlog/internal"
)

var (
	verbose bool
	dbPath  string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "normlog",
	Short: "Normalize and archive coding-agent session logs",
	Long: `normlog turns the heterogeneous output of external coding-agent tools
into one uniform stream of structured log entries, and keeps a local
archive of the normalized sessions.

Features:
  • Normalize raw executor stdout/stderr into structured entries
  • Archive sessions locally and list/show them later
  • Export in multiple formats (JSON, JSONL, YAML, Markdown)
  • Validate serialized conversations entry by entry
  • Print the JSON Schema of the wire contract

Quick Start:
  normlog normalize --executor mytool session.log   # Normalize a raw log
  normlog list                                      # List archived sessions
  normlog show <session-id>                         # View one session
  normlog export --format md                        # Export as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Archive database path (default ~/.normlog/archive.db)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// archivePath resolves the archive database location, honoring --db.
func archivePath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".normlog", "archive.db"), nil
}
