package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/normlog/internal/logs"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Validate a serialized conversation entry by entry",
	Long: `Validate a serialized conversation (JSON) or entry stream (JSONL)
against the wire contract.

Each entry is decoded independently: a malformed entry or an unrecognized
discriminant is reported and counted but never aborts the run, matching how
consumers are expected to degrade.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		payloads, err := splitEntries(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		bad := 0
		for i, payload := range payloads {
			if _, err := logs.DecodeEntry(payload); err != nil {
				bad++
				fmt.Fprintf(out, "entry %d: INVALID: %v\n", i, err)
			}
		}
		fmt.Fprintf(out, "%d entries, %d invalid\n", len(payloads), bad)
		if bad > 0 {
			return fmt.Errorf("%d invalid entries", bad)
		}
		return nil
	},
}

// splitEntries accepts either a conversation envelope or a JSONL entry
// stream and returns the raw entry payloads.
func splitEntries(data []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var envelope struct {
			Entries []json.RawMessage `json:"entries"`
		}
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Entries != nil {
			return envelope.Entries, nil
		}
	}

	var payloads []json.RawMessage
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		payloads = append(payloads, json.RawMessage(line))
	}
	return payloads, scanner.Err()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
