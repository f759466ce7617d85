package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/normlog/internal/logs"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the wire format",
	Long: `Print the JSON Schema describing serialized normalized conversations.

Consumers written in other languages can validate against this schema; the
discriminant strings it pins down ("type"/"action" keys, snake_case variant
names) are the compatibility contract.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(logs.WireSchema())
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
