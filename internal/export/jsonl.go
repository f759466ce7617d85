package export

import (
	"encoding/json"
	"io"

	"github.com/kestrelhq/normlog/internal/logs"
)

// JSONLExporter exports conversations as JSON Lines: one entry per line,
// which matches how adapters stream entries in the first place.
type JSONLExporter struct{}

// Export exports a conversation to JSONL format
func (e *JSONLExporter) Export(conv *logs.NormalizedConversation, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, entry := range conv.Entries {
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
