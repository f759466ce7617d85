package export

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kestrelhq/normlog/internal/logs"
)

// YAMLExporter exports conversations in YAML format
type YAMLExporter struct{}

// Export exports a conversation to YAML format. The conversation is passed
// through the JSON wire codec first so the YAML keeps the same discriminant
// keys and casing as every other serialization of the schema.
func (e *YAMLExporter) Export(conv *logs.NormalizedConversation, w io.Writer) error {
	wire, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	var tree interface{}
	if err := json.Unmarshal(wire, &tree); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(tree)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
