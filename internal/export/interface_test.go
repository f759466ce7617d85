package export

import (
	"testing"
)

func TestFormats(t *testing.T) {
	for _, format := range Formats() {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("Formats() lists %q but NewExporter rejects it: %v", format, err)
		}
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"json", "json", false},
		{"jsonl", "jsonl", false},
		{"yaml", "yaml", false},
		{"md", "md", false},
		{"markdown", "md", false},
		{"JSON", "json", false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		exporter, err := NewExporter(tt.format)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewExporter(%q) expected error, got nil", tt.format)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewExporter(%q) unexpected error: %v", tt.format, err)
			continue
		}
		if exporter.Extension() != tt.wantExt {
			t.Errorf("NewExporter(%q).Extension() = %q, want %q", tt.format, exporter.Extension(), tt.wantExt)
		}
	}
}
