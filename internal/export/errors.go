package export

import (
	"errors"
	"fmt"
)

var errUnsupported = errors.New("unsupported format (supported: jsonl, md, yaml, json)")

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("export error [%s]: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
