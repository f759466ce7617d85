package store

import "fmt"

// StoreError represents errors accessing the conversation archive
type StoreError struct {
	Op   string // "open", "migrate", "save", "list", "get"
	Path string // database path or conversation id
	Err  error
}

func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
