package logs

import (
	"errors"
	"fmt"
)

// DecodeError is the schema layer's only failure mode: a malformed payload
// or an unrecognized union discriminant at deserialization time. It is
// fatal to the single decode operation that produced it; callers surface it
// per entry (skip or flag) rather than aborting a whole conversation.
type DecodeError struct {
	Union string // union type being decoded, e.g. "ActionType"
	Tag   string // offending discriminant, empty when the payload itself was malformed
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Tag != "" && e.Err == nil {
		return fmt.Sprintf("decode %s: unknown discriminant %q", e.Union, e.Tag)
	}
	if e.Tag != "" {
		return fmt.Sprintf("decode %s [%s]: %v", e.Union, e.Tag, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Union, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// wrapDecode wraps err in a DecodeError unless it already is one, so a
// failure in a nested union keeps its original union name and tag.
func wrapDecode(union string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Union: union, Err: err}
}

type missingFieldError string

func (e missingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", string(e))
}

func errMissingField(name string) error {
	return missingFieldError(name)
}
