// Package stderrproc converts a raw executor stderr stream into normalized
// error-message entries. Executors interleave multi-line tracebacks with
// unrelated noise, so blank-line-separated blocks coalesce into one entry
// each instead of producing an entry per line.
package stderrproc

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/kestrelhq/normlog/internal/logs"
)

// Processor is the stderr executor adapter.
type Processor struct{}

// New creates a stderr processor.
func New() *Processor {
	return &Processor{}
}

// Stream is a lazy error-entry sequence over a live stderr pipe.
type Stream struct {
	entries chan logs.NormalizedEntry
	err     error
}

// Entries yields one error_message entry per blank-line-separated block.
// The channel is closed when the input ends, fails, or ctx is cancelled.
func (s *Stream) Entries() <-chan logs.NormalizedEntry {
	return s.entries
}

// Err reports the read failure that ended the stream, if any. Only valid
// after Entries has closed.
func (s *Stream) Err() error {
	return s.err
}

// Process consumes r and yields error entries as a stream. Stderr carries
// no executor timestamps, so entries have none. A read failure ends the
// stream early and drops the torn tail block.
func (p *Processor) Process(ctx context.Context, r io.Reader) *Stream {
	s := &Stream{entries: make(chan logs.NormalizedEntry)}
	go func() {
		defer close(s.entries)

		var block []string
		emit := func() bool {
			if len(block) == 0 {
				return true
			}
			entry := logs.NewEntry(logs.ErrorMessage(), strings.Join(block, "\n"))
			block = nil
			select {
			case s.entries <- entry:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				if !emit() {
					return
				}
				continue
			}
			block = append(block, strings.TrimRight(line, " \t"))
		}
		if err := scanner.Err(); err != nil {
			s.err = err
			return
		}
		emit()
	}()
	return s
}

// Collect drains the stream into a slice, for callers that want to merge
// stderr entries into an existing conversation. A read failure fails the
// whole collect.
func (p *Processor) Collect(ctx context.Context, r io.Reader) ([]logs.NormalizedEntry, error) {
	stream := p.Process(ctx, r)
	var entries []logs.NormalizedEntry
	for entry := range stream.Entries() {
		entries = append(entries, entry)
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
