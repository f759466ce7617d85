// Package plaintext converts a raw executor stdout stream into normalized
// log entries. It is a thin adapter: all format-specific parsing, timestamp
// derivation, and fallback-content synthesis happens here, and the output
// is a lazy, possibly unbounded entry stream.
//
// Recognized line shapes:
//
//	[<timestamp>] <rest>         optional leading timestamp on any line
//	Read file: <path>
//	Edit file: <path>            followed by a unified diff block
//	$ <command>                  an exit trailer line attaches the result
//	Search: <query>
//	Fetch: <url>
//	Plan:                        followed by an indented block
//	- [ ] / - [x] <item>         consecutive checklist lines form one entry
//	thinking: <text>
//	Error: <text>
//	{"tool_name": ...}           JSON tool-call lines map to the generic tool action
//
// Anything else becomes an assistant message; consecutive plain lines
// coalesce into one entry. Unrecognized tool calls never fail: they degrade
// to the generic tool action or, lacking a name, to an assistant message.
package plaintext

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/tidwall/gjson"

	"github.com/kestrelhq/normlog/internal/logs"
)

// Processor is the plain-text executor adapter.
type Processor struct {
	executorType string
}

// New creates a plain-text processor for the named executor.
func New(executorType string) *Processor {
	return &Processor{executorType: executorType}
}

// ExecutorType reports which executor this processor is configured for.
func (p *Processor) ExecutorType() string {
	return p.executorType
}

// Stream is a lazy entry sequence. It may be unbounded: the executor
// behind the reader can still be running, so consumers must not assume it
// is finite until Entries closes.
type Stream struct {
	entries chan logs.NormalizedEntry
	err     error
}

// Entries yields normalized entries in input order. The channel is closed
// when the input ends, fails, or the context is cancelled.
func (s *Stream) Entries() <-chan logs.NormalizedEntry {
	return s.entries
}

// Err reports the read failure that ended the stream, if any. Only valid
// after Entries has closed.
func (s *Stream) Err() error {
	return s.err
}

// Process consumes r line by line and yields normalized entries as a
// stream. A read failure ends the stream early: entries already yielded are
// complete, the torn tail is dropped, and the error is reported via
// Stream.Err.
func (p *Processor) Process(ctx context.Context, r io.Reader) *Stream {
	s := &Stream{entries: make(chan logs.NormalizedEntry)}
	go func() {
		defer close(s.entries)
		emit := func(entry logs.NormalizedEntry) bool {
			select {
			case s.entries <- entry:
				return true
			case <-ctx.Done():
				return false
			}
		}
		s.err = p.run(bufio.NewScanner(r), emit)
	}()
	return s
}

// Collect drains the entry stream into a complete conversation. The first
// user-message entry, if any, becomes the prompt. A read failure fails the
// whole collect rather than passing off a partial conversation as complete.
func (p *Processor) Collect(ctx context.Context, r io.Reader, sessionID string) (*logs.NormalizedConversation, error) {
	conv := &logs.NormalizedConversation{ExecutorType: p.executorType}
	if sessionID != "" {
		conv.SessionID = logs.Ptr(sessionID)
	}
	stream := p.Process(ctx, r)
	for entry := range stream.Entries() {
		if conv.Prompt == nil && entry.EntryType.Kind == logs.EntryUserMessage {
			conv.Prompt = logs.Ptr(entry.Content)
		}
		conv.Entries = append(conv.Entries, entry)
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return conv, nil
}

var (
	timestampRe = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2}T[^\]]+)\]\s*(.*)$`)
	exitRe      = regexp.MustCompile(`(?i)^\[?exit(?: code)?:?\s+(-?\d+)\]?$`)
	inlineExit  = regexp.MustCompile(`(?i)\s+\[exit(?: code)?:?\s+(-?\d+)\]$`)
	checklistRe = regexp.MustCompile(`^[-*] \[([ xX~])\]\s*(.*)$`)
)

// parseState carries the partial multi-line constructs between lines.
type parseState struct {
	emit func(logs.NormalizedEntry) bool

	// One of these at a time holds an unflushed block.
	text      []string // coalesced plain lines
	textStamp string
	command   *pendingCommand
	diff      *pendingDiff
	plan      []string
	planStamp string
	todos     []logs.TodoItem
	todoRaw   []string
	todoStamp string
}

type pendingCommand struct {
	command   string
	raw       string
	timestamp string
}

type pendingDiff struct {
	path      string
	raw       []string
	diff      []string
	timestamp string
}

func (p *Processor) run(scanner *bufio.Scanner, emit func(logs.NormalizedEntry) bool) error {
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	st := &parseState{emit: emit}
	for scanner.Scan() {
		if !p.line(st, scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		// The input tore mid-line. Pending blocks came from the torn
		// tail and are dropped, not flushed as if complete.
		return err
	}
	p.flush(st)
	return nil
}

// line classifies one raw line, flushing any pending block it terminates.
// Returns false when the consumer is gone.
func (p *Processor) line(st *parseState, raw string) bool {
	line := raw
	timestamp := ""
	if m := timestampRe.FindStringSubmatch(line); m != nil {
		timestamp = m[1]
		line = m[2]
	}
	trimmed := strings.TrimSpace(line)

	// A pending diff block swallows diff-shaped lines.
	if st.diff != nil {
		if isDiffLine(line) {
			st.diff.raw = append(st.diff.raw, raw)
			st.diff.diff = append(st.diff.diff, line)
			return true
		}
		if !p.flushDiff(st) {
			return false
		}
	}

	// A pending command consumes the exit trailer immediately after it.
	if st.command != nil {
		if m := exitRe.FindStringSubmatch(trimmed); m != nil {
			code, _ := strconv.Atoi(m[1])
			return p.flushCommand(st, &code)
		}
		if !p.flushCommand(st, nil) {
			return false
		}
	}

	// A plan block runs until a blank line.
	if st.plan != nil {
		if trimmed != "" {
			st.plan = append(st.plan, strings.TrimSpace(line))
			return true
		}
		return p.flushPlan(st)
	}

	// Checklist lines accumulate into one todo entry.
	if m := checklistRe.FindStringSubmatch(trimmed); m != nil {
		if !p.flushText(st) {
			return false
		}
		if st.todos == nil && timestamp != "" {
			st.todoStamp = timestamp
		}
		st.todos = append(st.todos, logs.TodoItem{
			Content: m[2],
			Status:  checklistStatus(m[1]),
		})
		st.todoRaw = append(st.todoRaw, trimmed)
		return true
	}
	if st.todos != nil {
		if !p.flushTodos(st) {
			return false
		}
	}

	if trimmed == "" {
		return p.flushText(st)
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "read file:"):
		if !p.flushText(st) {
			return false
		}
		path := strings.TrimSpace(trimmed[len("read file:"):])
		entry := logs.NewEntry(logs.ToolUse("read", logs.FileRead(path)), trimmed)
		setTimestamp(&entry, timestamp)
		return st.emit(entry)

	case strings.HasPrefix(lower, "edit file:"):
		if !p.flushText(st) {
			return false
		}
		st.diff = &pendingDiff{
			path:      strings.TrimSpace(trimmed[len("edit file:"):]),
			raw:       []string{raw},
			timestamp: timestamp,
		}
		return true

	case strings.HasPrefix(trimmed, "$ "):
		if !p.flushText(st) {
			return false
		}
		st.command = &pendingCommand{
			command:   strings.TrimSpace(trimmed[2:]),
			raw:       trimmed,
			timestamp: timestamp,
		}
		// An inline trailer like "$ make [exit 1]" completes the command
		// on the same line.
		if m := inlineExit.FindStringSubmatch(st.command.command); m != nil {
			st.command.command = strings.TrimSpace(st.command.command[:len(st.command.command)-len(m[0])])
			code, _ := strconv.Atoi(m[1])
			return p.flushCommand(st, &code)
		}
		return true

	case strings.HasPrefix(lower, "search:"):
		if !p.flushText(st) {
			return false
		}
		query := strings.TrimSpace(trimmed[len("search:"):])
		entry := logs.NewEntry(logs.ToolUse("search", logs.Search(query)), trimmed)
		setTimestamp(&entry, timestamp)
		return st.emit(entry)

	case strings.HasPrefix(lower, "fetch:"):
		if !p.flushText(st) {
			return false
		}
		url := strings.TrimSpace(trimmed[len("fetch:"):])
		entry := logs.NewEntry(logs.ToolUse("fetch", logs.WebFetch(url)), trimmed)
		setTimestamp(&entry, timestamp)
		return st.emit(entry)

	case strings.HasPrefix(lower, "plan:"):
		if !p.flushText(st) {
			return false
		}
		st.plan = []string{}
		st.planStamp = timestamp
		if rest := strings.TrimSpace(trimmed[len("plan:"):]); rest != "" {
			st.plan = append(st.plan, rest)
		}
		return true

	case strings.HasPrefix(lower, "thinking:"):
		if !p.flushText(st) {
			return false
		}
		entry := logs.NewEntry(logs.Thinking(), strings.TrimSpace(trimmed[len("thinking:"):]))
		setTimestamp(&entry, timestamp)
		return st.emit(entry)

	case strings.HasPrefix(lower, "user:"):
		if !p.flushText(st) {
			return false
		}
		entry := logs.NewEntry(logs.UserMessage(), strings.TrimSpace(trimmed[len("user:"):]))
		setTimestamp(&entry, timestamp)
		return st.emit(entry)

	case strings.HasPrefix(lower, "error:"):
		if !p.flushText(st) {
			return false
		}
		entry := logs.NewEntry(logs.ErrorMessage(), strings.TrimSpace(trimmed[len("error:"):]))
		setTimestamp(&entry, timestamp)
		return st.emit(entry)

	case looksLikeToolJSON(trimmed):
		if !p.flushText(st) {
			return false
		}
		entry := p.toolEntry(trimmed)
		setTimestamp(&entry, timestamp)
		return st.emit(entry)
	}

	if st.text == nil && timestamp != "" {
		st.textStamp = timestamp
	}
	st.text = append(st.text, trimmed)
	return true
}

func (p *Processor) flush(st *parseState) {
	if st.diff != nil {
		if !p.flushDiff(st) {
			return
		}
	}
	if st.command != nil {
		if !p.flushCommand(st, nil) {
			return
		}
	}
	if st.plan != nil {
		if !p.flushPlan(st) {
			return
		}
	}
	if st.todos != nil {
		if !p.flushTodos(st) {
			return
		}
	}
	p.flushText(st)
}

func (p *Processor) flushText(st *parseState) bool {
	if st.text == nil {
		return true
	}
	entry := logs.NewEntry(logs.AssistantMessage(), strings.Join(st.text, "\n"))
	setTimestamp(&entry, st.textStamp)
	st.text = nil
	st.textStamp = ""
	return st.emit(entry)
}

func (p *Processor) flushCommand(st *parseState, code *int) bool {
	pending := st.command
	st.command = nil
	var result *logs.CommandRunResult
	if code != nil {
		status := logs.ExitCode(*code)
		result = &logs.CommandRunResult{ExitStatus: &status}
	}
	entry := logs.NewEntry(
		logs.ToolUse(commandToolName(pending.command), logs.CommandRun(pending.command, result)),
		pending.raw,
	)
	setTimestamp(&entry, pending.timestamp)
	return st.emit(entry)
}

func (p *Processor) flushDiff(st *parseState) bool {
	pending := st.diff
	st.diff = nil
	var changes []logs.FileChange
	if len(pending.diff) > 0 {
		// Plain-text executors are not trusted to emit accurate hunk
		// line anchors.
		changes = append(changes, logs.EditChange(strings.Join(pending.diff, "\n")+"\n", false))
	}
	entry := logs.NewEntry(
		logs.ToolUse("edit", logs.FileEdit(pending.path, changes)),
		strings.Join(pending.raw, "\n"),
	)
	setTimestamp(&entry, pending.timestamp)
	return st.emit(entry)
}

func (p *Processor) flushPlan(st *parseState) bool {
	plan := strings.Join(st.plan, "\n")
	stamp := st.planStamp
	st.plan = nil
	st.planStamp = ""
	entry := logs.NewEntry(logs.ToolUse("plan", logs.PlanPresentation(plan)), plan)
	if entry.Content == "" {
		entry.Content = "(empty plan)"
	}
	setTimestamp(&entry, stamp)
	return st.emit(entry)
}

func (p *Processor) flushTodos(st *parseState) bool {
	todos := st.todos
	raw := strings.Join(st.todoRaw, "\n")
	stamp := st.todoStamp
	st.todos = nil
	st.todoRaw = nil
	st.todoStamp = ""
	entry := logs.NewEntry(logs.ToolUse("todo", logs.TodoManagement(todos, "update")), raw)
	setTimestamp(&entry, stamp)
	return st.emit(entry)
}

// toolEntry maps a JSON tool-call line to the generic tool action. A line
// with no recognizable tool name still yields an entry (the escape hatch),
// never a failure.
func (p *Processor) toolEntry(line string) logs.NormalizedEntry {
	name := ""
	for _, key := range []string{"tool_name", "tool", "name"} {
		if v := gjson.Get(line, key); v.Type == gjson.String {
			name = v.Str
			break
		}
	}
	if name == "" {
		return logs.NewEntry(logs.ToolUse("unknown", logs.Other(line)), line)
	}
	var args json.RawMessage
	for _, key := range []string{"arguments", "args", "input", "params"} {
		if v := gjson.Get(line, key); v.Exists() {
			args = json.RawMessage(v.Raw)
			break
		}
	}
	return logs.NewEntry(logs.ToolUse(name, logs.Tool(name, args, nil)), line)
}

// commandToolName derives a tool name from the command's first token.
func commandToolName(command string) string {
	tokens, err := shlex.Split(command)
	if err != nil || len(tokens) == 0 {
		return "shell"
	}
	return filepath.Base(tokens[0])
}

func setTimestamp(entry *logs.NormalizedEntry, timestamp string) {
	if timestamp != "" {
		entry.Timestamp = logs.Ptr(timestamp)
	}
}

func checklistStatus(mark string) string {
	switch mark {
	case "x", "X":
		return "completed"
	case "~":
		return "in_progress"
	default:
		return "pending"
	}
}

func isDiffLine(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ") ||
		strings.HasPrefix(line, "@@") || strings.HasPrefix(line, `\ No newline`) {
		return true
	}
	// Hunk body lines only count once a header has shaped the block;
	// requiring the marker prefix keeps prose out of the diff.
	return line[0] == '+' || line[0] == '-' ||
		(line[0] == ' ' && strings.TrimSpace(line) != "")
}

func looksLikeToolJSON(line string) bool {
	if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
		return false
	}
	if !gjson.Valid(line) {
		return false
	}
	for _, key := range []string{"tool_name", "tool", "name"} {
		if gjson.Get(line, key).Exists() {
			return true
		}
	}
	return false
}
