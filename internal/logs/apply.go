package logs

import (
	"fmt"
	"strconv"
	"strings"
)

// Replay folds an ordered FileChange sequence over file content. The
// sequence semantics are sequential: change N applies to the output of
// change N-1, never to the original content. Rename is content-neutral;
// Delete yields empty content so a later Write can recreate the file.
//
// Replay exists for consumers that need to materialize a file_edit action;
// the schema itself does not enforce these semantics.
func Replay(initial string, changes []FileChange) (string, error) {
	content := initial
	for i, change := range changes {
		switch change.Kind {
		case ChangeWrite:
			content = change.Content
		case ChangeDelete:
			content = ""
		case ChangeRename:
			// Content is unchanged; only the path moved.
		case ChangeEdit:
			next, err := ApplyUnifiedDiff(content, change.UnifiedDiff, change.HasLineNumbers)
			if err != nil {
				return "", fmt.Errorf("change %d: %w", i, err)
			}
			content = next
		default:
			return "", fmt.Errorf("change %d: unknown file change kind %q", i, change.Kind)
		}
	}
	return content, nil
}

type diffLine struct {
	op   byte // ' ', '-', '+'
	text string
}

type hunk struct {
	oldStart int // 1-based; 0 means insert at top
	oldCount int
	lines    []diffLine
}

// ApplyUnifiedDiff applies a unified diff to content. When useLineNumbers
// is true the hunk headers anchor each hunk; when false (executors that
// emit unreliable line anchors) hunks are located by matching their
// context and deleted lines against the content.
func ApplyUnifiedDiff(content, diff string, useLineNumbers bool) (string, error) {
	hunks, err := parseUnifiedDiff(diff)
	if err != nil {
		return "", err
	}
	if len(hunks) == 0 {
		return content, nil
	}

	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}

	// offset tracks how much earlier hunks have shifted the file;
	// searchFrom keeps content matching moving forward so identical hunks
	// apply to successive occurrences.
	offset := 0
	searchFrom := 0
	for i, h := range hunks {
		oldLines := make([]string, 0, len(h.lines))
		newLines := make([]string, 0, len(h.lines))
		for _, l := range h.lines {
			if l.op == ' ' || l.op == '-' {
				oldLines = append(oldLines, l.text)
			}
			if l.op == ' ' || l.op == '+' {
				newLines = append(newLines, l.text)
			}
		}

		var at int
		if useLineNumbers {
			if len(oldLines) == 0 {
				// -N,0 means insert after line N.
				at = h.oldStart + offset
			} else {
				at = h.oldStart - 1 + offset
			}
			if at < 0 || at+len(oldLines) > len(lines) {
				return "", fmt.Errorf("hunk %d: line anchor %d out of range", i, h.oldStart)
			}
			if !matchAt(lines, at, oldLines) {
				return "", fmt.Errorf("hunk %d: content mismatch at line %d", i, at+1)
			}
		} else {
			if len(oldLines) == 0 {
				at = len(lines)
			} else {
				at = findLines(lines, oldLines, searchFrom)
				if at < 0 {
					return "", fmt.Errorf("hunk %d: no content match for hunk", i)
				}
			}
		}

		replaced := make([]string, 0, len(lines)-len(oldLines)+len(newLines))
		replaced = append(replaced, lines[:at]...)
		replaced = append(replaced, newLines...)
		replaced = append(replaced, lines[at+len(oldLines):]...)
		lines = replaced

		offset += len(newLines) - len(oldLines)
		searchFrom = at + len(newLines)
	}

	return strings.Join(lines, "\n"), nil
}

func matchAt(lines []string, at int, want []string) bool {
	for i, w := range want {
		if lines[at+i] != w {
			return false
		}
	}
	return true
}

func findLines(lines, want []string, from int) int {
	if from < 0 {
		from = 0
	}
	for at := from; at+len(want) <= len(lines); at++ {
		if matchAt(lines, at, want) {
			return at
		}
	}
	// Fall back to the whole file in case searchFrom overshot.
	for at := 0; at+len(want) <= len(lines); at++ {
		if matchAt(lines, at, want) {
			return at
		}
	}
	return -1
}

func parseUnifiedDiff(diff string) ([]hunk, error) {
	var hunks []hunk
	var current *hunk

	for _, raw := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(raw, "@@"):
			h, err := parseHunkHeader(raw)
			if err != nil {
				return nil, err
			}
			hunks = append(hunks, h)
			current = &hunks[len(hunks)-1]
		case strings.HasPrefix(raw, "--- "), strings.HasPrefix(raw, "+++ "),
			strings.HasPrefix(raw, "diff "), strings.HasPrefix(raw, "index "),
			strings.HasPrefix(raw, `\ No newline`):
			// File headers and markers carry no hunk content.
		default:
			if current == nil {
				if strings.TrimSpace(raw) == "" {
					continue
				}
				return nil, fmt.Errorf("diff content before first hunk header: %q", raw)
			}
			switch {
			case raw == "":
				// Some producers trim trailing whitespace from empty
				// context lines.
				current.lines = append(current.lines, diffLine{op: ' ', text: ""})
			case raw[0] == ' ' || raw[0] == '-' || raw[0] == '+':
				current.lines = append(current.lines, diffLine{op: raw[0], text: raw[1:]})
			default:
				return nil, fmt.Errorf("malformed diff line: %q", raw)
			}
		}
	}

	// A trailing blank context line is usually split residue, not content.
	for i := range hunks {
		lines := hunks[i].lines
		if n := len(lines); n > 0 && lines[n-1].op == ' ' && lines[n-1].text == "" {
			old := 0
			for _, l := range lines {
				if l.op == ' ' || l.op == '-' {
					old++
				}
			}
			if old > hunks[i].oldCount {
				hunks[i].lines = lines[:n-1]
			}
		}
	}

	return hunks, nil
}

func parseHunkHeader(line string) (hunk, error) {
	// @@ -oldStart[,oldCount] +newStart[,newCount] @@
	rest := strings.TrimPrefix(line, "@@")
	end := strings.Index(rest, "@@")
	if end < 0 {
		return hunk{}, fmt.Errorf("malformed hunk header: %q", line)
	}
	fields := strings.Fields(rest[:end])
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "-") || !strings.HasPrefix(fields[1], "+") {
		return hunk{}, fmt.Errorf("malformed hunk header: %q", line)
	}
	start, count, err := parseRange(fields[0][1:])
	if err != nil {
		return hunk{}, fmt.Errorf("malformed hunk header: %q", line)
	}
	return hunk{oldStart: start, oldCount: count}, nil
}

func parseRange(s string) (start, count int, err error) {
	count = 1
	if at := strings.IndexByte(s, ','); at >= 0 {
		count, err = strconv.Atoi(s[at+1:])
		if err != nil {
			return 0, 0, err
		}
		s = s[:at]
	}
	start, err = strconv.Atoi(s)
	if err != nil {
		return 0, 0, err
	}
	return start, count, nil
}
