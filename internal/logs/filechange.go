package logs

import "encoding/json"

// FileChangeKind discriminates FileChange variants on the wire under the
// "action" key.
type FileChangeKind string

const (
	ChangeWrite  FileChangeKind = "write"
	ChangeDelete FileChangeKind = "delete"
	ChangeRename FileChangeKind = "rename"
	ChangeEdit   FileChangeKind = "edit"
)

// FileChange is one file mutation within a file_edit action. A sequence of
// changes is sequential: each change applies to the result of the previous
// one, not to the original file.
type FileChange struct {
	Kind FileChangeKind

	Content string // write: full content to create-or-overwrite with
	NewPath string // rename
	// edit: unified diff containing file header and hunks. HasLineNumbers
	// flags whether the hunk line numbers are trustworthy; when false,
	// consumers must locate hunks by content matching instead.
	UnifiedDiff    string
	HasLineNumbers bool
}

// WriteChange creates the file if it doesn't exist and overwrites its
// content.
func WriteChange(content string) FileChange {
	return FileChange{Kind: ChangeWrite, Content: content}
}

// DeleteChange removes the file.
func DeleteChange() FileChange {
	return FileChange{Kind: ChangeDelete}
}

// RenameChange renames or moves the file.
func RenameChange(newPath string) FileChange {
	return FileChange{Kind: ChangeRename, NewPath: newPath}
}

// EditChange edits the file with a unified diff.
func EditChange(unifiedDiff string, hasLineNumbers bool) FileChange {
	return FileChange{Kind: ChangeEdit, UnifiedDiff: unifiedDiff, HasLineNumbers: hasLineNumbers}
}

// MarshalJSON emits the variant under the "action" discriminant key.
func (c FileChange) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ChangeWrite:
		return json.Marshal(struct {
			Action  FileChangeKind `json:"action"`
			Content string         `json:"content"`
		}{c.Kind, c.Content})
	case ChangeDelete:
		return json.Marshal(struct {
			Action FileChangeKind `json:"action"`
		}{c.Kind})
	case ChangeRename:
		return json.Marshal(struct {
			Action  FileChangeKind `json:"action"`
			NewPath string         `json:"new_path"`
		}{c.Kind, c.NewPath})
	case ChangeEdit:
		return json.Marshal(struct {
			Action         FileChangeKind `json:"action"`
			UnifiedDiff    string         `json:"unified_diff"`
			HasLineNumbers bool           `json:"has_line_numbers"`
		}{c.Kind, c.UnifiedDiff, c.HasLineNumbers})
	default:
		return nil, &DecodeError{Union: "FileChange", Tag: string(c.Kind)}
	}
}

// UnmarshalJSON decodes by the "action" discriminant. Unknown discriminants
// and missing variant fields fail with a DecodeError.
func (c *FileChange) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Action         FileChangeKind `json:"action"`
		Content        *string        `json:"content"`
		NewPath        *string        `json:"new_path"`
		UnifiedDiff    *string        `json:"unified_diff"`
		HasLineNumbers *bool          `json:"has_line_numbers"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return wrapDecode("FileChange", err)
	}
	missing := func(field string) error {
		return &DecodeError{Union: "FileChange", Tag: string(shadow.Action), Err: errMissingField(field)}
	}
	switch shadow.Action {
	case ChangeWrite:
		if shadow.Content == nil {
			return missing("content")
		}
		*c = FileChange{Kind: shadow.Action, Content: *shadow.Content}
	case ChangeDelete:
		*c = FileChange{Kind: shadow.Action}
	case ChangeRename:
		if shadow.NewPath == nil {
			return missing("new_path")
		}
		*c = FileChange{Kind: shadow.Action, NewPath: *shadow.NewPath}
	case ChangeEdit:
		if shadow.UnifiedDiff == nil {
			return missing("unified_diff")
		}
		if shadow.HasLineNumbers == nil {
			return missing("has_line_numbers")
		}
		*c = FileChange{Kind: shadow.Action, UnifiedDiff: *shadow.UnifiedDiff, HasLineNumbers: *shadow.HasLineNumbers}
	default:
		return &DecodeError{Union: "FileChange", Tag: string(shadow.Action)}
	}
	return nil
}
