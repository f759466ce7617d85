// Package store archives normalized conversations in a local SQLite
// database so they can be listed, shown, and exported after the executor
// that produced them is gone. Entries are persisted with the wire codec,
// one row per entry, preserving order.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kestrelhq/normlog/internal"
	"github.com/kestrelhq/normlog/internal/logs"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	session_id TEXT,
	executor_type TEXT NOT NULL,
	prompt TEXT,
	summary TEXT,
	saved_at TEXT NOT NULL,
	entry_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	conversation_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (conversation_id, seq)
);
`

// Store is a SQLite-backed conversation archive.
type Store struct {
	db *sql.DB
}

// Summary is one row of the archive listing.
type Summary struct {
	ID           string
	SessionID    string
	ExecutorType string
	Summary      string
	SavedAt      string
	EntryCount   int
}

// Open opens (creating if needed) the archive at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StoreError{Op: "open", Path: path, Err: err}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Op: "open", Path: path, Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Path: path, Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &StoreError{Op: "migrate", Path: path, Err: err}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save archives a conversation and returns its archive id: the executor's
// session id when it supplied one, otherwise a generated one.
func (s *Store) Save(conv *logs.NormalizedConversation) (string, error) {
	id := uuid.NewString()
	if conv.SessionID != nil && *conv.SessionID != "" {
		id = *conv.SessionID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", &StoreError{Op: "save", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	// Re-saving a session replaces the previous archive of it.
	if _, err := tx.Exec("DELETE FROM entries WHERE conversation_id = ?", id); err != nil {
		return "", &StoreError{Op: "save", Err: err}
	}
	if _, err := tx.Exec("DELETE FROM conversations WHERE id = ?", id); err != nil {
		return "", &StoreError{Op: "save", Err: err}
	}

	_, err = tx.Exec(
		"INSERT INTO conversations (id, session_id, executor_type, prompt, summary, saved_at, entry_count) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id,
		nullable(conv.SessionID),
		conv.ExecutorType,
		nullable(conv.Prompt),
		nullable(conv.Summary),
		time.Now().UTC().Format(time.RFC3339),
		len(conv.Entries),
	)
	if err != nil {
		return "", &StoreError{Op: "save", Err: err}
	}

	stmt, err := tx.Prepare("INSERT INTO entries (conversation_id, seq, payload) VALUES (?, ?, ?)")
	if err != nil {
		return "", &StoreError{Op: "save", Err: err}
	}
	defer stmt.Close()

	for seq, entry := range conv.Entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			return "", &StoreError{Op: "save", Err: fmt.Errorf("entry %d: %w", seq, err)}
		}
		if _, err := stmt.Exec(id, seq, string(payload)); err != nil {
			return "", &StoreError{Op: "save", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", &StoreError{Op: "save", Err: err}
	}
	return id, nil
}

// List returns archive summaries, most recently saved first.
func (s *Store) List() ([]Summary, error) {
	rows, err := s.db.Query(
		"SELECT id, session_id, executor_type, summary, saved_at, entry_count FROM conversations ORDER BY saved_at DESC, id")
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var item Summary
		var sessionID, summary sql.NullString
		if err := rows.Scan(&item.ID, &sessionID, &item.ExecutorType, &summary, &item.SavedAt, &item.EntryCount); err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		item.SessionID = sessionID.String
		item.Summary = summary.String
		summaries = append(summaries, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return summaries, nil
}

// Get loads an archived conversation. An entry whose payload no longer
// decodes degrades to a visible error-marker entry instead of aborting the
// whole conversation.
func (s *Store) Get(id string) (*logs.NormalizedConversation, error) {
	var conv logs.NormalizedConversation
	var sessionID, prompt, summary sql.NullString
	err := s.db.QueryRow(
		"SELECT session_id, executor_type, prompt, summary FROM conversations WHERE id = ?", id).
		Scan(&sessionID, &conv.ExecutorType, &prompt, &summary)
	if err == sql.ErrNoRows {
		return nil, &StoreError{Op: "get", Path: id, Err: fmt.Errorf("conversation not found")}
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Path: id, Err: err}
	}
	conv.SessionID = optional(sessionID)
	conv.Prompt = optional(prompt)
	conv.Summary = optional(summary)

	rows, err := s.db.Query(
		"SELECT seq, payload FROM entries WHERE conversation_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, &StoreError{Op: "get", Path: id, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var seq int
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, &StoreError{Op: "get", Path: id, Err: err}
		}
		entry, err := logs.DecodeEntry([]byte(payload))
		if err != nil {
			internal.LogWarn("conversation %s: entry %d is undecodable: %v", id, seq, err)
			entry = logs.NewEntry(logs.ErrorMessage(), fmt.Sprintf("undecodable entry %d: %v", seq, err))
		}
		conv.Entries = append(conv.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "get", Path: id, Err: err}
	}
	return &conv, nil
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func optional(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
