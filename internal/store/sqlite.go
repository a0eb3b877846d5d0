// Package store is the SQLite persistence layer for clipboard history and
// the word-frequency learner.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gemkey/internal/domain"
)

// Schema for the gemkey store.
const schema = `
CREATE TABLE IF NOT EXISTS clips (
    id          TEXT PRIMARY KEY,
    text        TEXT NOT NULL,
    pinned      INTEGER NOT NULL DEFAULT 0,
    created_ns  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clips_created ON clips(pinned DESC, created_ns DESC);

CREATE TABLE IF NOT EXISTS words (
    word        TEXT NOT NULL,
    language    TEXT NOT NULL,
    count       INTEGER NOT NULL DEFAULT 0,
    last_used_ns INTEGER NOT NULL,
    PRIMARY KEY (word, language)
);

CREATE INDEX IF NOT EXISTS idx_words_prefix ON words(language, word);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertClip stores one clipboard entry.
func (s *Store) InsertClip(entry domain.ClipEntry) error {
	pinned := 0
	if entry.Pinned {
		pinned = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO clips (id, text, pinned, created_ns) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.Text, pinned, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert clip: %w", err)
	}
	return nil
}

// ListClips returns all entries, pinned first, newest first within each group.
func (s *Store) ListClips() ([]domain.ClipEntry, error) {
	rows, err := s.db.Query(`SELECT id, text, pinned, created_ns FROM clips ORDER BY pinned DESC, created_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var entries []domain.ClipEntry
	for rows.Next() {
		var (
			entry     domain.ClipEntry
			pinned    int
			createdNS int64
		)
		if err := rows.Scan(&entry.ID, &entry.Text, &pinned, &createdNS); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		entry.Pinned = pinned != 0
		entry.CreatedAt = time.Unix(0, createdNS)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LatestClip returns the most recently recorded entry, if any.
func (s *Store) LatestClip() (domain.ClipEntry, bool, error) {
	row := s.db.QueryRow(`SELECT id, text, pinned, created_ns FROM clips ORDER BY created_ns DESC LIMIT 1`)

	var (
		entry     domain.ClipEntry
		pinned    int
		createdNS int64
	)
	err := row.Scan(&entry.ID, &entry.Text, &pinned, &createdNS)
	if err == sql.ErrNoRows {
		return domain.ClipEntry{}, false, nil
	}
	if err != nil {
		return domain.ClipEntry{}, false, fmt.Errorf("latest clip: %w", err)
	}
	entry.Pinned = pinned != 0
	entry.CreatedAt = time.Unix(0, createdNS)
	return entry, true, nil
}

// SetClipPinned updates an entry's pinned flag.
func (s *Store) SetClipPinned(id string, pinned bool) error {
	value := 0
	if pinned {
		value = 1
	}
	if _, err := s.db.Exec(`UPDATE clips SET pinned = ? WHERE id = ?`, value, id); err != nil {
		return fmt.Errorf("pin clip: %w", err)
	}
	return nil
}

// DeleteClip removes one entry.
func (s *Store) DeleteClip(id string) error {
	if _, err := s.db.Exec(`DELETE FROM clips WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete clip: %w", err)
	}
	return nil
}

// DeleteUnpinnedClips removes every unpinned entry.
func (s *Store) DeleteUnpinnedClips() error {
	if _, err := s.db.Exec(`DELETE FROM clips WHERE pinned = 0`); err != nil {
		return fmt.Errorf("clear clips: %w", err)
	}
	return nil
}

// TrimClips deletes the oldest unpinned entries beyond keep.
func (s *Store) TrimClips(keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.db.Exec(`
		DELETE FROM clips WHERE pinned = 0 AND id NOT IN (
			SELECT id FROM clips WHERE pinned = 0 ORDER BY created_ns DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("trim clips: %w", err)
	}
	return nil
}

// RecordWord upserts a word's frequency count and recency.
func (s *Store) RecordWord(word, language string, usedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO words (word, language, count, last_used_ns) VALUES (?, ?, 1, ?)
		ON CONFLICT(word, language) DO UPDATE SET count = count + 1, last_used_ns = excluded.last_used_ns`,
		word, language, usedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record word: %w", err)
	}
	return nil
}

// SuggestWords returns up to limit words with the given prefix, ranked by
// count then recency.
func (s *Store) SuggestWords(prefix, language string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.db.Query(`
		SELECT word, count FROM words
		WHERE language = ? AND word LIKE ? || '%'
		ORDER BY count DESC, last_used_ns DESC
		LIMIT ?`, language, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest words: %w", err)
	}
	defer rows.Close()

	var suggestions []domain.Suggestion
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(&s.Word, &s.Count); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}
