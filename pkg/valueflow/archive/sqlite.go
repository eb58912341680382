package archive

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists archived values to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite archive.
// The path should be a file path (e.g., "./archive.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS conversation_values (
			conversation_id TEXT NOT NULL,
			name TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			value REAL NOT NULL,
			display_value REAL NOT NULL,
			scale TEXT NOT NULL,
			source TEXT NOT NULL,
			description TEXT NOT NULL,
			PRIMARY KEY (conversation_id, name)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_conversation_values_conversation_id
		ON conversation_values(conversation_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(conversationID string, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// Use upsert to handle repeated exports of the same conversation.
	// Sequence is max + 1 within the conversation.
	_, err := s.db.Exec(`
		INSERT INTO conversation_values
			(conversation_id, name, sequence, timestamp, value, display_value, scale, source, description)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(sequence) FROM conversation_values WHERE conversation_id = ?), 0) + 1,
			?, ?, ?, ?, ?, ?
		)
		ON CONFLICT(conversation_id, name) DO UPDATE SET
			timestamp = excluded.timestamp,
			value = excluded.value,
			display_value = excluded.display_value,
			scale = excluded.scale,
			source = excluded.source,
			description = excluded.description
	`, conversationID, record.Name, conversationID,
		time.Now().UTC().Format(time.RFC3339Nano),
		record.Value, record.DisplayValue, record.Scale, record.Source, record.Description)

	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(conversationID, name string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	record := Record{Name: name}
	err := s.db.QueryRow(`
		SELECT value, display_value, scale, source, description
		FROM conversation_values
		WHERE conversation_id = ? AND name = ?
	`, conversationID, name).Scan(
		&record.Value, &record.DisplayValue, &record.Scale, &record.Source, &record.Description)

	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load record: %w", err)
	}
	return record, nil
}

// List implements Store.
func (s *SQLiteStore) List(conversationID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT name, sequence, timestamp
		FROM conversation_values
		WHERE conversation_id = ?
		ORDER BY sequence
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var info Info
		var timestamp string
		if err := rows.Scan(&info.Name, &info.Sequence, &timestamp); err != nil {
			return nil, fmt.Errorf("scan record info: %w", err)
		}
		info.ConversationID = conversationID
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(conversationID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM conversation_values
		WHERE conversation_id = ? AND name = ?
	`, conversationID, name)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// DeleteConversation implements Store.
func (s *SQLiteStore) DeleteConversation(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM conversation_values WHERE conversation_id = ?
	`, conversationID)
	if err != nil {
		return fmt.Errorf("delete conversation records: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
