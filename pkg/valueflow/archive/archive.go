// Package archive provides end-of-conversation export of named values.
//
// The live value store is memory-only and owned by one conversation; an
// archive is an explicit snapshot taken when the conversation finishes,
// so results can be inspected or compared later. It is not a durability
// layer for the live store.
package archive

import (
	"errors"
	"time"
)

// Record is one archived named value.
// Field names match the value records exchanged with external collaborators.
type Record struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	DisplayValue float64 `json:"display_value"`
	Scale        string  `json:"scale"`
	Source       string  `json:"source"`
	Description  string  `json:"description"`
}

// Store persists archived conversation values.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a record for a conversation.
	// Overwrites if a record for (conversationID, record.Name) already exists.
	Save(conversationID string, record Record) error

	// Load retrieves a record by name.
	// Returns ErrNotFound if the record doesn't exist.
	Load(conversationID, name string) (Record, error)

	// List returns all records for a conversation, ordered by the sequence
	// they were saved in. Returns empty slice (not error) for an unknown
	// conversation.
	List(conversationID string) ([]Info, error)

	// Delete removes a specific record.
	// Returns nil if the record doesn't exist.
	Delete(conversationID, name string) error

	// DeleteConversation removes all records for a conversation.
	// Returns nil if the conversation has no records.
	DeleteConversation(conversationID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides record metadata without loading the full record.
type Info struct {
	ConversationID string
	Name           string
	Sequence       int
	Timestamp      time.Time
}

// Sentinel errors for archive operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("archive record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("archive store closed")
)
