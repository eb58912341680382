package archive

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory archive for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]storedRecord // conversationID -> name -> record
	closed bool
}

// storedRecord holds a record with metadata for List().
type storedRecord struct {
	record    Record
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates a new in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]storedRecord),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(conversationID string, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.data[conversationID] == nil {
		m.data[conversationID] = make(map[string]storedRecord)
	}

	// Re-saving a name keeps its original sequence, matching the SQLite
	// upsert behavior.
	seq := 1
	if existing, ok := m.data[conversationID][record.Name]; ok {
		seq = existing.sequence
	} else {
		for _, sr := range m.data[conversationID] {
			if sr.sequence >= seq {
				seq = sr.sequence + 1
			}
		}
	}

	m.data[conversationID][record.Name] = storedRecord{
		record:    record,
		sequence:  seq,
		timestamp: time.Now().UTC(),
	}

	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(conversationID, name string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	conv, ok := m.data[conversationID]
	if !ok {
		return Record{}, ErrNotFound
	}

	sr, ok := conv[name]
	if !ok {
		return Record{}, ErrNotFound
	}
	return sr.record, nil
}

// List implements Store.
func (m *MemoryStore) List(conversationID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	conv, ok := m.data[conversationID]
	if !ok {
		return nil, nil
	}

	infos := make([]Info, 0, len(conv))
	for name, sr := range conv {
		infos = append(infos, Info{
			ConversationID: conversationID,
			Name:           name,
			Sequence:       sr.sequence,
			Timestamp:      sr.timestamp,
		})
	}

	// Sort by sequence
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})

	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(conversationID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if conv, ok := m.data[conversationID]; ok {
		delete(conv, name)
	}
	return nil
}

// DeleteConversation implements Store.
func (m *MemoryStore) DeleteConversation(conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, conversationID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}
