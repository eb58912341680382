package valueflow

import "sort"

// Store accumulates named values for the lifetime of one conversation.
//
// Insertion is idempotent-if-present: storing a name that already exists is
// a silent no-op, never an overwrite. This guards against a later turn
// accidentally clobbering an earlier turn's result. There is no delete; the
// store only grows.
//
// A Store is owned by exactly one conversation, which processes turns
// strictly in order, so no synchronization is performed here.
type Store struct {
	values map[string]ValueObject
}

// NewStore creates an empty value store.
func NewStore() *Store {
	return &Store{values: make(map[string]ValueObject)}
}

// Get retrieves a stored value by name.
// Returns *NotFoundError carrying the available names on a miss.
func (s *Store) Get(name string) (ValueObject, error) {
	v, ok := s.values[name]
	if !ok {
		return ValueObject{}, &NotFoundError{Name: name, Available: s.Names()}
	}
	return v, nil
}

// PutIfAbsent inserts a value under name unless the name is already present.
func (s *Store) PutIfAbsent(name string, v ValueObject) {
	if _, ok := s.values[name]; ok {
		return
	}
	s.values[name] = v
}

// Has reports whether name is present.
func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Names returns all stored names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	return len(s.values)
}

// Snapshot returns a copy of the store's contents, for export.
func (s *Store) Snapshot() map[string]ValueObject {
	snap := make(map[string]ValueObject, len(s.values))
	for name, v := range s.values {
		snap[name] = v
	}
	return snap
}
