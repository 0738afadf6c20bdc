package trace

import "sync"

// Store is an ordered in-memory buffer of Records. Append order equals call
// order within one drain window. Append, Drain, and Clear are mutually
// exclusive so a drain never loses a concurrent append and two concurrent
// drains never return overlapping records. Nothing is ever persisted.
type Store struct {
	mu      sync.Mutex
	records []*Record
}

// NewStore returns an empty Store. Create one per logical unit of work (for
// the HTTP layer, one per request) so traces from overlapping requests do
// not interleave.
func NewStore() *Store {
	return &Store{}
}

var defaultStore = NewStore()

// Default returns the process-wide Store used by instrumented calls whose
// context carries no request-scoped Store.
func Default() *Store {
	return defaultStore
}

// Append adds a record to the tail of the buffer.
func (s *Store) Append(record *Record) {
	if s == nil || record == nil {
		return
	}
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
}

// Drain atomically returns all buffered records in call order and resets the
// store to empty.
func (s *Store) Drain() []*Record {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	drained := s.records
	s.records = nil
	s.mu.Unlock()
	return drained
}

// Clear resets the store to empty without returning the records.
func (s *Store) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
}

// Peek returns a copy of the buffered records without mutating the store.
func (s *Store) Peek() []*Record {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]*Record, len(s.records))
	copy(copied, s.records)
	return copied
}

// Len returns the number of buffered records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
