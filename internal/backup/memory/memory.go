// Package memory is an in-memory backup mirror used for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fsreport/internal/core"
)

type Store struct {
	mu      sync.Mutex
	entries []core.TimeEntry
}

func New() *Store {
	return &Store{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.TimeEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

// RemoveEntry drops the entry with the given id; unknown ids are a no-op,
// matching the semantics of removing an already-absent backup row.
func (s *Store) RemoveEntry(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.ID != entryID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Entries returns a copy of the mirrored entries.
func (s *Store) Entries() []core.TimeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TimeEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
