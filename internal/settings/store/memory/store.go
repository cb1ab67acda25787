// Package memory implements the settings store contract in memory, for tests.
package memory

import (
	"context"
	"sync"

	"github.com/yhhuang/moneybook/internal/settings"
)

type Store struct {
	mu      sync.Mutex
	entries []settings.Entry
}

func New(entries ...settings.Entry) *Store {
	return &Store{entries: entries}
}

func (s *Store) ReadAll(_ context.Context) ([]settings.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]settings.Entry, len(s.entries))
	copy(out, s.entries)

	return out, nil
}

func (s *Store) Put(_ context.Context, entry settings.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.Section == entry.Section && e.Key == entry.Key {
			s.entries[i] = entry
			return nil
		}
	}

	s.entries = append(s.entries, entry)

	return nil
}

func (s *Store) Delete(_ context.Context, section, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.Section == section && e.Key == key {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return nil
		}
	}

	return nil
}
