// Package memory implements the transaction store contract in memory. It
// backs tests and dry runs; semantics (partition bookkeeping, per-partition
// addressing, not-found errors) match the remote backends.
package memory

import (
	"context"
	"sync"

	"github.com/yhhuang/moneybook/internal/ledger"
)

type Store struct {
	mu         sync.Mutex
	order      []string
	partitions map[string][]ledger.Record
}

func New() *Store {
	return &Store{partitions: make(map[string][]ledger.Record)}
}

func (s *Store) ListPartitions(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, len(s.order))
	copy(keys, s.order)

	return keys, nil
}

func (s *Store) ReadPartition(_ context.Context, key string) ([]ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.partitions[key]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	out := make([]ledger.Record, len(records))
	for i, rec := range records {
		out[i] = cloneRecord(rec)
	}

	return out, nil
}

func (s *Store) CreatePartition(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.create(key)

	return nil
}

func (s *Store) AppendRecord(_ context.Context, key string, rec ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.create(key)
	s.partitions[key] = append(s.partitions[key], cloneRecord(rec))

	return nil
}

func (s *Store) UpdateRecord(_ context.Context, key, id string, fields ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.partitions[key]
	for i, rec := range records {
		if rec[ledger.FieldID] != id {
			continue
		}

		updated := cloneRecord(rec)
		for field, value := range fields {
			updated[field] = value
		}

		records[i] = updated

		return nil
	}

	return ledger.ErrNotFound
}

func (s *Store) DeleteRecord(_ context.Context, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.partitions[key]
	for i, rec := range records {
		if rec[ledger.FieldID] == id {
			s.partitions[key] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}

	return ledger.ErrNotFound
}

func (s *Store) FindRecordLocation(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.order {
		for _, rec := range s.partitions[key] {
			if rec[ledger.FieldID] == id {
				return key, nil
			}
		}
	}

	return "", ledger.ErrNotFound
}

func (s *Store) create(key string) {
	if _, ok := s.partitions[key]; ok {
		return
	}

	s.partitions[key] = nil
	s.order = append(s.order, key)
}

func cloneRecord(rec ledger.Record) ledger.Record {
	out := make(ledger.Record, len(rec))
	for field, value := range rec {
		out[field] = value
	}

	return out
}
