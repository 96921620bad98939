// Package memstore is an in-memory implementation of store.Store for
// tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/loadshare/brain/pkg/brain/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu        sync.RWMutex
	processes map[string]store.Process
	externals map[string]store.External
	ingests   []store.Ingest
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		processes: make(map[string]store.Process),
		externals: make(map[string]store.External),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertProcess inserts or updates a process record, keyed by name.
func (s *Store) UpsertProcess(ctx context.Context, p store.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Steps = append([]string(nil), p.Steps...)
	s.processes[p.ProcessName] = p
	return nil
}

// ListProcesses returns all process records in name order.
func (s *Store) ListProcesses(ctx context.Context) ([]store.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]store.Process, 0, len(s.processes))
	for _, p := range s.processes {
		p.Steps = append([]string(nil), p.Steps...)
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ProcessName < result[j].ProcessName
	})
	return result, nil
}

// UpsertExternal inserts or updates an external register entry.
func (s *Store) UpsertExternal(ctx context.Context, e store.External) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.externals[e.ProcessName] = e
	return nil
}

// ListExternal returns all external register entries in name order.
func (s *Store) ListExternal(ctx context.Context) ([]store.External, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]store.External, 0, len(s.externals))
	for _, e := range s.externals {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ProcessName < result[j].ProcessName
	})
	return result, nil
}

// RecordIngest appends a manifest entry.
func (s *Store) RecordIngest(ctx context.Context, in store.Ingest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ingests = append(s.ingests, in)
	return nil
}

// ListIngests returns manifest entries in insertion order.
func (s *Store) ListIngests(ctx context.Context) ([]store.Ingest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]store.Ingest(nil), s.ingests...), nil
}
