package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/topictrend/pkg/topictrend/store"
)

// Store is an in-memory implementation of store.Backend for tests.
type Store struct {
	mu      sync.RWMutex
	entries []store.Entry
	saves   int
	loadErr error
	saveErr error
}

var _ store.Backend = (*Store)(nil)

// New creates a new in-memory store seeded with entries.
func New(entries ...store.Entry) *Store {
	return &Store{entries: copyEntries(entries)}
}

// Close implements store.Backend.
func (s *Store) Close() error { return nil }

// Load implements store.Backend.
func (s *Store) Load(ctx context.Context) ([]store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return copyEntries(s.entries), nil
}

// Save implements store.Backend.
func (s *Store) Save(ctx context.Context, entries []store.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries = copyEntries(entries)
	s.saves++
	return nil
}

// SetLoadError makes subsequent loads fail, simulating a corrupt store.
func (s *Store) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// SetSaveError makes subsequent saves fail, simulating unwritable storage.
func (s *Store) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves returns how many saves succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Entries returns a copy of the last saved entries.
func (s *Store) Entries() []store.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEntries(s.entries)
}

func copyEntries(in []store.Entry) []store.Entry {
	if in == nil {
		return nil
	}
	out := make([]store.Entry, len(in))
	for i, e := range in {
		out[i] = store.Entry{Name: e.Name, Embedding: e.Embedding.Clone()}
	}
	return out
}
