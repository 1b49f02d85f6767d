// Package store keeps the learned topics and their representative
// embeddings. The TopicStore is an append-only data access object over a
// pluggable Backend; every new registration is written through to the
// backend before Register returns.
//
// The store is not safe for concurrent writers, in-process or across
// processes. Callers must serialise canonicalization runs themselves.
package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cognicore/topictrend/pkg/topictrend/internalerr"
	"github.com/cognicore/topictrend/pkg/topictrend/vector"
)

// DefaultThreshold is the minimum cosine similarity for a semantic match.
const DefaultThreshold = 0.85

// Entry is one learned topic.
type Entry struct {
	Name      string
	Embedding vector.Embedding
}

// Backend persists the full set of learned topics.
type Backend interface {
	// Load returns all persisted entries. A missing store is not an error
	// and yields no entries.
	Load(ctx context.Context) ([]Entry, error)
	// Save persists the full set of entries. Backends may treat entries
	// already present as unchanged.
	Save(ctx context.Context, entries []Entry) error
	Close() error
}

// TopicStore maps learned topic names to their embeddings.
type TopicStore struct {
	backend Backend
	index   vector.Index
	entries []Entry
	byName  map[string]int
}

// Option configures a TopicStore.
type Option func(*TopicStore)

// WithIndex replaces the default linear nearest-neighbour scan.
// The index must be empty.
func WithIndex(idx vector.Index) Option {
	return func(s *TopicStore) {
		if idx != nil {
			s.index = idx
		}
	}
}

// Load reads the persisted topics from b.
//
// Load always returns a usable store. When the persisted data cannot be read
// or parsed, the store starts empty and the returned error (wrapping
// internalerr.ErrInvalidInput) describes what was discarded; callers should
// log it and continue.
func Load(ctx context.Context, b Backend, opts ...Option) (*TopicStore, error) {
	s := &TopicStore{
		backend: b,
		index:   vector.NewLinear(),
		byName:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	entries, err := b.Load(ctx)
	if err != nil {
		return s, fmt.Errorf("%w: topic store unreadable, starting empty: %v", internalerr.ErrInvalidInput, err)
	}
	for _, e := range entries {
		if validate(e.Name, e.Embedding) != nil {
			continue
		}
		s.insert(e.Name, e.Embedding)
	}
	return s, nil
}

// NearestMatch returns the learned topic most similar to candidate when that
// similarity is at least threshold. Ties resolve to the lexicographically
// smallest name.
func (s *TopicStore) NearestMatch(candidate vector.Embedding, threshold float64) (string, bool) {
	hit, ok := s.Nearest(candidate)
	if !ok || hit.Similarity < threshold {
		return "", false
	}
	return hit.Name, true
}

// Nearest returns the best candidate regardless of threshold.
func (s *TopicStore) Nearest(candidate vector.Embedding) (vector.Hit, bool) {
	if len(candidate) == 0 {
		return vector.Hit{}, false
	}
	return s.index.Nearest(candidate)
}

// Register adds a learned topic. Registering a name that already exists is a
// no-op and reports added=false; the original embedding is kept.
//
// After an insertion the full store is saved. If saving fails the topic stays
// registered in memory and the returned error wraps internalerr.ErrPersist.
func (s *TopicStore) Register(ctx context.Context, name string, e vector.Embedding) (added bool, err error) {
	if err := validate(name, e); err != nil {
		return false, err
	}
	if _, ok := s.byName[name]; ok {
		return false, nil
	}

	s.insert(name, e)
	if err := s.backend.Save(ctx, s.Entries()); err != nil {
		return true, fmt.Errorf("%w: register %q: %v", internalerr.ErrPersist, name, err)
	}
	return true, nil
}

// Get returns a copy of the embedding stored for name.
func (s *TopicStore) Get(name string) (vector.Embedding, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.entries[i].Embedding.Clone(), true
}

// Len returns the number of learned topics.
func (s *TopicStore) Len() int {
	return len(s.entries)
}

// Names returns the learned topic names in lexicographic order.
func (s *TopicStore) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Entries returns a copy of all entries in insertion order.
func (s *TopicStore) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Name: e.Name, Embedding: e.Embedding.Clone()}
	}
	return out
}

// Close releases the backend.
func (s *TopicStore) Close() error {
	return s.backend.Close()
}

func (s *TopicStore) insert(name string, e vector.Embedding) {
	if _, ok := s.byName[name]; ok {
		return
	}
	stored := e.Clone()
	s.byName[name] = len(s.entries)
	s.entries = append(s.entries, Entry{Name: name, Embedding: stored})
	s.index.Add(name, stored)
}

func validate(name string, e vector.Embedding) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty topic name", internalerr.ErrInvalidInput)
	}
	if len(e) == 0 {
		return fmt.Errorf("%w: empty embedding for %q", internalerr.ErrInvalidInput, name)
	}
	for _, v := range e {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: non-finite embedding for %q", internalerr.ErrInvalidInput, name)
		}
	}
	return nil
}
