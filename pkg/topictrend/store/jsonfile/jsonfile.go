// Package jsonfile persists learned topics as a single JSON object mapping
// each topic name to its embedding array.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cognicore/topictrend/pkg/topictrend/store"
	"github.com/cognicore/topictrend/pkg/topictrend/vector"
)

// DefaultPath is the conventional store location.
const DefaultPath = "topic_memory.json"

// Store reads and rewrites one JSON file.
type Store struct {
	path string
}

var _ store.Backend = (*Store)(nil)

// New returns a backend for the file at path. The file is created on the
// first save.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load implements store.Backend. A missing file yields no entries. Entries
// are returned sorted by name since JSON objects carry no order.
func (s *Store) Load(ctx context.Context) ([]store.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var raw map[string][]float32
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]store.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, store.Entry{Name: name, Embedding: vector.Embedding(raw[name])})
	}
	return entries, nil
}

// Save implements store.Backend. The file is replaced atomically so a crash
// mid-write leaves the previous version intact.
func (s *Store) Save(ctx context.Context, entries []store.Entry) error {
	raw := make(map[string][]float32, len(entries))
	for _, e := range entries {
		raw[e.Name] = []float32(e.Embedding)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode topics: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Close implements store.Backend.
func (s *Store) Close() error { return nil }
