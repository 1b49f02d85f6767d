package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cognicore/topictrend/pkg/topictrend/store"
	"github.com/cognicore/topictrend/pkg/topictrend/vector"
)

// Store implements store.Backend using SQLite. Each learned topic is one row;
// rows are never updated or deleted.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var _ store.Backend = (*Store)(nil)

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode so readers never observe a half-written registration
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS topics (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	dims INTEGER NOT NULL,
	embedding BLOB NOT NULL,
	created_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Load implements store.Backend. Entries come back in registration order.
func (s *Store) Load(ctx context.Context) ([]store.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, dims, embedding FROM topics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []store.Entry
	for rows.Next() {
		var (
			name string
			dims int
			blob []byte
		)
		if err := rows.Scan(&name, &dims, &blob); err != nil {
			return nil, err
		}
		emb, err := unmarshalEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", name, err)
		}
		if len(emb) != dims {
			return nil, fmt.Errorf("topic %q: expected %d dims, got %d", name, dims, len(emb))
		}
		entries = append(entries, store.Entry{Name: name, Embedding: emb})
	}
	return entries, rows.Err()
}

// Save implements store.Backend. Entries whose name is already stored are
// left untouched, which keeps registration append-only.
func (s *Store) Save(ctx context.Context, entries []store.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO topics (id, name, dims, embedding, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO NOTHING;
`
	now := time.Now().UTC()
	for _, e := range entries {
		if _, err := tx.ExecContext(
			ctx,
			stmt,
			s.newID(now),
			e.Name,
			len(e.Embedding),
			marshalEmbedding(e.Embedding),
			now.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert topic %q: %w", e.Name, err)
		}
	}
	return tx.Commit()
}

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// marshalEmbedding encodes v as little-endian float32s.
func marshalEmbedding(v vector.Embedding) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func unmarshalEmbedding(data []byte) (vector.Embedding, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(data))
	}
	v := make(vector.Embedding, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}
