// Package memory implements the graph-and-vector memory store: relational
// tables over modernc.org/sqlite for metadata, keys, and the append-only
// event log, paired with vectorindex's LanceDB collections for the three
// embedding-bearing tables (cache, nodes, library).
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/criticalinsight/sly/internal/embed"
	"github.com/criticalinsight/sly/internal/vectorindex"
)

const lockRetryDelay = time.Second

const schemaDDL = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	node_type TEXT NOT NULL,
	path TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_path ON nodes(path);

CREATE TABLE IF NOT EXISTS edges (
	from_id TEXT NOT NULL,
	to_id TEXT NOT NULL,
	rel_type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);

CREATE TABLE IF NOT EXISTS library (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	version TEXT NOT NULL,
	content TEXT NOT NULL,
	language TEXT NOT NULL,
	chunk_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cache (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	response TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS kv_cache (
	hash TEXT PRIMARY KEY,
	cache_id TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_log (
	path TEXT PRIMARY KEY,
	last_ingested INTEGER NOT NULL,
	content_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	op TEXT NOT NULL,
	data TEXT NOT NULL,
	timestamp_ms INTEGER NOT NULL,
	version INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS skills (
	name TEXT PRIMARY KEY,
	code TEXT NOT NULL,
	description TEXT NOT NULL,
	signature TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	status_err TEXT NOT NULL DEFAULT '',
	depth INTEGER NOT NULL,
	input TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_messages (
	session_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (session_id, idx)
);
`

// Store is the graph-and-vector memory store.
type Store struct {
	db       *sql.DB
	vectors  *vectorindex.Store
	embedder *embed.Engine
	lockFile string
}

// Open opens (creating if absent) the SQLite relational store and the
// LanceDB vector collections under dir, taking the store's single-writer
// lock with a fixed-delay retry loop: at most one writer process at a time.
func Open(ctx context.Context, dir string, embedder *embed.Engine) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}

	lockFile := filepath.Join(dir, ".write.lock")
	if err := acquireLock(lockFile, 10); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "memory.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		releaseLock(lockFile)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // the sqlite driver multiplexes writers badly otherwise

	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		releaseLock(lockFile)
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	vectors, err := vectorindex.Open(ctx, filepath.Join(dir, "vectors"))
	if err != nil {
		db.Close()
		releaseLock(lockFile)
		return nil, fmt.Errorf("open vector index: %w", err)
	}

	return &Store{db: db, vectors: vectors, embedder: embedder, lockFile: lockFile}, nil
}

// Close releases the SQLite handle, the vector collections, and the
// single-writer lock.
func (s *Store) Close() error {
	if err := s.vectors.Close(); err != nil {
		return err
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	releaseLock(s.lockFile)
	return nil
}

// acquireLock takes an exclusive lock file, retrying attempts times with a
// fixed delay, tolerating short overlaps between the executor and a
// read-only supervisor.
func acquireLock(path string, attempts int) error {
	for i := 0; i < attempts; i++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			f.Close()
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("acquire memory store lock: %w", err)
		}
		time.Sleep(lockRetryDelay)
	}
	return fmt.Errorf("acquire memory store lock: exhausted %d attempts", attempts)
}

func releaseLock(path string) {
	_ = os.Remove(path)
}
