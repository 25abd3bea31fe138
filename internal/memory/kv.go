package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetKVCache reads the cache id stored under hash, if any.
func (s *Store) GetKVCache(ctx context.Context, hash string) (string, bool, error) {
	var cacheID string
	err := s.db.QueryRowContext(ctx, `SELECT cache_id FROM kv_cache WHERE hash = ?`, hash).Scan(&cacheID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get_kv_cache: %w", err)
	}
	return cacheID, true, nil
}

// SetKVCache records hash -> cacheID.
func (s *Store) SetKVCache(ctx context.Context, hash, cacheID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv_cache (hash, cache_id, created_at) VALUES (?, ?, ?)`,
		hash, cacheID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set_kv_cache: %w", err)
	}
	return nil
}
