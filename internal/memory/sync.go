package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CheckSyncStatus returns the last-ingested content hash for path, if any.
// Callers skip re-extraction when the returned hash equals the file's
// current content hash.
func (s *Store) CheckSyncStatus(ctx context.Context, path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT content_hash FROM sync_log WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("check_sync_status: %w", err)
	}
	return hash, true, nil
}

// UpdateSyncStatus records that path was last ingested at hash.
func (s *Store) UpdateSyncStatus(ctx context.Context, path, hash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sync_log (path, last_ingested, content_hash) VALUES (?, ?, ?)`,
		path, time.Now().UnixMilli(), hash)
	if err != nil {
		return fmt.Errorf("update_sync_status: %w", err)
	}
	return nil
}
