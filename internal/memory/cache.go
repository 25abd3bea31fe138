package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/criticalinsight/sly/pkg/protocol"
)

// cacheHitThreshold is the cosine-distance cutoff below which check_cache
// treats a nearest neighbor as a hit.
const cacheHitThreshold = 0.1

// StoreCache assigns a new id, embeds query, inserts the cache row and its
// vector, and appends a "store_cache" event.
func (s *Store) StoreCache(ctx context.Context, query, response string) (string, error) {
	id := uuid.NewString()
	vec := s.embedder.Embed(query)

	col, err := s.vectors.Collection(ctx, "cache")
	if err != nil {
		return "", err
	}
	if err := col.Insert(ctx, vectorEntry(id, query, vec)); err != nil {
		return "", fmt.Errorf("store_cache vector insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (id, query, response) VALUES (?, ?, ?)`,
		id, query, response); err != nil {
		return "", fmt.Errorf("store_cache: %w", err)
	}

	if err := s.RecordEvent(ctx, protocol.OpStoreCache, map[string]any{"id": id}); err != nil {
		return "", err
	}
	return id, nil
}

// CheckCache returns the cached response for the nearest stored query iff
// its cosine distance is below cacheHitThreshold.
func (s *Store) CheckCache(ctx context.Context, query string) (string, bool, error) {
	vec := s.embedder.Embed(query)

	col, err := s.vectors.Collection(ctx, "cache")
	if err != nil {
		return "", false, err
	}
	hits, err := col.Search(ctx, vec, 1)
	if err != nil {
		return "", false, fmt.Errorf("check_cache search: %w", err)
	}
	if len(hits) == 0 || hits[0].Distance >= cacheHitThreshold {
		return "", false, nil
	}

	var response string
	err = s.db.QueryRowContext(ctx, `SELECT response FROM cache WHERE id = ?`, hits[0].ID).Scan(&response)
	if err != nil {
		return "", false, fmt.Errorf("check_cache lookup: %w", err)
	}
	return response, true, nil
}
