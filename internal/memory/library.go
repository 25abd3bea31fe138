package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/criticalinsight/sly/pkg/protocol"
)

// definitionWeight discounts "definition" chunks relative to other chunk
// types when re-scoring search_library candidates.
const definitionWeight = 0.8
const otherChunkWeight = 1.0

// BatchAddLibraryEntries embeds every entry's content in one batch, inserts
// the rows and their vectors, and appends a single "batch_add_library"
// event naming every inserted library.
func (s *Store) BatchAddLibraryEntries(ctx context.Context, entries []LibraryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	contents := make([]string, len(entries))
	for i, e := range entries {
		contents[i] = e.Content
	}
	vectors := s.embedder.BatchEmbed(contents)

	col, err := s.vectors.Collection(ctx, "library")
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO library (id, name, version, content, language, chunk_type) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	names := make([]string, 0, len(entries))
	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.Version, e.Content, e.Language, e.ChunkType); err != nil {
			return fmt.Errorf("insert library entry %s: %w", e.ID, err)
		}
		if err := col.Insert(ctx, vectorEntry(e.ID, e.Content, vectors[i])); err != nil {
			return fmt.Errorf("insert library vector %s: %w", e.ID, err)
		}
		names = append(names, e.Name)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.RecordEvent(ctx, protocol.OpBatchAddLibrary, map[string]any{
		"count":         len(entries),
		"library_names": names,
	})
}

// RegisterLibrary inserts a metadata-only placeholder row — empty content,
// zero vector — for a library not yet chunked and embedded.
func (s *Store) RegisterLibrary(ctx context.Context, name, version, language string) (string, error) {
	id := uuid.NewString()
	zero := make([]float32, 384)

	col, err := s.vectors.Collection(ctx, "library")
	if err != nil {
		return "", err
	}
	if err := col.Insert(ctx, vectorEntry(id, "", zero)); err != nil {
		return "", fmt.Errorf("register_library vector: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO library (id, name, version, content, language, chunk_type) VALUES (?, ?, ?, '', ?, 'metadata')`,
		id, name, version, language); err != nil {
		return "", fmt.Errorf("register_library: %w", err)
	}

	return id, s.RecordEvent(ctx, protocol.OpBatchAddLibrary, map[string]any{
		"count":         1,
		"library_names": []string{name},
	})
}

// SearchLibrary fetches k*2 nearest-neighbour candidates, re-scores each by
// distance*weight(chunk_type), and returns the top k by ascending score.
func (s *Store) SearchLibrary(ctx context.Context, query string, k int) ([]LibraryResult, error) {
	vec := s.embedder.Embed(query)

	col, err := s.vectors.Collection(ctx, "library")
	if err != nil {
		return nil, err
	}
	hits, err := col.Search(ctx, vec, k*2)
	if err != nil {
		return nil, fmt.Errorf("search_library: %w", err)
	}

	results := make([]LibraryResult, 0, len(hits))
	for _, h := range hits {
		entry, err := s.getLibraryEntry(ctx, h.ID)
		if err != nil {
			continue
		}
		weight := float32(otherChunkWeight)
		if entry.ChunkType == "definition" {
			weight = definitionWeight
		}
		results = append(results, LibraryResult{Entry: entry, Score: h.Distance * weight})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *Store) getLibraryEntry(ctx context.Context, id string) (LibraryEntry, error) {
	var e LibraryEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, version, content, language, chunk_type FROM library WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Version, &e.Content, &e.Language, &e.ChunkType)
	return e, err
}
