// Package ingest implements the four-stage ingestion pipeline driven by the
// ingest_file and fs_batch directives: parallel scan, sync filter, parallel
// extract, batch commit.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/criticalinsight/sly/internal/memory"
)

// supportedExtensions gates which files the pipeline will ever touch.
var supportedExtensions = map[string]bool{
	".rs": true, ".js": true, ".ts": true, ".py": true, ".md": true, ".txt": true,
}

// FileValue is one scanned file ready for sync-filtering and extraction.
type FileValue struct {
	Path      string
	Content   string
	Hash      string
	Extension string
}

// Run executes all four stages for the given paths inside one directive
// handler invocation. A failure on a single file is logged and that file
// is skipped; it never aborts the batch.
func Run(ctx context.Context, store *memory.Store, paths []string) error {
	files := scan(ctx, paths)
	files = filterSynced(ctx, store, files)
	nodes := extract(ctx, files)

	if err := store.BatchAddNodes(ctx, nodes); err != nil {
		return fmt.Errorf("ingest batch commit: %w", err)
	}
	for _, f := range files {
		if err := store.UpdateSyncStatus(ctx, f.Path, f.Hash); err != nil {
			slog.Warn("ingest.sync_status_failed", "path", f.Path, "error", err)
		}
	}
	return nil
}

// scan reads every path in parallel, skipping non-files and unsupported
// extensions, and computes each file's SHA-256 content hash.
func scan(ctx context.Context, paths []string) []FileValue {
	results := make([]*FileValue, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			fv, ok := scanOne(p)
			if ok {
				results[i] = fv
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]FileValue, 0, len(paths))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func scanOne(path string) (*FileValue, bool) {
	ext := filepath.Ext(path)
	if !supportedExtensions[ext] {
		return nil, false
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("ingest.scan_failed", "path", path, "error", err)
		return nil, false
	}

	sum := sha256.Sum256(content)
	return &FileValue{
		Path:      path,
		Content:   string(content),
		Hash:      hex.EncodeToString(sum[:]),
		Extension: ext,
	}, true
}

// filterSynced drops files whose stored sync hash already equals their
// current content hash.
func filterSynced(ctx context.Context, store *memory.Store, files []FileValue) []FileValue {
	out := make([]FileValue, 0, len(files))
	for _, f := range files {
		hash, ok, err := store.CheckSyncStatus(ctx, f.Path)
		if err != nil {
			slog.Warn("ingest.sync_check_failed", "path", f.Path, "error", err)
		}
		if ok && hash == f.Hash {
			continue
		}
		out = append(out, f)
	}
	return out
}

// extract produces GraphNodes for every file in parallel through
// extractOne's regex-based definition scan; no structural parser is used.
func extract(ctx context.Context, files []FileValue) []memory.GraphNode {
	results := make([][]memory.GraphNode, len(files))

	g, _ := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = extractOne(f)
			return nil
		})
	}
	_ = g.Wait()

	var out []memory.GraphNode
	for _, nodes := range results {
		out = append(out, nodes...)
	}
	return out
}
