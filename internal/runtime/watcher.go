package runtime

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/criticalinsight/sly/internal/bus"
)

// Directories the watcher never descends into.
var ignoredDirs = map[string]bool{
	".sly":         true,
	".git":         true,
	"node_modules": true,
	"target":       true,
	"vendor":       true,
}

const flushInterval = 500 * time.Millisecond

// startWatcher begins recursive filesystem watching over the workspace,
// batching changed paths into FileSystemEvent impulses on the background
// lane. Batching is rate-limited so a burst of saves produces one impulse,
// and Submit is only called from the collector goroutine — the watcher
// itself never blocks holding a filesystem handle.
func (r *Runtime) startWatcher(ctx context.Context) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredDirs[d.Name()] && path != r.root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	go r.collectEvents(ctx, watcher)
	return watcher, nil
}

func (r *Runtime) collectEvents(ctx context.Context, watcher *fsnotify.Watcher) {
	pending := make(map[string]struct{})
	limiter := rate.NewLimiter(rate.Every(2*time.Second), 1)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if isIgnoredPath(r.root, event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories need their own watch to stay recursive.
				_ = watcher.Add(event.Name)
			}
			pending[event.Name] = struct{}{}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			_ = r.Submit(ctx, bus.Impulse{Kind: bus.ImpulseError, Message: "watch error: " + err.Error()})

		case <-ticker.C:
			if len(pending) == 0 || !limiter.Allow() {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})

			if err := r.Submit(ctx, bus.Impulse{Kind: bus.ImpulseFileSystemEvent, Paths: paths}); err != nil {
				slog.Warn("watcher.submit_failed", "error", err)
			}
		}
	}
}

func isIgnoredPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	for _, comp := range strings.Split(filepath.ToSlash(rel), "/") {
		if ignoredDirs[comp] {
			return true
		}
	}
	return false
}
