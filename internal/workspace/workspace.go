// Package workspace manages the .sly/ directory tree: creation on init,
// outbox event files for the supervisor, and the supervisor's exclusive
// lock file.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/criticalinsight/sly/internal/config"
	"github.com/criticalinsight/sly/pkg/protocol"
)

// Dir is the runtime's state directory, relative to the workspace root.
const Dir = ".sly"

// Init creates the .sly/ tree with a default config and adds the ignore
// entry to .gitignore. Idempotent: an existing .sly/ is left untouched.
func Init(root string) (created bool, err error) {
	slyPath := filepath.Join(root, Dir)
	if _, err := os.Stat(slyPath); err == nil {
		return false, nil
	}

	for _, sub := range []string{"cozo", "shadow", "outbox", "snapshots", "swarm"} {
		if err := os.MkdirAll(filepath.Join(slyPath, sub), 0755); err != nil {
			return false, fmt.Errorf("create %s: %w", sub, err)
		}
	}

	cfg := config.Default()
	cfg.ProjectName = filepath.Base(root)
	if err := config.Save(filepath.Join(slyPath, "config.toml"), cfg); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}

	if err := appendIgnoreEntry(root); err != nil {
		return false, err
	}
	return true, nil
}

func appendIgnoreEntry(root string) error {
	gitignore := filepath.Join(root, ".gitignore")
	existing, err := os.ReadFile(gitignore)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if strings.Contains(string(existing), Dir) {
		return nil
	}
	content := string(existing) + "\n# Sly Agent Data\n" + Dir + "/\n"
	return os.WriteFile(gitignore, []byte(content), 0644)
}

// WriteOutbox queues one event for the supervisor as a uniquely-named JSON
// file under .sly/outbox/.
func WriteOutbox(root, op string, data any) (string, error) {
	record := protocol.OutboxRecord{Op: op, Data: data, Ts: time.Now().UnixMilli()}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal outbox record: %w", err)
	}

	outbox := filepath.Join(root, Dir, "outbox")
	if err := os.MkdirAll(outbox, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(outbox, fmt.Sprintf("%d_%s.json", record.Ts, uuid.NewString()))
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("write outbox file: %w", err)
	}
	return path, nil
}

// ReadOutbox drains every queued outbox record, deleting each file after a
// successful parse. Unparseable files are deleted too — the outbox is a
// queue, not an archive.
func ReadOutbox(root string) ([]protocol.OutboxRecord, error) {
	outbox := filepath.Join(root, Dir, "outbox")
	entries, err := os.ReadDir(outbox)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []protocol.OutboxRecord
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(outbox, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var record protocol.OutboxRecord
		if err := json.Unmarshal(content, &record); err == nil {
			records = append(records, record)
		}
		_ = os.Remove(path)
	}
	return records, nil
}

// AcquireSupervisorLock takes the exclusive supervisor lock. A second
// supervisor on the same workspace fails immediately.
func AcquireSupervisorLock(root string) (release func(), err error) {
	path := filepath.Join(root, Dir, "supervisor.lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("another supervisor holds %s", path)
		}
		return nil, err
	}
	f.Close()
	return func() { _ = os.Remove(path) }, nil
}
