package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCreatesTreeOnce(t *testing.T) {
	root := t.TempDir()

	created, err := Init(root)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first Init should create the tree")
	}

	for _, sub := range []string{"cozo", "shadow", "outbox", "snapshots", "swarm"} {
		if _, err := os.Stat(filepath.Join(root, Dir, sub)); err != nil {
			t.Fatalf("missing %s: %v", sub, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, Dir, "config.toml")); err != nil {
		t.Fatalf("missing config.toml: %v", err)
	}

	gitignore, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil || !strings.Contains(string(gitignore), ".sly/") {
		t.Fatalf("ignore entry not written: %q, %v", gitignore, err)
	}

	created, err = Init(root)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second Init should be a no-op")
	}
}

func TestOutboxRoundTrip(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatal(err)
	}

	if _, err := WriteOutbox(root, "PING", map[string]any{"source": "test"}); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteOutbox(root, "DIRECTIVE", map[string]any{"type": "think"}); err != nil {
		t.Fatal(err)
	}

	records, err := ReadOutbox(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// Drained: a second read finds nothing.
	records, err = ReadOutbox(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("outbox not drained, %d records remain", len(records))
	}
}

func TestSupervisorLockIsExclusive(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatal(err)
	}

	release, err := AcquireSupervisorLock(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AcquireSupervisorLock(root); err == nil {
		t.Fatal("second acquire should fail while lock is held")
	}

	release()
	release2, err := AcquireSupervisorLock(root)
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	release2()
}
