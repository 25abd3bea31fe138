package overlay

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOverlayTransaction(t *testing.T) {
	tempRoot := t.TempDir()
	baseFile := filepath.Join(tempRoot, "config.toml")
	if err := os.WriteFile(baseFile, []byte("version = 1"), 0644); err != nil {
		t.Fatal(err)
	}

	ov, err := New(tempRoot, "tx_1", false)
	if err != nil {
		t.Fatal(err)
	}

	data, err := ov.ReadFile(baseFile)
	if err != nil || string(data) != "version = 1" {
		t.Fatalf("read through overlay: %q, %v", data, err)
	}

	if err := ov.WriteFile(baseFile, []byte("version = 2")); err != nil {
		t.Fatal(err)
	}

	data, err = ov.ReadFile(baseFile)
	if err != nil || string(data) != "version = 2" {
		t.Fatalf("read shadowed write: %q, %v", data, err)
	}

	baseData, err := os.ReadFile(baseFile)
	if err != nil || string(baseData) != "version = 1" {
		t.Fatalf("base should be untouched before commit: %q, %v", baseData, err)
	}

	if err := ov.Commit(); err != nil {
		t.Fatal(err)
	}

	baseData, err = os.ReadFile(baseFile)
	if err != nil || string(baseData) != "version = 2" {
		t.Fatalf("base should be updated after commit: %q, %v", baseData, err)
	}
}

func TestOverlayRollbackIsIdempotent(t *testing.T) {
	tempRoot := t.TempDir()
	ov, err := New(tempRoot, "tx_rollback", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := ov.Rollback(); err != nil {
		t.Fatal(err)
	}
	if err := ov.Rollback(); err != nil {
		t.Fatalf("second rollback should be a no-op, got %v", err)
	}
}

func TestReadFileMissingErrors(t *testing.T) {
	tempRoot := t.TempDir()
	ov, err := New(tempRoot, "tx_missing", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ov.ReadFile(filepath.Join(tempRoot, "nope.txt")); err == nil {
		t.Fatal("expected error reading nonexistent file")
	}
}

func TestWriteFileRejectsEscape(t *testing.T) {
	tempRoot := t.TempDir()
	ov, err := New(tempRoot, "tx_escape", false)
	if err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(filepath.Dir(tempRoot), "outside.txt")
	if err := ov.WriteFile(outside, []byte("x")); err == nil {
		t.Fatal("expected error writing outside base dir")
	}
}

func TestDeleteFileOnlyTouchesOverlay(t *testing.T) {
	tempRoot := t.TempDir()
	baseFile := filepath.Join(tempRoot, "keep.txt")
	if err := os.WriteFile(baseFile, []byte("base"), 0644); err != nil {
		t.Fatal(err)
	}

	ov, err := New(tempRoot, "tx_delete", false)
	if err != nil {
		t.Fatal(err)
	}

	// Deleting a base-only file is a no-op: no tombstone.
	if err := ov.DeleteFile(baseFile); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(baseFile); err != nil {
		t.Fatalf("base file should survive: %v", err)
	}

	if err := ov.WriteFile(baseFile, []byte("staged")); err != nil {
		t.Fatal(err)
	}
	if err := ov.DeleteFile(baseFile); err != nil {
		t.Fatal(err)
	}
	// The staged copy is gone, so reads fall through to base again.
	data, err := ov.ReadFile(baseFile)
	if err != nil || string(data) != "base" {
		t.Fatalf("read after delete: %q, %v", data, err)
	}
}
