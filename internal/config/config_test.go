package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AutonomousMode {
		t.Fatal("autonomous_mode should default to false")
	}
	if cfg.MaxAutonomousLoops != 50 {
		t.Fatalf("max_autonomous_loops = %d, want 50", cfg.MaxAutonomousLoops)
	}
	if cfg.Role != "executor" {
		t.Fatalf("role = %q, want executor", cfg.Role)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
project_name = "demo"
autonomous_mode = true
max_autonomous_loops = 3

[mcp_servers.search]
command = "search-server"
args = ["--stdio"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ProjectName != "demo" || !cfg.AutonomousMode || cfg.MaxAutonomousLoops != 3 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Role != "executor" {
		t.Fatalf("unset keys should keep defaults, role = %q", cfg.Role)
	}
	srv, ok := cfg.MCPServers["search"]
	if !ok || srv.Command != "search-server" || len(srv.Args) != 1 {
		t.Fatalf("mcp server not parsed: %+v", cfg.MCPServers)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.ProjectName = "roundtrip"

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ProjectName != "roundtrip" {
		t.Fatalf("project_name = %q", loaded.ProjectName)
	}
}
