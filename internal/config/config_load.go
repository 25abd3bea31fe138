package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default returns the configuration baseline applied before config.toml is
// read: autonomous mode off, executor role, 50-loop budget.
func Default() *Config {
	return &Config{
		PrimaryModel:       "claude-sonnet-4",
		AutonomousMode:     false,
		MaxAutonomousLoops: 50,
		Role:               "executor",
		MCPServers:         map[string]MCPServerConfig{},
		Embedding: EmbeddingConfig{
			Model:     "local-minilm",
			PreferGPU: true,
		},
		Memory: MemoryConfig{
			StoreDir:       "cozo",
			VectorIndexM:   50,
			VectorIndexEfC: 200,
			VectorSearchEf: 100,
			LockRetries:    10,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "sly",
		},
	}
}

// Load reads .sly/config.toml at path, applying Default() first and letting
// BurntSushi/toml overlay whatever keys are present.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg back to path as TOML, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// WorkspaceConfigPath joins a workspace root with the runtime's conventional
// config location, .sly/config.toml.
func WorkspaceConfigPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".sly", "config.toml")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
