// Package config loads the runtime's .sly/config.toml file.
package config

// Config is the root of .sly/config.toml.
type Config struct {
	ProjectName        string                     `toml:"project_name"`
	PrimaryModel       string                     `toml:"primary_model"`
	FallbackModel      string                     `toml:"fallback_model"`
	AutonomousMode     bool                       `toml:"autonomous_mode"`
	MaxAutonomousLoops int                        `toml:"max_autonomous_loops"`
	Role               string                     `toml:"role"` // "supervisor" | "executor"
	MCPServers         map[string]MCPServerConfig `toml:"mcp_servers"`

	// Subsystem tuning.
	Embedding EmbeddingConfig `toml:"embedding"`
	Memory    MemoryConfig    `toml:"memory"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Cron      CronConfig      `toml:"cron"`
}

// MCPServerConfig describes one tool server. Command/Args drive the stdio
// transport; URL/Headers serve the sse and streamable-http kinds.
type MCPServerConfig struct {
	Transport string            `toml:"transport"` // "stdio" (default), "sse", "streamable-http"
	Command   string            `toml:"command"`
	Args      []string          `toml:"args"`
	Env       map[string]string `toml:"env,omitempty"`
	URL       string            `toml:"url,omitempty"`
	Headers   map[string]string `toml:"headers,omitempty"`
}

// EmbeddingConfig configures the embedding engine adapter. embed.New reads
// neither field: it always probes for a GPU and falls back to CPU.
type EmbeddingConfig struct {
	Model     string `toml:"model"`      // informational; output dimension is fixed at 384
	PreferGPU bool   `toml:"prefer_gpu"` // attempt GPU device before falling back to CPU
}

// MemoryConfig configures the graph-and-vector memory store. Only StoreDir
// is read by the runtime: memory.Open retries the store lock a fixed 10
// times, and vectorindex does not read the HNSW values.
type MemoryConfig struct {
	StoreDir       string `toml:"store_dir"`        // relative to .sly/, default "cozo"
	VectorIndexM   int    `toml:"vector_index_m"`   // HNSW m parameter, default 50
	VectorIndexEfC int    `toml:"vector_index_efc"` // HNSW ef_construction, default 200
	VectorSearchEf int    `toml:"vector_search_ef"` // HNSW search-time ef, default 100
	LockRetries    int    `toml:"lock_retries"`     // retry attempts on a locked store, default 10
}

// TelemetryConfig configures OpenTelemetry span export around directive
// dispatch and session steps.
type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	ServiceName string `toml:"service_name"`
}

// CronConfig configures the optional task-trigger impulse producer
// (adhocore/gronx), feeding JanitorWakeup-style maintenance impulses.
type CronConfig struct {
	MaintenanceSchedule string `toml:"maintenance_schedule"` // cron expression, empty disables
}
