// Package mcp implements the tool registry over a JSON-RPC subprocess
// transport: one child-process tool server per configured entry, multiplexed
// through mark3labs/mcp-go clients and exposed as a single CallTool surface
// keyed by tool name.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/criticalinsight/sly/internal/config"
)

const (
	healthCheckInterval  = 30 * time.Second
	initialBackoff       = 2 * time.Second
	maxBackoff           = 60 * time.Second
	maxReconnectAttempts = 10
	handshakeTimeout     = 5 * time.Second
)

// ServerStatus reports the connection status of one configured tool server.
type ServerStatus struct {
	Name      string `json:"name"`
	Transport string `json:"transport"`
	Connected bool   `json:"connected"`
	ToolCount int    `json:"tool_count"`
	Error     string `json:"error,omitempty"`
}

// serverState tracks a single tool server connection and its advertised tools.
type serverState struct {
	name       string
	transport  string
	client     *mcpclient.Client
	connected  atomic.Bool
	tools      []mcpgo.Tool
	timeoutSec int
	cancel     context.CancelFunc

	mu             sync.Mutex
	reconnAttempts int
	lastErr        string
}

// Registry is the Tool Registry named in the runtime: a read-after-boot
// mapping from tool name to the server that owns it, built by connecting to
// every configured server at startup.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*serverState
	owner   map[string]string // tool name -> server name

	configs map[string]config.MCPServerConfig
}

// NewRegistry creates a Registry for the given named server configs.
func NewRegistry(configs map[string]config.MCPServerConfig) *Registry {
	return &Registry{
		servers: make(map[string]*serverState),
		owner:   make(map[string]string),
		configs: configs,
	}
}

// Start connects to every configured server. A failing server is logged
// and skipped; Start only fails when every configured server is down.
func (r *Registry) Start(ctx context.Context) error {
	var errs []string
	for name, cfg := range r.configs {
		if err := r.connectServer(ctx, name, cfg); err != nil {
			slog.Warn("mcp.server.connect_failed", "server", name, "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(errs) > 0 && len(errs) == len(r.configs) {
		return fmt.Errorf("all MCP servers failed to connect: %s", joinErrors(errs))
	}
	return nil
}

// Stop closes every connection and clears the registry.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, ss := range r.servers {
		if ss.cancel != nil {
			ss.cancel()
		}
		if ss.client != nil {
			if err := ss.client.Close(); err != nil {
				slog.Debug("mcp.server.close_error", "server", name, "error", err)
			}
		}
	}
	r.servers = make(map[string]*serverState)
	r.owner = make(map[string]string)
}

// ToolNames returns every tool name currently registered, across all servers.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.owner))
	for name := range r.owner {
		names = append(names, name)
	}
	return names
}

// ToolDefinitions renders a human-readable tool catalog for injection into
// the first session step's context.
func (r *Registry) ToolDefinitions() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.servers) == 0 {
		return ""
	}
	out := "## AVAILABLE TOOLS\n"
	for _, ss := range r.servers {
		for _, t := range ss.tools {
			out += fmt.Sprintf("- %s (%s): %s\n", t.Name, ss.name, t.Description)
		}
	}
	return out
}

// ServerStatus returns the status of every server that connected at startup.
// A configured server whose initial connection failed is not listed.
func (r *Registry) ServerStatus() []ServerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]ServerStatus, 0, len(r.servers))
	for _, ss := range r.servers {
		statuses = append(statuses, ServerStatus{
			Name:      ss.name,
			Transport: ss.transport,
			Connected: ss.connected.Load(),
			ToolCount: len(ss.tools),
			Error:     ss.lastErr,
		})
	}
	return statuses
}
