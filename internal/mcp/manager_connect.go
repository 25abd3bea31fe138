package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/criticalinsight/sly/internal/config"
)

// connectServer spawns (or dials) one tool server, runs the initialization
// handshake, lists its tools, and registers them in the Registry.
func (r *Registry) connectServer(ctx context.Context, name string, cfg config.MCPServerConfig) error {
	client, err := createClient(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	if cfg.Transport != "" && cfg.Transport != "stdio" {
		if err := client.Start(ctx); err != nil {
			_ = client.Close()
			return fmt.Errorf("start transport: %w", err)
		}
	}

	hctx, hcancel := context.WithTimeout(ctx, handshakeTimeout)
	defer hcancel()

	initReq := mcpgo.InitializeRequest{}
	initReq.Params.ProtocolVersion = "2024-11-05"
	initReq.Params.ClientInfo = mcpgo.Implementation{
		Name:    "sly",
		Version: "1.0.0",
	}

	if _, err := client.Initialize(hctx, initReq); err != nil {
		_ = client.Close()
		return fmt.Errorf("initialize: %w", err)
	}

	toolsResult, err := client.ListTools(hctx, mcpgo.ListToolsRequest{})
	if err != nil {
		_ = client.Close()
		return fmt.Errorf("list tools: %w", err)
	}

	transportType := cfg.Transport
	if transportType == "" {
		transportType = "stdio"
	}

	ss := &serverState{
		name:      name,
		transport: transportType,
		client:    client,
		tools:     toolsResult.Tools,
	}
	ss.connected.Store(true)

	r.mu.Lock()
	for _, t := range toolsResult.Tools {
		if owner, exists := r.owner[t.Name]; exists {
			slog.Warn("mcp.tool.name_collision", "tool", t.Name, "owner", owner, "skipped_server", name)
			continue
		}
		r.owner[t.Name] = name
	}
	r.servers[name] = ss
	r.mu.Unlock()

	hctx2, hcancel2 := context.WithCancel(context.Background())
	ss.cancel = hcancel2
	go r.healthLoop(hctx2, ss)

	slog.Info("mcp.server.connected", "server", name, "transport", transportType, "tools", len(toolsResult.Tools))
	return nil
}

// createClient builds the mcp-go client for the configured transport kind.
func createClient(cfg config.MCPServerConfig) (*mcpclient.Client, error) {
	switch cfg.Transport {
	case "", "stdio":
		env := mapToEnvSlice(cfg.Env)
		return mcpclient.NewStdioMCPClient(cfg.Command, env, cfg.Args...)

	case "sse":
		var opts []transport.ClientOption
		if len(cfg.Headers) > 0 {
			opts = append(opts, mcpclient.WithHeaders(cfg.Headers))
		}
		return mcpclient.NewSSEMCPClient(cfg.URL, opts...)

	case "streamable-http":
		var opts []transport.StreamableHTTPCOption
		if len(cfg.Headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(cfg.Headers))
		}
		return mcpclient.NewStreamableHttpClient(cfg.URL, opts...)

	default:
		return nil, fmt.Errorf("unsupported transport: %q", cfg.Transport)
	}
}

// healthLoop pings the server at a fixed interval and drives reconnection
// on failure.
func (r *Registry) healthLoop(ctx context.Context, ss *serverState) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ss.client.Ping(ctx); err != nil {
				if strings.Contains(strings.ToLower(err.Error()), "method not found") {
					ss.connected.Store(true)
					ss.resetReconnect()
					continue
				}
				ss.connected.Store(false)
				ss.setErr(err.Error())
				slog.Warn("mcp.server.health_failed", "server", ss.name, "error", err)
				r.tryReconnect(ctx, ss)
			} else {
				ss.connected.Store(true)
				ss.resetReconnect()
			}
		}
	}
}

// tryReconnect retries the Ping with exponential backoff, capped at
// maxReconnectAttempts.
func (r *Registry) tryReconnect(ctx context.Context, ss *serverState) {
	ss.mu.Lock()
	if ss.reconnAttempts >= maxReconnectAttempts {
		ss.lastErr = fmt.Sprintf("max reconnect attempts (%d) reached", maxReconnectAttempts)
		ss.mu.Unlock()
		slog.Error("mcp.server.reconnect_exhausted", "server", ss.name)
		return
	}
	ss.reconnAttempts++
	attempt := ss.reconnAttempts
	ss.mu.Unlock()

	backoff := initialBackoff * time.Duration(1<<(attempt-1))
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	slog.Info("mcp.server.reconnecting", "server", ss.name, "attempt", attempt, "backoff", backoff)

	select {
	case <-ctx.Done():
		return
	case <-time.After(backoff):
	}

	if err := ss.client.Ping(ctx); err == nil {
		ss.connected.Store(true)
		ss.resetReconnect()
		slog.Info("mcp.server.reconnected", "server", ss.name)
	}
}

func (ss *serverState) resetReconnect() {
	ss.mu.Lock()
	ss.reconnAttempts = 0
	ss.lastErr = ""
	ss.mu.Unlock()
}

func (ss *serverState) setErr(msg string) {
	ss.mu.Lock()
	ss.lastErr = msg
	ss.mu.Unlock()
}
