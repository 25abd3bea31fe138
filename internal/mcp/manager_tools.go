package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// CallTool looks up the server that owns name, forwards a tools/call request
// with a fresh id, and returns the result as raw JSON — or an error carrying
// the server's message.
func (r *Registry) CallTool(ctx context.Context, name string, arguments map[string]any) (json.RawMessage, error) {
	r.mu.RLock()
	serverName, ok := r.owner[name]
	var ss *serverState
	if ok {
		ss = r.servers[serverName]
	}
	r.mu.RUnlock()

	if !ok || ss == nil {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	req := mcpgo.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = arguments
	req.Header = map[string][]string{"x-request-id": {uuid.NewString()}}

	result, err := ss.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("tool %s (server %s): %w", name, serverName, err)
	}
	if result.IsError {
		detail, _ := json.Marshal(result.Content)
		return nil, fmt.Errorf("tool %s (server %s) returned an error result: %s", name, serverName, detail)
	}

	return json.Marshal(result.Content)
}
