// Package cortex implements the LLM facade named in the shared state: a
// single Generate entry point over the configured primary/fallback models,
// adapted from the provider clients in internal/providers. Remote LLM HTTP
// clients live in internal/providers; this package supplies only the thin
// facade the runtime's handlers call through.
package cortex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/criticalinsight/sly/internal/providers"
)

// ThinkingLevel is the reasoning-effort hint passed through to providers.
type ThinkingLevel string

const (
	ThinkingLow    ThinkingLevel = "low"
	ThinkingMedium ThinkingLevel = "medium"
	ThinkingHigh   ThinkingLevel = "high"
)

// Facade is the shared-state's single LLM entry point: one Generate call,
// primary model first, fallback model on failure.
type Facade struct {
	provider      providers.Provider
	primaryModel  string
	fallbackModel string
}

// New builds a Facade over provider, using primaryModel by default and
// retrying once against fallbackModel (if non-empty) on failure.
func New(provider providers.Provider, primaryModel, fallbackModel string) *Facade {
	return &Facade{provider: provider, primaryModel: primaryModel, fallbackModel: fallbackModel}
}

// Generate sends prompt as a single user message and returns the model's
// text response. A failure is returned for the caller to log without
// advancing the session's depth — callers must not retry locally.
func (f *Facade) Generate(ctx context.Context, prompt string, level ThinkingLevel) (string, error) {
	req := providers.ChatRequest{
		Messages: []providers.Message{{Role: "user", Content: prompt}},
		Model:    f.primaryModel,
		Options:  map[string]interface{}{"thinking_level": string(level)},
	}

	resp, err := f.provider.Chat(ctx, req)
	if err == nil {
		return resp.Content, nil
	}

	if f.fallbackModel == "" {
		return "", fmt.Errorf("cortex generate: %w", err)
	}

	slog.Warn("cortex.primary_failed", "model", f.primaryModel, "error", err)
	req.Model = f.fallbackModel
	resp, err = f.provider.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("cortex generate (fallback %s): %w", f.fallbackModel, err)
	}
	return resp.Content, nil
}
