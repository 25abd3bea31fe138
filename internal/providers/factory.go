package providers

import (
	"fmt"
	"os"
	"strings"
)

// ForModel selects a provider for a model name: "claude-*" models route to
// Anthropic, everything else to the OpenAI-compatible endpoint. API keys
// come from the environment — a missing key for the selected provider is a
// fatal startup error, not a per-request one.
func ForModel(model string) (Provider, error) {
	if strings.HasPrefix(model, "claude") {
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set for model %q", model)
		}
		return NewAnthropicProvider(key, model), nil
	}

	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set for model %q", model)
	}
	return NewOpenAIProvider("openai", key, os.Getenv("OPENAI_API_BASE"), model), nil
}
