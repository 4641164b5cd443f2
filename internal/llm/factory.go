package llm

import (
	"context"
	"fmt"
	"strings"
)

// DefaultProviderOrder is the fallback priority when the user enables the
// LLM path without naming providers: the free local option first, hosted
// APIs after.
var DefaultProviderOrder = []string{"ollama", "openai", "anthropic"}

// NewProvider creates one provider by name.
func NewProvider(name string, config Config) (Provider, error) {
	switch strings.ToLower(name) {
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: ollama, openai, anthropic)", name)
	}
}

// Select walks the configured priority order and returns the first provider
// that constructs and answers its availability probe. A nil return means no
// provider is usable; callers degrade to non-enhanced output. Misconfigured
// or unreachable providers are recorded in skipped, keyed by name.
func Select(ctx context.Context, config Config) (Provider, map[string]string) {
	order := config.Providers
	if len(order) == 0 {
		order = DefaultProviderOrder
	}

	skipped := make(map[string]string)
	for _, name := range order {
		if name == "" {
			continue
		}
		provider, err := NewProvider(name, config)
		if err != nil {
			skipped[name] = err.Error()
			continue
		}
		if !provider.IsAvailable(ctx) {
			skipped[provider.Name()] = "not available"
			continue
		}
		return provider, skipped
	}
	return nil, skipped
}
