// Package llm talks to language-model providers for the optional semantic
// comparison pass: embedding definition texts for similarity grouping and
// summarizing how frameworks define a criterion. Everything here is
// best-effort; callers degrade to plain comparisons when no provider is
// usable.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kgquality/fwcat/internal/model"
)

// ErrEmbeddingUnsupported is returned by providers that can summarize but
// not embed.
var ErrEmbeddingUnsupported = errors.New("provider does not support embeddings")

// Provider defines one LLM backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool

	// SupportsEmbeddings reports whether Embed can succeed at all.
	SupportsEmbeddings() bool

	// Embed returns one embedding vector per input text. Providers without
	// an embeddings endpoint return ErrEmbeddingUnsupported.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Summarize generates a short synthesis of how the frameworks define
	// the criterion in the request.
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

// FrameworkDefinition is one framework's definition text for the compared
// criterion.
type FrameworkDefinition struct {
	Framework string
	Year      *int
	Text      string
}

// SummarizeRequest contains the input for criterion summarization.
type SummarizeRequest struct {
	// Criterion is the quality criterion under comparison.
	Criterion string

	// Definitions are the per-framework definition texts to synthesize.
	Definitions []FrameworkDefinition

	// Model overrides the configured model when non-empty.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Instruction replaces the default compare-and-contrast closing
	// instruction when non-empty.
	Instruction string
}

// SummarizeResponse contains the LLM's summary output.
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Providers is the fallback priority order. Empty entries are skipped.
	Providers []string

	// Model is the generation model (provider-specific).
	Model string

	// APIKey authenticates against OpenAI and Anthropic.
	APIKey string

	// BaseURL overrides the provider endpoint (e.g. a remote Ollama).
	BaseURL string

	// Timeout bounds each API request, in seconds.
	Timeout int

	// MaxTokens bounds response generation.
	MaxTokens int
}

// ConfigFromModel converts the application-level LLM config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Providers: mc.Providers,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}

const summarySystemPrompt = "You are a knowledge graph quality expert comparing how published frameworks define quality criteria. Base every statement strictly on the definitions provided; never invent frameworks or citations."

// BuildPrompt constructs the default summarization prompt: the criterion,
// each framework's definition, and instructions to compare rather than judge.
func BuildPrompt(req SummarizeRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The quality criterion %q is defined by %d frameworks:\n", req.Criterion, len(req.Definitions))

	for _, def := range req.Definitions {
		label := def.Framework
		if def.Year != nil {
			label = fmt.Sprintf("%s (%d)", def.Framework, *def.Year)
		}
		fmt.Fprintf(&sb, "\n- %s: %s\n", label, def.Text)
	}

	instruction := req.Instruction
	if instruction == "" {
		instruction = "In 3-4 sentences, describe what these definitions agree on and where they diverge. Do not rank the frameworks or state which definition is correct."
	}
	sb.WriteString("\n" + instruction)
	return sb.String()
}
