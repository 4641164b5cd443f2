package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kgquality/fwcat/internal/cache"
	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/worker"
)

// Enhancer runs the semantic pass over a criterion comparison: embedding
// the definition texts to group similar frameworks, and summarizing the
// definitions with the selected provider. Results are cached and calls are
// paced, so repeated comparisons stay cheap.
type Enhancer struct {
	provider Provider
	embedder Provider
	cache    cache.Cache
	limiter  *worker.Limiter

	model     string
	maxTokens int
	threshold float64

	// Skipped records providers that lost the selection, keyed by name.
	Skipped map[string]string
}

// similarLimit caps how many related frameworks a similarity group lists.
const similarLimit = 3

// NewEnhancer selects providers per the configured priority and wires the
// cache and rate limiter. It returns nil when no provider is usable.
func NewEnhancer(ctx context.Context, cfg model.LLMConfig) *Enhancer {
	provider, skipped := Select(ctx, ConfigFromModel(cfg))
	if provider == nil {
		return nil
	}

	e := &Enhancer{
		provider:  provider,
		embedder:  provider,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		threshold: cfg.SimilarityThreshold,
		Skipped:   skipped,
	}
	if e.threshold == 0 {
		e.threshold = 0.7
	}

	// The selected provider may not embed (Anthropic); fall through the
	// priority order again for an embedding-capable one.
	if !provider.SupportsEmbeddings() {
		e.embedder = selectEmbedder(ctx, cfg, provider.Name())
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	e.limiter = worker.NewLimiter(rps, 1)

	if cfg.CacheDir != "" {
		e.cache = cache.NewLayeredCache(time.Hour, cfg.CacheDir, 30*24*time.Hour)
	} else {
		e.cache = cache.NewMemoryCache(time.Hour, 10*time.Minute)
	}
	return e
}

// selectEmbedder returns the first available embedding-capable provider
// other than skip, or nil.
func selectEmbedder(ctx context.Context, cfg model.LLMConfig, skip string) Provider {
	order := cfg.Providers
	if len(order) == 0 {
		order = DefaultProviderOrder
	}
	for _, name := range order {
		if name == "" || name == skip {
			continue
		}
		provider, err := NewProvider(name, ConfigFromModel(cfg))
		if err != nil || !provider.SupportsEmbeddings() || !provider.IsAvailable(ctx) {
			continue
		}
		return provider
	}
	return nil
}

// ProviderName returns the name of the summary provider.
func (e *Enhancer) ProviderName() string {
	return e.provider.Name()
}

// Enhance computes similarity groups and a summary for the criterion. Both
// halves are best-effort: an embedding failure drops the groups, a summary
// failure drops the summary, and only a fully empty result is an error.
func (e *Enhancer) Enhance(ctx context.Context, criterion string, defs []FrameworkDefinition) (*model.Enhancement, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no definitions to enhance")
	}

	enhancement := &model.Enhancement{Provider: e.provider.Name()}
	var groupsErr, summaryErr error

	enhancement.SimilarityGroups, groupsErr = e.similarityGroups(ctx, defs)

	req := SummarizeRequest{
		Criterion:   criterion,
		Definitions: defs,
		Model:       e.model,
		MaxTokens:   e.maxTokens,
	}
	if err := e.limiter.Wait(ctx, e.provider.Name()); err != nil {
		summaryErr = err
	} else if resp, err := e.provider.Summarize(ctx, req); err != nil {
		summaryErr = err
	} else {
		enhancement.Summary = resp.Summary
		enhancement.Model = resp.Model
	}

	if enhancement.Summary == "" && len(enhancement.SimilarityGroups) == 0 {
		return nil, errors.Join(summaryErr, groupsErr)
	}
	return enhancement, nil
}

// similarityGroups embeds every definition text and, for each framework,
// lists the frameworks whose definitions score at or above the threshold,
// closest first.
func (e *Enhancer) similarityGroups(ctx context.Context, defs []FrameworkDefinition) (map[string][]string, error) {
	if e.embedder == nil || len(defs) < 2 {
		return nil, nil
	}

	texts := make([]string, len(defs))
	for i, def := range defs {
		texts[i] = def.Text
	}
	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]string)
	for i, def := range defs {
		type scored struct {
			name string
			sim  float64
		}
		var related []scored
		for j, other := range defs {
			if i == j {
				continue
			}
			if sim := cosineSimilarity(vectors[i], vectors[j]); sim >= e.threshold {
				related = append(related, scored{name: other.Framework, sim: sim})
			}
		}
		if len(related) == 0 {
			continue
		}
		sort.Slice(related, func(a, b int) bool { return related[a].sim > related[b].sim })
		if len(related) > similarLimit {
			related = related[:similarLimit]
		}
		names := make([]string, len(related))
		for k, r := range related {
			names[k] = r.name
		}
		groups[def.Framework] = names
	}
	return groups, nil
}

// describeInstruction replaces the comparison prompt's closing instruction
// when synthesizing a criterion description.
const describeInstruction = "In 2-3 sentences, write a concise description of this criterion that synthesizes the definitions above. Write the description directly, without preamble."

// Describe synthesizes a criterion description from definition texts using
// the summary provider. Unlike Enhance it is all-or-nothing: callers keep
// the stored description on error.
func (e *Enhancer) Describe(ctx context.Context, criterion string, defs []FrameworkDefinition) (string, error) {
	if len(defs) == 0 {
		return "", fmt.Errorf("no definitions to describe")
	}

	req := SummarizeRequest{
		Criterion:   criterion,
		Definitions: defs,
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Instruction: describeInstruction,
	}
	if err := e.limiter.Wait(ctx, e.provider.Name()); err != nil {
		return "", err
	}
	resp, err := e.provider.Summarize(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Summary), nil
}

// embed returns a vector per text, serving cached vectors and fetching the
// rest in one paced batch.
func (e *Enhancer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missing []int

	for i, text := range texts {
		key := cache.Key(e.embedder.Name(), e.model, text)
		if data, ok := e.cache.Get(key); ok {
			var vec []float32
			if err := json.Unmarshal(data, &vec); err == nil && len(vec) > 0 {
				vectors[i] = vec
				continue
			}
		}
		missing = append(missing, i)
	}

	if len(missing) > 0 {
		batch := make([]string, len(missing))
		for k, i := range missing {
			batch[k] = texts[i]
		}
		if err := e.limiter.Wait(ctx, e.embedder.Name()); err != nil {
			return nil, err
		}
		fetched, err := e.embedder.Embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(fetched) != len(missing) {
			return nil, fmt.Errorf("got %d embeddings for %d texts", len(fetched), len(missing))
		}
		for k, i := range missing {
			vectors[i] = fetched[k]
			if data, err := json.Marshal(fetched[k]); err == nil {
				_ = e.cache.Set(cache.Key(e.embedder.Name(), e.model, texts[i]), data, 0)
			}
		}
	}
	return vectors, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors;
// zero for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
