package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOllamaTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode generate request: %v", err)
		}
		if req.Stream {
			t.Error("streaming should be disabled")
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Model:           req.Model,
			Response:        "The frameworks agree on presence of required data.",
			Done:            true,
			PromptEvalCount: 50,
			EvalCount:       20,
		})
	})
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOllamaSummarize(t *testing.T) {
	server := newOllamaTestServer(t)
	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1:8b"})
	if err != nil {
		t.Fatal(err)
	}

	if !p.IsAvailable(context.Background()) {
		t.Fatal("provider should be available against the test server")
	}

	resp, err := p.Summarize(context.Background(), SummarizeRequest{
		Criterion: "Completeness",
		Definitions: []FrameworkDefinition{
			{Framework: "Zaveri et al.", Text: "All required information is present."},
		},
	})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if resp.Summary == "" {
		t.Error("empty summary")
	}
	if resp.Model != "llama3.1:8b" {
		t.Errorf("model = %q", resp.Model)
	}
	if resp.TokensUsed != 70 {
		t.Errorf("tokens used = %d, want 70", resp.TokensUsed)
	}
}

func TestOllamaEmbed(t *testing.T) {
	server := newOllamaTestServer(t)
	p, err := NewOllamaProvider(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := p.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 || len(vectors[0]) != 3 {
		t.Errorf("vectors = %v", vectors)
	}
}

func TestOllamaAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	t.Cleanup(server.Close)

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Summarize(context.Background(), SummarizeRequest{Criterion: "x"}); err == nil {
		t.Fatal("expected error from API failure")
	}
}

func TestOllamaUnavailableServer(t *testing.T) {
	p, err := NewOllamaProvider(Config{BaseURL: "http://127.0.0.1:1", Timeout: 1})
	if err != nil {
		t.Fatal(err)
	}
	if p.IsAvailable(context.Background()) {
		t.Error("unreachable server reported available")
	}
}
