package llm

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	year := 2016
	req := SummarizeRequest{
		Criterion: "Completeness",
		Definitions: []FrameworkDefinition{
			{Framework: "Zaveri et al.", Year: &year, Text: "All required information is present."},
			{Framework: "Chen", Text: "Coverage of the domain of interest."},
		},
	}

	prompt := BuildPrompt(req)
	for _, want := range []string{
		`"Completeness"`,
		"2 frameworks",
		"Zaveri et al. (2016): All required information is present.",
		"Chen: Coverage of the domain of interest.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider("mystery", Config{}); err == nil {
		t.Fatal("expected error for unknown provider name")
	}
}

func TestNewProviderRequiresAPIKeys(t *testing.T) {
	if _, err := NewProvider("openai", Config{}); err == nil {
		t.Error("openai without API key should fail")
	}
	if _, err := NewProvider("anthropic", Config{}); err == nil {
		t.Error("anthropic without API key should fail")
	}
	if _, err := NewProvider("ollama", Config{}); err != nil {
		t.Errorf("ollama needs no API key, got %v", err)
	}
}

func TestNewProviderClaudeAlias(t *testing.T) {
	p, err := NewProvider("claude", Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("name = %q, want anthropic", p.Name())
	}
	if p.SupportsEmbeddings() {
		t.Error("anthropic should not report embedding support")
	}
}
