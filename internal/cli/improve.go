package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kgquality/fwcat/internal/improve"
	"github.com/kgquality/fwcat/internal/llm"
	"github.com/kgquality/fwcat/internal/store"
)

var (
	improveDryRun      bool
	improveLLMProvider string
	improveLLMModel    string
)

// improveCmd represents the improve command
var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Rewrite sparse criterion descriptions with the LLM",
	Long: `Improve finds criteria whose description is empty or very short but
which carry stored definitions, and asks the configured LLM provider
to synthesize a proper description from those definitions. Curated
descriptions above the sparseness threshold are never touched.

Providers are tried free-first (ollama, then openai, then anthropic).
With --dry-run the candidates are counted without calling a provider.

Example:
  fwcat improve --dry-run
  fwcat improve
  fwcat improve --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.NoArgs,
	RunE: runImprove,
}

func init() {
	rootCmd.AddCommand(improveCmd)

	improveCmd.Flags().BoolVar(&improveDryRun, "dry-run", false, "count candidates without calling a provider or writing")
	improveCmd.Flags().StringVar(&improveLLMProvider, "llm-provider", "", "force a single provider (ollama, openai, anthropic)")
	improveCmd.Flags().StringVar(&improveLLMModel, "llm-model", "", "LLM model name (provider-specific)")
}

func runImprove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()

	var describer improve.Describer
	if !improveDryRun {
		applyLLMFlags(&cfg.LLM, improveLLMProvider, improveLLMModel)
		enhancer := llm.NewEnhancer(ctx, cfg.LLM)
		if enhancer == nil {
			return fmt.Errorf("no LLM provider available")
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Using LLM provider: %s\n", enhancer.ProviderName())
		}
		describer = enhancer
	}

	report, err := improve.New(st, describer).Run(ctx, improveDryRun)
	if err != nil {
		return fmt.Errorf("improve failed: %w", err)
	}

	if report.DryRun {
		fmt.Printf("Dry run: %d criteria with sparse descriptions\n", report.CriteriaSparse)
	} else {
		fmt.Printf("Improved %d of %d sparse criterion descriptions\n", report.CriteriaImproved, report.CriteriaSparse)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return nil
}
