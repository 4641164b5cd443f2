package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kgquality/fwcat/internal/compare"
	"github.com/kgquality/fwcat/internal/llm"
	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/store"
)

var (
	compareLLM         bool
	compareLLMProvider string
	compareLLMModel    string
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <criterion>",
	Short: "Compare how frameworks define a quality criterion",
	Long: `Compare lists every stored framework's definition of the named
criterion, newest first. Lookup is normalized: "completeness" finds
"Completeness".

With --llm, an optional semantic pass groups frameworks whose
definitions are most similar and adds a short synthesis. Providers are
tried free-first (ollama, then openai, then anthropic); when none is
usable the plain comparison is shown unchanged.

Example:
  fwcat compare Completeness
  fwcat compare accuracy --llm
  fwcat compare Timeliness --llm --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().BoolVar(&compareLLM, "llm", false, "enable the LLM enhancement pass")
	compareCmd.Flags().StringVar(&compareLLMProvider, "llm-provider", "", "force a single provider (ollama, openai, anthropic)")
	compareCmd.Flags().StringVar(&compareLLMModel, "llm-model", "", "LLM model name (provider-specific)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	criterion := args[0]

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

	var enhancer *llm.Enhancer
	if compareLLM {
		applyLLMFlags(&cfg.LLM, compareLLMProvider, compareLLMModel)
		enhancer = llm.NewEnhancer(ctx, cfg.LLM)
		if enhancer == nil {
			fmt.Fprintln(os.Stderr, "warning: no LLM provider available, showing plain comparison")
		} else if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Using LLM provider: %s\n", enhancer.ProviderName())
			for name, reason := range enhancer.Skipped {
				fmt.Fprintf(os.Stderr, "Skipped provider %s: %s\n", name, reason)
			}
		}
	}

	comparison, err := compare.New(st, enhancer).Criterion(ctx, criterion)
	if err != nil {
		return err
	}

	printComparison(comparison)
	return nil
}

// applyLLMFlags folds provider/model flag overrides and API-key environment
// variables into the LLM configuration.
func applyLLMFlags(cfg *model.LLMConfig, provider, modelName string) {
	if provider != "" {
		cfg.Providers = []string{provider}
	} else if len(cfg.Providers) == 0 {
		cfg.Providers = llm.DefaultProviderOrder
	}
	if modelName != "" {
		cfg.Model = modelName
	}

	if cfg.APIKey == "" {
		for _, env := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
			if key := os.Getenv(env); key != "" {
				cfg.APIKey = key
				break
			}
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
}

func printComparison(comparison *model.Comparison) {
	fmt.Printf("Criterion: %s (%d frameworks)\n", comparison.Criterion, len(comparison.Rows))

	for _, row := range comparison.Rows {
		fmt.Println()
		if row.Year != nil {
			fmt.Printf("%s (%d)\n", row.Framework, *row.Year)
		} else {
			fmt.Printf("%s\n", row.Framework)
		}
		if row.Category != "" {
			fmt.Printf("  Category: %s\n", row.Category)
		}
		if row.Description != "" {
			fmt.Printf("  %s\n", row.Description)
		}
		for _, def := range row.Definitions {
			fmt.Printf("  - %s\n", def)
		}
	}

	if enh := comparison.Enhancement; enh != nil {
		fmt.Println()
		fmt.Printf("Semantic analysis (%s", enh.Provider)
		if enh.Model != "" {
			fmt.Printf(", %s", enh.Model)
		}
		fmt.Println("):")

		frameworks := make([]string, 0, len(enh.SimilarityGroups))
		for framework := range enh.SimilarityGroups {
			frameworks = append(frameworks, framework)
		}
		sort.Strings(frameworks)
		for _, framework := range frameworks {
			fmt.Printf("  %s defines it most like: %s\n", framework, strings.Join(enh.SimilarityGroups[framework], ", "))
		}
		if enh.Summary != "" {
			fmt.Printf("\n  %s\n", enh.Summary)
		}
	}
}
