package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kgquality/fwcat/internal/cleanup"
	"github.com/kgquality/fwcat/internal/store"
)

var cleanupDryRun bool

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Merge duplicate frameworks, criteria, and definitions",
	Long: `Cleanup scans the whole catalog for frameworks that match under the
same rules the importer uses and merges each duplicate set into its
most complete member. Criteria are reparented or merged along, and
near-duplicate definitions are collapsed.

Example:
  fwcat cleanup --dry-run
  fwcat cleanup`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "report what would change without writing")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = st.Close() }()

	report, err := cleanup.New(st).Run(context.Background(), cleanupDryRun)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if report.DryRun {
		fmt.Println("Dry run:")
	} else {
		fmt.Println("Cleanup complete:")
	}
	fmt.Printf("  Frameworks merged:   %d\n", report.FrameworksMerged)
	fmt.Printf("  Criteria merged:     %d\n", report.CriteriaMerged)
	fmt.Printf("  Definitions removed: %d\n", report.DefinitionsRemoved)
	for _, warning := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return nil
}
