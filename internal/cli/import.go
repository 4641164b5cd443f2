package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kgquality/fwcat/internal/importer"
	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/parse"
	"github.com/kgquality/fwcat/internal/store"
)

var (
	importDryRun  bool
	importWorkers int
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <document>...",
	Short: "Import frameworks from DOCX or PDF documents",
	Long: `Import parses survey documents, extracts framework and criterion
candidates, and reconciles them with the catalog. Frameworks already
stored under an equivalent name are enriched, not duplicated.

Multiple documents are parsed in parallel and imported in argument
order.

Example:
  fwcat import survey.docx
  fwcat import paper.pdf --dry-run
  fwcat import *.docx --workers 8 --db research.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "report what would change without writing")
	importCmd.Flags().IntVar(&importWorkers, "workers", 4, "documents to parse in parallel")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = st.Close() }()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Importing %d document(s)\n", len(args))
		fmt.Fprintf(os.Stderr, "Catalog: %s\n", cfg.Store.Path)
		if importDryRun {
			fmt.Fprintln(os.Stderr, "Mode: dry run (nothing will be written)")
		}
		fmt.Fprintln(os.Stderr)
	}

	imp := importer.New(st, parse.New(cfg.Parse))
	reports, err := imp.ImportDocuments(context.Background(), args, importWorkers, importDryRun)
	for _, report := range reports {
		printImportReport(report)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

func printImportReport(report *model.ImportReport) {
	if report.DryRun {
		fmt.Printf("Dry run for %s (%s):\n", report.Document, report.Format)
	} else {
		fmt.Printf("Imported %s (%s):\n", report.Document, report.Format)
	}
	fmt.Printf("  Frameworks:  %d created, %d updated\n", report.FrameworksCreated, report.FrameworksUpdated)
	fmt.Printf("  Criteria:    %d created, %d updated\n", report.CriteriaCreated, report.CriteriaUpdated)
	fmt.Printf("  Definitions: %d created\n", report.DefinitionsCreated)

	if report.SectionsSkipped > 0 {
		fmt.Printf("  Sections skipped: %d\n", report.SectionsSkipped)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
}
