package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgquality/fwcat/internal/store"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged frameworks",
	Long: `List shows every framework in the catalog, newest first.
Frameworks without a publication year sort last.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = st.Close() }()

	frameworks, err := st.ListFrameworks()
	if err != nil {
		return err
	}
	if len(frameworks) == 0 {
		fmt.Println("Catalog is empty. Run 'fwcat import <document>' first.")
		return nil
	}

	for _, fw := range frameworks {
		year := "    "
		if fw.Year != nil {
			year = fmt.Sprintf("%d", *fw.Year)
		}
		fmt.Printf("%s  %s", year, fw.Name)
		if fw.Title != "" {
			fmt.Printf("  %s", fw.Title)
		}
		fmt.Println()
	}

	_, criteria, definitions, err := st.Counts()
	if err != nil {
		return err
	}
	fmt.Printf("\n%d framework(s), %d criteria, %d definitions\n",
		len(frameworks), criteria, definitions)
	return nil
}
