package cmd

import (
	"fmt"
	"os"

	"github.com/corey/psdef/internal/adapters/bbolt"
	"github.com/corey/psdef/internal/app"
	"github.com/spf13/cobra"
)

var (
	findNested  bool
	findJSON    bool
	findNoColor bool
	findColor   string
)

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find cached definitions by name",
	Long: "Case-insensitive name search over cached scan results. A plain pattern matches as a\n" +
		"substring; * ? [] wildcards match against the whole name. Populate the cache first\n" +
		"with 'psdef init' or 'psdef scan'.",
	Args:          cobra.ExactArgs(1),
	RunE:          runFind,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := findCmd.Flags()
	f.BoolVar(&findNested, "nested", false, "Search nested definitions too")
	f.BoolVar(&findJSON, "json", false, "Emit records as JSON")
	f.StringVar(&findColor, "color", "auto", "Color output: auto, always, never")
	f.BoolVar(&findNoColor, "no-color", false, "Suppress color output")
}

func runFind(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	if !paths.Exists() {
		fmt.Fprintln(os.Stderr, "psdef: no cache to search (run: psdef init)")
		return scanExit{2}
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if isDBLockError(err) {
			fmt.Fprintf(os.Stderr, "psdef: %s\n", diagnoseDBLock(paths.DB))
		} else {
			fmt.Fprintf(os.Stderr, "psdef: open cache: %v\n", err)
		}
		return scanExit{2}
	}
	defer store.Close()

	records, err := app.FindDefinitions(store, args[0], findNested)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}

	if findJSON {
		return writeJSON(os.Stdout, records)
	}

	pal := newPalette(resolveColor(findColor, findNoColor))
	fmt.Print(formatFindResults(records, args[0], pal))
	return nil
}
