package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/corey/psdef/internal/adapters/bbolt"
	"github.com/corey/psdef/internal/app"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .psdef and warm the scan cache",
	Long: "Creates the .psdef directory, opens the cache database, and scans every PowerShell\n" +
		"source file under the project root so later scans and finds hit the cache.",
	RunE:          runInit,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	if err := paths.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "psdef: create %s: %v\n", paths.Root, err)
		return scanExit{2}
	}

	fe, err := newFrontEnd(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if isDBLockError(err) {
			fmt.Fprintf(os.Stderr, "psdef: cannot init: %s\n", diagnoseDBLock(paths.DB))
		} else {
			fmt.Fprintf(os.Stderr, "psdef: open cache: %v\n", err)
		}
		return scanExit{2}
	}
	defer store.Close()

	files, err := app.CollectFiles(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}

	fmt.Println("⚡ Scanning project...")

	scanner := app.NewScanner(fe, store)
	start := time.Now()
	reports, err := scanner.ScanFiles(files, app.ScanOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}

	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
	}

	// The cache holds every depth, so its stats are the authoritative
	// count; the reports above only carry top-level records.
	stats, err := store.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: cache stats: %v\n", err)
		return scanExit{2}
	}

	fmt.Printf("⚡ psdef cached %d definitions across %d files (%s)\n",
		stats.Definitions, stats.Files, formatElapsed(time.Since(start)))

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "psdef: %d files could not be scanned\n", failed)
		return scanExit{1}
	}
	return nil
}
