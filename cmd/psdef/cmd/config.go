package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/corey/psdef/internal/adapters/bbolt"
	"github.com/corey/psdef/internal/app"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project root, cache paths and state, and where the grammar comes from.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	fmt.Printf("%s⚡ psdef config%s\n", colorBold, colorReset)
	fmt.Printf("  Project:    %s\n", filepath.Base(root))
	fmt.Printf("  Root:       %s\n", root)
	fmt.Printf("  DB:         %s\n", paths.DB)
	fmt.Printf("  Grammars:   %s\n", paths.GrammarsDir)
	fmt.Printf("  Cache:      %s\n", cacheState(paths))
	fmt.Printf("  Front-end:  %s\n", frontEndState(root))
	return nil
}

// cacheState describes the cache without mutating it: missing, locked by
// another process, or its entry counts.
func cacheState(paths *app.Paths) string {
	if !paths.Exists() {
		return fmt.Sprintf("%s✗ not initialized%s (run: psdef init)", colorYellow, colorReset)
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Sprintf("%s⚠ locked%s (a psdef watch may be running)", colorYellow, colorReset)
		}
		return fmt.Sprintf("%s✗ unreadable%s (%v)", colorYellow, colorReset, err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return fmt.Sprintf("%s✗ unreadable%s (%v)", colorYellow, colorReset, err)
	}
	return fmt.Sprintf("%s✓ %d files, %d definitions%s", colorGreen, stats.Files, stats.Definitions, colorReset)
}

// frontEndState describes where this binary's PowerShell grammar comes
// from: compiled in, loaded from a shared library, or nowhere.
func frontEndState(root string) string {
	fe, err := newFrontEnd(root)
	if err != nil {
		return fmt.Sprintf("%s✗ unavailable%s (%v)", colorYellow, colorReset, err)
	}
	return fmt.Sprintf("%s✓ grammar: %s%s", colorGreen, fe.Grammar(), colorReset)
}
