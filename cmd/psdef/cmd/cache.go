package cmd

import (
	"fmt"
	"os"

	"github.com/corey/psdef/internal/adapters/bbolt"
	"github.com/corey/psdef/internal/app"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the scan cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cached file and definition counts",
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached scan",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	if !paths.Exists() {
		fmt.Println("⚡ no cache (run: psdef init)")
		return nil
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("cannot read cache: %s", diagnoseDBLock(paths.DB))
		}
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	var size int64
	if info, err := os.Stat(paths.DB); err == nil {
		size = info.Size()
	}

	fmt.Printf("%s⚡ psdef cache%s\n", colorBold, colorReset)
	fmt.Printf("  DB:           %s\n", paths.DB)
	fmt.Printf("  Files:        %d\n", stats.Files)
	fmt.Printf("  Definitions:  %d\n", stats.Definitions)
	fmt.Printf("  Size:         %s\n", formatBytes(size))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	if !paths.Exists() {
		fmt.Println("⚡ no cache to clear")
		return nil
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("cannot clear cache: %s", diagnoseDBLock(paths.DB))
		}
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}

	fmt.Printf("⚡ cache cleared (%d files dropped)\n", stats.Files)
	return nil
}
