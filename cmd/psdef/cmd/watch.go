package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/corey/psdef/internal/adapters/bbolt"
	"github.com/corey/psdef/internal/adapters/fsnotify"
	"github.com/corey/psdef/internal/app"
	"github.com/corey/psdef/internal/ports"
	"github.com/spf13/cobra"
)

var (
	watchNested  bool
	watchVerbose bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Rescan PowerShell files as they change",
	Long: "Watches a directory tree and rescans changed .ps1/.psm1 files, keeping the cache\n" +
		"current. Removed files drop out of the cache. Runs until interrupted.",
	Args:          cobra.MaximumNArgs(1),
	RunE:          runWatch,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNested, "nested", false, "Include nested definitions in rescan output")
	watchCmd.Flags().BoolVar(&watchVerbose, "verbose", false, "Log every filesystem event")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
			return scanExit{2}
		}
		root = abs
	}

	// Scan reports go to stdout; event diagnostics go to stderr so piped
	// output stays clean.
	level := slog.LevelInfo
	if watchVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	fe, err := newFrontEnd(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}

	var store ports.Storage
	if paths := app.NewPaths(root); paths.Exists() {
		s, err := bbolt.NewStore(paths.DB)
		if err != nil {
			logger.Warn("cache unavailable, watching without it", "error", err)
		} else {
			store = s
			defer s.Close()
		}
	}

	scanner := app.NewScanner(fe, store)
	opts := app.ScanOptions{IncludeNested: watchNested}
	pal := newPalette(isStdoutTTY())

	watcher, err := fsnotify.NewWatcher(app.IsSourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}
	defer watcher.Stop()

	onChange := func(path string, op ports.WatchOp) {
		logger.Debug("event", "path", path, "op", op.String())
		switch op {
		case ports.OpRemove:
			if err := scanner.EvictScan(path); err != nil {
				logger.Warn("evict failed", "path", path, "error", err)
				return
			}
			logger.Info("removed", "path", path)
		default:
			start := time.Now()
			report, err := scanner.ScanFile(path, opts)
			if err != nil {
				logger.Warn("rescan failed", "path", path, "error", err)
				return
			}
			logger.Debug("rescanned", "path", path, "definitions", len(report.Records))
			fmt.Print(formatScanReports([]*app.FileReport{report}, time.Since(start), pal, false))
		}
	}

	if err := watcher.Watch(root, onChange); err != nil {
		fmt.Fprintf(os.Stderr, "psdef: watch %s: %v\n", root, err)
		return scanExit{2}
	}

	fmt.Printf("%s⚡ watching %s%s (nested: %v, cache: %v)\n",
		pal.bold, root, pal.reset, watchNested, store != nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\n⚡ stopped")
	return nil
}
