package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/corey/psdef/internal/adapters/bbolt"
	"github.com/corey/psdef/internal/app"
	"github.com/corey/psdef/internal/ports"
	"github.com/spf13/cobra"
)

var (
	scanNested   bool
	scanJSON     bool
	scanFailFast bool
	scanNoCache  bool
	scanQuiet    bool
	scanNoColor  bool
	scanColor    string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path ...]",
	Short: "Extract function definitions from PowerShell files",
	Long: "Parses .ps1/.psm1 files and reports every function, filter, and workflow definition.\n" +
		"Directories are walked recursively; with no arguments and piped stdin, paths are read one per line.",
	Args:          cobra.ArbitraryArgs,
	RunE:          runScan,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := scanCmd.Flags()
	f.BoolVar(&scanNested, "nested", false, "Include definitions nested inside other definitions")
	f.BoolVar(&scanJSON, "json", false, "Emit file reports as JSON")
	f.BoolVar(&scanFailFast, "fail-fast", false, "Stop at the first file that cannot be scanned")
	f.BoolVar(&scanNoCache, "no-cache", false, "Bypass the scan cache")
	f.BoolVarP(&scanQuiet, "quiet", "q", false, "Suppress the summary banner")
	f.StringVar(&scanColor, "color", "auto", "Color output: auto, always, never")
	f.BoolVar(&scanNoColor, "no-color", false, "Suppress color output")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := projectRoot()

	inputs, err := resolveInputs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}

	files, err := expandInputs(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}

	fe, err := newFrontEnd(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
		return scanExit{2}
	}

	store := openScanStore(root, scanNoCache)
	if store != nil {
		defer store.Close()
	}

	scanner := app.NewScanner(fe, store)
	opts := app.ScanOptions{
		IncludeNested: scanNested,
		FailFast:      scanFailFast,
		NoCache:       scanNoCache,
	}

	start := time.Now()
	reports, scanErr := scanner.ScanFiles(files, opts)
	elapsed := time.Since(start)

	if scanErr != nil && errors.Is(scanErr, ports.ErrFrontEndUnavailable) {
		fmt.Fprintf(os.Stderr, "psdef: %v\n", scanErr)
		return scanExit{2}
	}

	if scanJSON {
		if err := writeJSON(os.Stdout, reports); err != nil {
			fmt.Fprintf(os.Stderr, "psdef: %v\n", err)
			return scanExit{2}
		}
	} else {
		pal := newPalette(resolveColor(scanColor, scanNoColor))
		fmt.Print(formatScanReports(reports, elapsed, pal, scanQuiet))
	}

	if scanErr != nil {
		// Fail-fast stopped the batch; the offending file is not in reports.
		fmt.Fprintf(os.Stderr, "psdef: %v\n", scanErr)
		return scanExit{1}
	}
	for _, r := range reports {
		if r.Failed() {
			return scanExit{1}
		}
	}
	return nil
}

// resolveInputs returns the paths to scan: positional args when given,
// otherwise one path per line from piped stdin.
func resolveInputs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if !isStdinPipe() {
		return nil, fmt.Errorf("no paths given (pass files or directories, or pipe paths on stdin)")
	}

	var paths []string
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths on stdin")
	}
	return paths, nil
}

// expandInputs flattens path arguments into the files to scan. Directories
// expand to the source files under them; everything else passes through
// untouched, so explicitly named files always reach the scanner and missing
// paths surface as per-file failures rather than argument errors.
func expandInputs(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err == nil && info.IsDir() {
			expanded, err := app.CollectFiles(in)
			if err != nil {
				return nil, err
			}
			files = append(files, expanded...)
			continue
		}
		files = append(files, in)
	}
	return files, nil
}

// openScanStore opens the project cache when .psdef exists. A cache that
// cannot be opened (usually lock contention with a running watch) degrades
// to cache-less scanning with a notice; it never blocks the scan itself.
func openScanStore(root string, noCache bool) ports.Storage {
	if noCache {
		return nil
	}
	paths := app.NewPaths(root)
	if !paths.Exists() {
		return nil
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if isDBLockError(err) {
			fmt.Fprintf(os.Stderr, "psdef: %s\n", diagnoseDBLock(paths.DB))
		}
		fmt.Fprintf(os.Stderr, "psdef: cache unavailable, scanning without it (%v)\n", err)
		return nil
	}
	return store
}
