// Package app wires the parsing front-end, the extraction domain, and the
// scan cache into the operations the CLI exposes: scan files, collect
// candidates from a directory tree, and query previously scanned results.
package app

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/corey/psdef/internal/domain/extract"
	"github.com/corey/psdef/internal/ports"
)

// skipDirs lists directories to skip during discovery (matches the fsnotify
// watcher's ignore set).
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
	"dist":         true,
	"build":        true,
	".psdef":       true,
	".next":        true,
	"target":       true,
}

// sourceExtensions is the set of PowerShell source extensions discovery
// picks up. Explicitly named files bypass this filter.
var sourceExtensions = map[string]bool{
	".ps1":  true,
	".psm1": true,
}

// maxSourceSize caps discovered files at 10MB. Larger scripts are almost
// always generated artifacts; explicitly named files are not capped.
const maxSourceSize = 10 << 20

// ScanOptions controls one scan invocation.
type ScanOptions struct {
	// IncludeNested reports definitions declared inside other definitions
	// too. Off, only top-level definitions appear in results.
	IncludeNested bool

	// FailFast aborts a batch on the first file whose scan fails instead of
	// recording the failure and moving on.
	FailFast bool

	// NoCache bypasses the scan cache entirely: no lookups, no writes.
	NoCache bool
}

// FileReport is the scan result for a single source unit. The three slices
// are always present, never nil, so JSON consumers see [] rather than null.
type FileReport struct {
	Path         string               `json:"path"`
	Records      []*extract.Record    `json:"definitions"`
	SyntaxErrors []ports.SyntaxError  `json:"syntaxErrors"`
	Diagnostics  []extract.Diagnostic `json:"diagnostics"`
	FromCache    bool                 `json:"fromCache,omitempty"`

	// Err is the failure that kept this file from being scanned at all.
	// Error carries the same text for JSON output.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether the file could not be scanned.
func (r *FileReport) Failed() bool {
	return r.Err != nil
}

// Scanner runs the scan pipeline: load source, parse, select by nesting
// policy, project to records — with a content-addressed cache in front of
// the parse when storage is configured.
type Scanner struct {
	frontend ports.FrontEnd
	store    ports.Storage
}

// NewScanner creates a scanner. store may be nil, which disables caching.
func NewScanner(frontend ports.FrontEnd, store ports.Storage) *Scanner {
	return &Scanner{frontend: frontend, store: store}
}

// ScanFile scans one source file and returns its report. The error return
// covers the file being unloadable (ports.ErrPathNotFound) or the front-end
// failing (ports.ErrFrontEndUnavailable); definitions and syntax errors in
// the file itself are data in the report, never an error.
func (s *Scanner) ScanFile(path string, opts ScanOptions) (*FileReport, error) {
	unit, err := LoadSource(path)
	if err != nil {
		return nil, err
	}

	sum := hashSource(unit.Raw)
	useCache := s.store != nil && !opts.NoCache

	if useCache {
		// A broken cache entry never blocks a scan: any load error falls
		// through to a fresh parse, whose result overwrites the entry.
		cached, loadErr := s.store.LoadScan(unit.Path)
		if loadErr == nil && cached != nil && cached.Hash == sum {
			return s.report(unit.Path, cached.Definitions, cached.SyntaxErrors, opts, true), nil
		}
	}

	outcome, err := s.frontend.ParseSource(unit.Path, unit.Raw)
	if err != nil {
		return nil, err
	}

	if useCache {
		scan := &ports.CachedScan{
			Hash:           sum,
			ScannedAtMilli: time.Now().UnixMilli(),
			Definitions:    outcome.Definitions,
			SyntaxErrors:   outcome.SyntaxErrors,
		}
		if err := s.store.SaveScan(unit.Path, scan); err != nil {
			return nil, fmt.Errorf("cache scan for %s: %w", unit.Path, err)
		}
	}

	return s.report(unit.Path, outcome.Definitions, outcome.SyntaxErrors, opts, false), nil
}

// ScanFiles scans a batch. One file failing is recorded in its report and
// the batch continues — except when the front-end itself is gone or
// opts.FailFast is set, which abort with the reports gathered so far.
func (s *Scanner) ScanFiles(paths []string, opts ScanOptions) ([]*FileReport, error) {
	reports := make([]*FileReport, 0, len(paths))
	for _, path := range paths {
		report, err := s.ScanFile(path, opts)
		if err != nil {
			if errors.Is(err, ports.ErrFrontEndUnavailable) || opts.FailFast {
				return reports, err
			}
			reports = append(reports, &FileReport{
				Path:         path,
				Records:      []*extract.Record{},
				SyntaxErrors: []ports.SyntaxError{},
				Diagnostics:  []extract.Diagnostic{},
				Err:          err,
				Error:        err.Error(),
			})
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// EvictScan removes the cached result for a path that no longer exists.
// No-op without storage.
func (s *Scanner) EvictScan(path string) error {
	if s.store == nil {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return s.store.DeleteScan(abs)
}

func (s *Scanner) report(path string, defs []*ports.Definition, syntaxErrs []ports.SyntaxError, opts ScanOptions, fromCache bool) *FileReport {
	selected := extract.Select(defs, opts.IncludeNested)
	records, diags := extract.ProjectAll(selected, path)
	if syntaxErrs == nil {
		// Cache entries stored as null round-trip as nil.
		syntaxErrs = []ports.SyntaxError{}
	}
	return &FileReport{
		Path:         path,
		Records:      records,
		SyntaxErrors: syntaxErrs,
		Diagnostics:  diags,
		FromCache:    fromCache,
	}
}

// hashSource returns the sha256 hex digest of the raw source bytes.
// Cache entries are keyed by path and validated by this digest, so results
// derive from file content alone.
func hashSource(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// IsSourceFile reports whether path names a PowerShell source file by
// extension.
func IsSourceFile(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// CollectFiles walks root and returns every PowerShell source file under it,
// sorted, skipping workspace noise directories and oversized files. A
// missing root wraps ports.ErrPathNotFound.
func CollectFiles(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrPathNotFound, err)
	}

	var files []string
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable
		}
		if info.IsDir() {
			if skipDirs[info.Name()] && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(path) {
			return nil
		}
		if info.Size() > maxSourceSize {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
