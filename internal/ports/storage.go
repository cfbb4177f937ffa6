// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain and app logic
// depend only on these interfaces, never on concrete implementations.
package ports

// Storage persists per-file scan outcomes so unchanged files skip re-parsing.
// The backing store (bbolt) lives under the project's .psdef directory.
//
// Crash safety: SaveScan must be transactional. A crash mid-write must not
// corrupt previously committed entries.
type Storage interface {
	// SaveScan persists the parse outcome for one file, keyed by its resolved
	// absolute path. Overwrites any prior entry for that path.
	SaveScan(path string, scan *CachedScan) error

	// LoadScan retrieves the cached outcome for a file.
	// Returns nil, nil if no entry exists. Callers must compare the stored
	// Hash against the current content hash before trusting the entry.
	LoadScan(path string) (*CachedScan, error)

	// DeleteScan removes one file's entry.
	// Idempotent: deleting a missing entry is not an error.
	DeleteScan(path string) error

	// ForEachScan visits every cached entry. Iteration order is unspecified;
	// callers sort if they need determinism. A non-nil error stops the walk
	// and is returned.
	ForEachScan(fn func(path string, scan *CachedScan) error) error

	// Stats reports entry and definition counts across the cache.
	Stats() (*CacheStats, error)

	// Clear removes all cached entries. Idempotent.
	Clear() error

	// Close releases the underlying database.
	Close() error
}

// CachedScan is the persisted parse outcome for one file. Definitions are
// stored unfiltered (every nesting depth) so a single entry serves any
// nesting policy at read time.
type CachedScan struct {
	Hash           string        `json:"hash"` // sha256 hex of file content
	ScannedAtMilli int64         `json:"scannedAtMilli"`
	Definitions    []*Definition `json:"definitions"`
	SyntaxErrors   []SyntaxError `json:"syntaxErrors"`
}

// CacheStats summarizes cache contents.
type CacheStats struct {
	Files       int `json:"files"`
	Definitions int `json:"definitions"`
}
