package bbolt

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/psdef/internal/ports"
)

// =============================================================================
// bbolt cache store — save/load per-file scan results, crash safety.
// Expectation: one bucket keyed by absolute path, JSON values, nil-nil on
// cache miss, idempotent delete, survives restart, 1s lock timeout.
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

// makeTestScan creates a realistic cached scan result.
func makeTestScan() *ports.CachedScan {
	return &ports.CachedScan{
		Hash:           "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		ScannedAtMilli: 1756000000000,
		Definitions: []*ports.Definition{
			{
				Name:       "Get-Alpha",
				Parameters: []string{"x", "y"},
				StartLine:  1,
				EndLine:    3,
				EndCol:     1,
				EndByte:    52,
				Body:       "function Get-Alpha($x, $y) {\n    \"alpha: $x $y\"\n}",
				Depth:      0,
			},
			{
				Name:       "Select-Gamma",
				IsFilter:   true,
				Parameters: []string{},
				StartLine:  5,
				EndLine:    7,
				EndCol:     1,
				StartByte:  54,
				EndByte:    83,
				Body:       "filter Select-Gamma {\n    $_\n}",
				Depth:      0,
			},
		},
		SyntaxErrors: []ports.SyntaxError{
			{Line: 9, Column: 0, Message: "syntax error near ')'"},
		},
	}
}

func TestStore_SaveLoadScan_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)

	original := makeTestScan()
	require.NoError(t, store.SaveScan("/repo/scripts/alpha.ps1", original))

	loaded, err := store.LoadScan("/repo/scripts/alpha.ps1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, original.Hash, loaded.Hash)
	assert.Equal(t, original.ScannedAtMilli, loaded.ScannedAtMilli)
	require.Equal(t, 2, len(loaded.Definitions))
	assert.Equal(t, "Get-Alpha", loaded.Definitions[0].Name)
	assert.Equal(t, []string{"x", "y"}, loaded.Definitions[0].Parameters)
	assert.True(t, loaded.Definitions[1].IsFilter)
	require.Equal(t, 1, len(loaded.SyntaxErrors))
	assert.Equal(t, 9, loaded.SyntaxErrors[0].Line)
}

func TestStore_LoadScan_NeverScanned(t *testing.T) {
	store, _ := newTestStore(t)

	scan, err := store.LoadScan("/repo/never-seen.ps1")
	require.NoError(t, err)
	assert.Nil(t, scan, "cache miss is nil, nil — not an error")
}

func TestStore_SaveScan_Overwrites(t *testing.T) {
	store, _ := newTestStore(t)
	path := "/repo/module.psm1"

	first := makeTestScan()
	require.NoError(t, store.SaveScan(path, first))

	second := &ports.CachedScan{
		Hash:           "1111111111111111111111111111111111111111111111111111111111111111",
		ScannedAtMilli: 1756000001000,
		Definitions:    []*ports.Definition{},
		SyntaxErrors:   []ports.SyntaxError{},
	}
	require.NoError(t, store.SaveScan(path, second))

	loaded, err := store.LoadScan(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, second.Hash, loaded.Hash)
	assert.Empty(t, loaded.Definitions)
}

func TestStore_SaveScan_NilRejected(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveScan("/repo/a.ps1", nil))
}

func TestStore_DeleteScan_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	path := "/repo/gone.ps1"

	// Deleting before anything was ever saved is fine.
	require.NoError(t, store.DeleteScan(path))

	require.NoError(t, store.SaveScan(path, makeTestScan()))
	require.NoError(t, store.DeleteScan(path))

	scan, err := store.LoadScan(path)
	require.NoError(t, err)
	assert.Nil(t, scan)

	// And deleting again is still fine.
	require.NoError(t, store.DeleteScan(path))
}

func TestStore_ForEachScan_PathOrder(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveScan("/repo/b.ps1", makeTestScan()))
	require.NoError(t, store.SaveScan("/repo/a.ps1", makeTestScan()))
	require.NoError(t, store.SaveScan("/repo/c.psm1", makeTestScan()))

	var paths []string
	err := store.ForEachScan(func(path string, scan *ports.CachedScan) error {
		paths = append(paths, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/a.ps1", "/repo/b.ps1", "/repo/c.psm1"}, paths,
		"bbolt iterates keys in byte order")
}

func TestStore_ForEachScan_StopsOnError(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveScan("/repo/a.ps1", makeTestScan()))
	require.NoError(t, store.SaveScan("/repo/b.ps1", makeTestScan()))

	visited := 0
	err := store.ForEachScan(func(path string, scan *ports.CachedScan) error {
		visited++
		return fmt.Errorf("stop here")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop here")
	assert.Equal(t, 1, visited)
}

func TestStore_Stats(t *testing.T) {
	store, _ := newTestStore(t)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Files)
	assert.Equal(t, 0, stats.Definitions)

	require.NoError(t, store.SaveScan("/repo/a.ps1", makeTestScan()))
	require.NoError(t, store.SaveScan("/repo/b.ps1", makeTestScan()))

	stats, err = store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 4, stats.Definitions)
}

func TestStore_Clear(t *testing.T) {
	store, _ := newTestStore(t)

	// Clearing an empty store is fine.
	require.NoError(t, store.Clear())

	require.NoError(t, store.SaveScan("/repo/a.ps1", makeTestScan()))
	require.NoError(t, store.Clear())

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Files)

	scan, err := store.LoadScan("/repo/a.ps1")
	require.NoError(t, err)
	assert.Nil(t, scan)

	// Store remains writable after a clear.
	require.NoError(t, store.SaveScan("/repo/a.ps1", makeTestScan()))
}

func TestStore_ScanSurvivesRestart(t *testing.T) {
	// Save, close, reopen, load. Simulates process restart.
	dir := t.TempDir()
	path := filepath.Join(dir, "restart.db")

	store1, err := NewStore(path)
	require.NoError(t, err)

	original := makeTestScan()
	require.NoError(t, store1.SaveScan("/repo/alpha.ps1", original))
	require.NoError(t, store1.Close())

	// Verify file exists on disk
	_, err = os.Stat(path)
	require.NoError(t, err)

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	loaded, err := store2.LoadScan("/repo/alpha.ps1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original.Hash, loaded.Hash)
	assert.Equal(t, 2, len(loaded.Definitions))
}

func TestStore_ConcurrentReads(t *testing.T) {
	// bbolt supports concurrent readers, single writer.
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveScan("/repo/alpha.ps1", makeTestScan()))

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scan, err := store.LoadScan("/repo/alpha.ps1")
			if err != nil {
				errs <- err
				return
			}
			if scan == nil {
				errs <- fmt.Errorf("got nil scan")
				return
			}
			if len(scan.Definitions) != 2 {
				errs <- fmt.Errorf("expected 2 definitions, got %d", len(scan.Definitions))
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read error: %v", err)
	}
}

// =============================================================================
// Lock contention tests — verify the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	// When another process holds the bbolt exclusive lock (a running watch
	// session, typically), a second open should timeout in ~1 second.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2, "store should be nil on timeout")
	assert.Contains(t, err.Error(), "timeout", "error should mention timeout")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "should wait ~1s for the configured timeout")
}

func TestStore_OpenTimeout_ErrorMessage(t *testing.T) {
	// The error message should be useful for diagnosis — wrapped with context.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	_, err = NewStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	// After the lock holder closes, a new open should succeed immediately.
	dir := t.TempDir()
	path := filepath.Join(dir, "released.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.SaveScan("/repo/a.ps1", makeTestScan()))
	store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.NoError(t, err, "open after close should succeed")
	require.NotNil(t, store2)
	assert.Less(t, elapsed, 500*time.Millisecond, "should open instantly after lock released")
	defer store2.Close()

	scan, err := store2.LoadScan("/repo/a.ps1")
	require.NoError(t, err)
	require.NotNil(t, scan)
	assert.Equal(t, 2, len(scan.Definitions))
}
