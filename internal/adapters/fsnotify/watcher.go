// Package fsnotify watches a directory tree for PowerShell source changes
// using github.com/fsnotify/fsnotify. Only paths accepted by the caller's
// filter surface as callbacks; directory events are consumed internally so
// subtrees born after Watch starts are picked up. Rapid events per file
// are debounced (editors often trigger multiple writes per save).
package fsnotify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/psdef/internal/ports"
)

// Directory names never watched or reported. Mirrors the set the scanner
// skips while walking.
var ignoreDirs = map[string]bool{
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

// debounceInterval collapses bursts of events for the same file.
const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	matches func(path string) bool
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a file system watcher. Only paths accepted by matches
// trigger callbacks; a nil matches accepts every path. Matching is by name,
// so removed files are still classified after they are gone.
func NewWatcher(matches func(path string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = func(string) bool { return true }
	}
	return &Watcher{
		fw:      fw,
		matches: matches,
		done:    make(chan struct{}),
	}, nil
}

// Watch starts monitoring root recursively. onChange is called with the
// absolute path of each changed matching file and whether it was modified
// (written/created) or removed (deleted/renamed away).
func (w *Watcher) Watch(root string, onChange func(path string, op ports.WatchOp)) error {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root %s is not a directory", absPath)
	}

	// Walk and add all directories
	err = filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if ignoreDirs[info.Name()] && path != absPath {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Debounce state: track last event time per file
	debounce := make(map[string]time.Time)
	var dmu sync.Mutex

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				// For Create events, add new directories to the watch list
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						if !ignoreDirs[info.Name()] {
							w.fw.Add(path)
						}
						continue
					}
				}

				if underIgnoredDir(path) || !w.matches(path) {
					continue
				}

				// Debounce: skip if we've seen this file recently
				dmu.Lock()
				last, exists := debounce[path]
				now := time.Now()
				if exists && now.Sub(last) < debounceInterval {
					dmu.Unlock()
					continue
				}
				debounce[path] = now
				dmu.Unlock()

				// Classify and fire. Renames read as removals: the new
				// name arrives as its own Create event.
				switch {
				case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
					onChange(path, ports.OpRemove)
				case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
					onChange(path, ports.OpModify)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed — fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// underIgnoredDir reports whether any component of path is an ignored
// directory. Catches events that race ahead of the watch-list pruning.
func underIgnoredDir(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}
