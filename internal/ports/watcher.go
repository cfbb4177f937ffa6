package ports

// Watcher monitors a directory tree for file changes and triggers rescans.
// The adapter (fsnotify) suppresses vendored directories (.git,
// node_modules, .psdef, etc.) on its own; which files count as source is
// the caller's policy, supplied at construction. Only one Watch call
// should be active at a time.
type Watcher interface {
	// Watch starts monitoring root recursively. onChange is called with the
	// absolute path of each changed file and the kind of change. The callback
	// may be invoked from any goroutine. Returns an error if the directory
	// doesn't exist or permissions are insufficient.
	Watch(root string, onChange func(path string, op WatchOp)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}

// WatchOp classifies a filesystem change for the rescan loop.
type WatchOp int

const (
	// OpModify covers writes and creations — the file should be rescanned.
	OpModify WatchOp = iota
	// OpRemove covers removals and renames — cached results should be dropped.
	OpRemove
)

// String returns the display name for a WatchOp.
func (op WatchOp) String() string {
	if op == OpRemove {
		return "remove"
	}
	return "modify"
}
