package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/psdef/internal/ports"
)

// SourceUnit is one loaded source file: its canonical absolute path and the
// raw bytes read from disk.
type SourceUnit struct {
	Path string
	Raw  []byte
}

// LoadSource reads one source file from disk. The returned path is absolute
// with symlinks resolved, so the same file always maps to the same cache key
// no matter how the caller spelled it. Missing, unreadable, and non-file
// paths all wrap ports.ErrPathNotFound.
func LoadSource(path string) (*SourceUnit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrPathNotFound, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrPathNotFound, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrPathNotFound, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ports.ErrPathNotFound, path)
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrPathNotFound, err)
	}
	return &SourceUnit{Path: resolved, Raw: raw}, nil
}
