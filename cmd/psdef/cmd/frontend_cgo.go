//go:build cgo

package cmd

import (
	"github.com/corey/psdef/internal/adapters/treesitter"
	"github.com/corey/psdef/internal/ports"
)

// newFrontEnd returns the tree-sitter front-end. If root is non-empty the
// project and global grammar directories are searched before giving up, so
// lean builds pick up installed grammar shared libraries.
func newFrontEnd(root string) (ports.FrontEnd, error) {
	var paths []string
	if root != "" {
		paths = treesitter.DefaultGrammarPaths(root)
	}
	fe, err := treesitter.NewFrontEnd(paths)
	if err != nil {
		return nil, err
	}
	return fe, nil
}
