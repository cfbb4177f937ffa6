//go:build lean

package treesitter

// This file is included only when building with -tags lean.
// Lean builds carry no compiled-in grammar; NewFrontEnd falls back to the
// DynamicLoader (purego), which needs a grammar shared library installed
// (see `psdef grammar install`).
//
// Build with: go build -tags lean ./cmd/psdef/

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// builtinLanguage reports no compiled-in grammar in lean builds.
func builtinLanguage() *tree_sitter.Language {
	return nil
}
