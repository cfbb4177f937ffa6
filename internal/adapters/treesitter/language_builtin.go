//go:build !lean

package treesitter

// This file registers the compiled-in PowerShell grammar. It is included in
// the default build (go build / go install) but excluded when building with
// -tags lean, which produces a binary that loads the grammar dynamically from
// a .so/.dylib file instead.

import (
	"unsafe"

	"github.com/alexaandru/go-sitter-forest/powershell"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// langPtr wraps a GetLanguage() call that returns unsafe.Pointer.
func langPtr(p unsafe.Pointer) *tree_sitter.Language {
	return tree_sitter.NewLanguage(p)
}

// builtinLanguage returns the compiled-in PowerShell grammar.
func builtinLanguage() *tree_sitter.Language {
	return langPtr(powershell.GetLanguage())
}
