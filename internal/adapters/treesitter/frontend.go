// Package treesitter implements the PowerShell parsing front-end on top of
// the tree-sitter runtime. It turns raw source text into function-definition
// metadata plus recovery-parse diagnostics, without ever executing the
// analyzed code.
//
// The PowerShell grammar is compiled in by default. Building with -tags lean
// drops it from the binary; the front-end then falls back to loading a
// grammar shared library dynamically via purego (see loader.go).
package treesitter

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/psdef/internal/ports"
)

// LanguageName is the single grammar this front-end speaks.
const LanguageName = "powershell"

// GrammarBuiltin is the Grammar() value reported when the compiled-in
// grammar is active, as opposed to a dynamically loaded shared library path.
const GrammarBuiltin = "built-in"

// FrontEnd parses PowerShell source and extracts definition metadata.
// It implements ports.FrontEnd.
type FrontEnd struct {
	lang    *tree_sitter.Language
	grammar string
}

// NewFrontEnd resolves the PowerShell grammar and returns a ready front-end.
// The compiled-in grammar wins when present; otherwise grammarPaths are
// probed for a shared library. When neither yields a grammar, the returned
// error wraps ports.ErrFrontEndUnavailable so callers can give install
// guidance instead of a raw dlopen message.
func NewFrontEnd(grammarPaths []string) (*FrontEnd, error) {
	if lang := builtinLanguage(); lang != nil {
		return &FrontEnd{lang: lang, grammar: GrammarBuiltin}, nil
	}

	loader := NewDynamicLoader(grammarPaths)
	lang, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: no compiled-in grammar and dynamic load failed: %v",
			ports.ErrFrontEndUnavailable, err)
	}
	return &FrontEnd{lang: lang, grammar: loader.LibraryPath()}, nil
}

// Grammar reports where the active grammar came from: GrammarBuiltin or the
// path of the loaded shared library.
func (f *FrontEnd) Grammar() string {
	return f.grammar
}

// ParseSource parses a single source unit and returns every function
// definition it declares (all nesting depths, source order) together with
// any syntax errors the recovery parse flagged. Invalid source is data, not
// failure: the error return is reserved for the front-end itself breaking.
//
// A fresh parser is created per call so concurrent callers never share
// parser state.
func (f *FrontEnd) ParseSource(path string, source []byte) (*ports.ParseOutcome, error) {
	outcome := &ports.ParseOutcome{
		Definitions:  []*ports.Definition{},
		SyntaxErrors: []ports.SyntaxError{},
	}
	if len(source) == 0 {
		return outcome, nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(f.lang); err != nil {
		return nil, fmt.Errorf("%w: grammar rejected by tree-sitter runtime: %v",
			ports.ErrFrontEndUnavailable, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		// Parser gave up entirely (cancelled or internal failure). Degrade
		// to an empty result with one diagnostic rather than erroring out.
		outcome.SyntaxErrors = append(outcome.SyntaxErrors, ports.SyntaxError{
			Line:    1,
			Column:  0,
			Message: fmt.Sprintf("parser produced no syntax tree for %s", path),
		})
		return outcome, nil
	}
	defer tree.Close()

	outcome.Definitions, outcome.SyntaxErrors = collectDefinitions(tree.RootNode(), source)
	return outcome, nil
}
