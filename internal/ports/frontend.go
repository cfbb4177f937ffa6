package ports

// FrontEnd parses PowerShell source text into definition metadata.
// The concrete implementation (tree-sitter) lives in internal/adapters/treesitter.
// Construction fails with ErrFrontEndUnavailable when the build carries no
// grammar and none can be loaded — a configuration error, never a per-file one.
type FrontEnd interface {
	// ParseSource parses one source unit and returns every function definition
	// found in the tree, at every nesting depth, in pre-order (source order),
	// together with any syntax diagnostics from the recovery parse.
	// Syntactically invalid input is not an error: the parse degrades to a
	// best-effort tree and the diagnostics carry the details. Empty source
	// yields an empty outcome.
	ParseSource(path string, source []byte) (*ParseOutcome, error)

	// Grammar reports where the PowerShell grammar came from: "built-in" or
	// the path of the dynamically loaded shared library.
	Grammar() string
}

// ParseOutcome is everything the front-end extracted from one source unit.
type ParseOutcome struct {
	// Definitions holds every definition in the tree, pre-order, all nesting
	// depths. Nesting-policy filtering happens at report time, not here.
	Definitions []*Definition `json:"definitions"`

	// SyntaxErrors holds recovery-parse diagnostics in source order.
	// Empty for well-formed input. Always data, never a Go error.
	SyntaxErrors []SyntaxError `json:"syntaxErrors"`
}

// Definition is one function-style or filter-style definition node.
type Definition struct {
	// Name is empty only when a degraded parse produced a definition node
	// without a resolvable name; the projector skips and reports those.
	Name string `json:"name"`

	// IsFilter is true exactly when the declaration uses the filter keyword.
	// function and workflow declarations report false.
	IsFilter bool `json:"isFilter"`

	// Parameters holds declared parameter names in left-to-right order,
	// $ sigil stripped. Never nil: a definition without parameters carries
	// an empty slice.
	Parameters []string `json:"parameters"`

	StartLine int `json:"startLine"` // 1-based, the declaration keyword's line
	StartCol  int `json:"startCol"`  // 0-based
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
	StartByte int `json:"startByte"`
	EndByte   int `json:"endByte"`

	// Body is the literal source text covering the whole definition,
	// keyword through closing brace.
	Body string `json:"body"`

	// Depth is 0 for top-level definitions, >0 when lexically enclosed in
	// another definition's body.
	Depth int `json:"depth"`
}

// SyntaxError is one recovery-parse diagnostic.
type SyntaxError struct {
	Line    int    `json:"line"`   // 1-based
	Column  int    `json:"column"` // 0-based
	Message string `json:"message"`
}
