package extract

// Record is one reported function definition: the projection of a parsed
// definition onto the fields callers consume. Records are what the scan
// output, the JSON emitter, and the cache queries all speak.
type Record struct {
	// Name is the declared function name, e.g. "Get-Alpha".
	Name string `json:"name"`

	// IsFilter marks the filter keyword form. Plain function and workflow
	// definitions both read as the standard form (false).
	IsFilter bool `json:"isFilter"`

	// ParameterNames lists declared parameters in source order, sigils
	// stripped. Empty but never nil for parameterless definitions.
	ParameterNames []string `json:"parameterNames"`

	// LineNumber is the 1-based line of the definition keyword.
	LineNumber int `json:"lineNumber"`

	// FilePath is the path of the source unit the definition came from.
	FilePath string `json:"filePath"`

	// SourceText is the exact source of the whole definition, keyword
	// through closing brace.
	SourceText string `json:"sourceText"`

	// Depth is 0 for a top-level definition, >0 when it was declared
	// inside another definition's body.
	Depth int `json:"depth"`
}

// Diagnostic reports a definition that was discovered but could not be
// projected, with the line it sits on. Diagnostics are per-definition and
// never fail the file.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}
