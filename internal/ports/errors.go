package ports

import "errors"

// Failure taxonomy. File-level failures are recoverable at the batch level;
// configuration-level failures abort the run. Syntax problems in analyzed
// source are never Go errors — they travel as ParseOutcome.SyntaxErrors.
var (
	// ErrPathNotFound marks an input file that does not exist or cannot be
	// read. Fatal for that one file: a batch records it and continues unless
	// the caller asked to fail fast.
	ErrPathNotFound = errors.New("path not found")

	// ErrFrontEndUnavailable marks a build without a usable PowerShell
	// grammar: compiled without cgo, or a lean build with no grammar shared
	// library on the search paths. Aborts the whole run.
	ErrFrontEndUnavailable = errors.New("parser front-end unavailable")
)
