// Package extract turns parsed definition metadata into reported records.
// It owns the two policy decisions the parser deliberately does not make:
// which discovered definitions a caller wants (top-level only vs. all
// depths), and how a definition maps onto the reported record fields.
package extract

import (
	"fmt"

	"github.com/corey/psdef/internal/ports"
)

// Select filters discovered definitions by nesting policy, preserving
// discovery order. The parser always reports every depth; selection happens
// here so a cached parse can serve both policies.
func Select(defs []*ports.Definition, includeNested bool) []*ports.Definition {
	if includeNested {
		out := make([]*ports.Definition, len(defs))
		copy(out, defs)
		return out
	}
	out := []*ports.Definition{}
	for _, def := range defs {
		if def.Depth == 0 {
			out = append(out, def)
		}
	}
	return out
}

// Project maps one definition onto its record. A definition too degraded to
// carry a name cannot be reported; it yields a nil record and a diagnostic
// instead, leaving the rest of the file's results intact.
func Project(def *ports.Definition, filePath string) (*Record, *Diagnostic) {
	if def.Name == "" {
		return nil, &Diagnostic{
			Line:    def.StartLine,
			Message: fmt.Sprintf("definition at line %d has no readable name, skipped", def.StartLine),
		}
	}

	params := make([]string, len(def.Parameters))
	copy(params, def.Parameters)

	return &Record{
		Name:           def.Name,
		IsFilter:       def.IsFilter,
		ParameterNames: params,
		LineNumber:     def.StartLine,
		FilePath:       filePath,
		SourceText:     def.Body,
		Depth:          def.Depth,
	}, nil
}

// ProjectAll projects every definition in order, collecting records and
// diagnostics. len(records)+len(diags) always equals len(defs).
func ProjectAll(defs []*ports.Definition, filePath string) ([]*Record, []Diagnostic) {
	records := []*Record{}
	diags := []Diagnostic{}
	for _, def := range defs {
		rec, diag := Project(def, filePath)
		if diag != nil {
			diags = append(diags, *diag)
			continue
		}
		records = append(records, rec)
	}
	return records, diags
}
