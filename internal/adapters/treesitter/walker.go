package treesitter

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/psdef/internal/ports"
)

// Node kinds from the tree-sitter PowerShell grammar that the walk dispatches
// on. function_statement covers all three definition keywords (function,
// filter, workflow); the keyword itself is the node's first token.
const (
	kindFunctionStatement = "function_statement"
	kindFunctionName      = "function_name"
	kindParamDecl         = "function_parameter_declaration"
	kindParamBlock        = "param_block"
	kindScriptParameter   = "script_parameter"
	kindVariable          = "variable"
	kindScriptBlockExpr   = "script_block_expression"
	kindError             = "ERROR"
)

// collectDefinitions walks the tree once, pre-order, and returns every
// function definition (all nesting depths, enclosing before enclosed) plus
// every recovery-parse diagnostic, both in source order.
//
// ERROR subtrees are walked too: the recovery parse often salvages complete
// definitions inside them, and those are findings, not noise.
func collectDefinitions(root *tree_sitter.Node, source []byte) ([]*ports.Definition, []ports.SyntaxError) {
	ctx := &walkContext{
		source: source,
		defs:   []*ports.Definition{},
		errs:   []ports.SyntaxError{},
	}
	ctx.walk(root, 0)
	return ctx.defs, ctx.errs
}

type walkContext struct {
	source []byte
	defs   []*ports.Definition
	errs   []ports.SyntaxError
}

// walk visits n and its subtree. depth counts enclosing definitions, so
// top-level definitions carry 0 and a function declared inside one carries 1.
func (ctx *walkContext) walk(n *tree_sitter.Node, depth int) {
	kind := n.Kind()

	switch {
	case n.IsMissing():
		// Zero-width node the parser inserted to recover; its kind names
		// the token that should have been there.
		ctx.errs = append(ctx.errs, ports.SyntaxError{
			Line:    int(n.StartPosition().Row) + 1,
			Column:  int(n.StartPosition().Column),
			Message: "missing " + kind,
		})
	case kind == kindError:
		ctx.errs = append(ctx.errs, ports.SyntaxError{
			Line:    int(n.StartPosition().Row) + 1,
			Column:  int(n.StartPosition().Column),
			Message: "syntax error" + errorNear(n, ctx.source),
		})
	}

	childDepth := depth
	if kind == kindFunctionStatement {
		ctx.defs = append(ctx.defs, definitionFromNode(n, ctx.source, depth))
		childDepth = depth + 1
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		ctx.walk(child, childDepth)
	}
}

// definitionFromNode reads every reported attribute off one definition node.
// Name stays empty when the parse was too degraded to carry one; downstream
// projection skips and diagnoses such definitions instead of failing the file.
func definitionFromNode(n *tree_sitter.Node, source []byte, depth int) *ports.Definition {
	def := &ports.Definition{
		IsFilter:   isFilterForm(n, source),
		Parameters: parameterNames(n, source),
		StartLine:  int(n.StartPosition().Row) + 1,
		StartCol:   int(n.StartPosition().Column),
		EndLine:    int(n.EndPosition().Row) + 1,
		EndCol:     int(n.EndPosition().Column),
		StartByte:  int(n.StartByte()),
		EndByte:    int(n.EndByte()),
		Body:       nodeText(n, source),
		Depth:      depth,
	}
	if name := childByKind(n, kindFunctionName); name != nil {
		def.Name = nodeText(name, source)
	}
	return def
}

// isFilterForm reports whether the definition uses the filter keyword. The
// keyword is the definition node's first token; function and workflow both
// read as the standard form. PowerShell keywords are case-insensitive.
func isFilterForm(n *tree_sitter.Node, source []byte) bool {
	kw := n.Child(0)
	if kw == nil {
		return false
	}
	return strings.EqualFold(nodeText(kw, source), "filter")
}

// parameterNames extracts the declared parameter names of a definition in
// left-to-right source order. The parenthesized list after the function name
// wins when present; otherwise the body's own param() block is used. A
// definition declaring neither yields an empty, non-nil slice.
func parameterNames(n *tree_sitter.Node, source []byte) []string {
	decl := childByKind(n, kindParamDecl)
	if decl == nil {
		decl = bodyParamBlock(n)
	}

	names := []string{}
	if decl != nil {
		appendParameterNames(decl, source, &names)
	}
	return names
}

// appendParameterNames collects the variable name of every script_parameter
// under decl. Recursion skips into intermediate list nodes but never into a
// script_parameter itself, so script-block default values cannot leak their
// own parameters into the result.
func appendParameterNames(decl *tree_sitter.Node, source []byte, names *[]string) {
	for i := uint(0); i < decl.ChildCount(); i++ {
		c := decl.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == kindScriptParameter {
			if v := childByKind(c, kindVariable); v != nil {
				*names = append(*names, variableName(nodeText(v, source)))
			}
			continue
		}
		appendParameterNames(c, source, names)
	}
}

// bodyParamBlock finds the definition's own param() block. The search stops
// at nested definitions and script-block literals so their parameter blocks
// are never attributed to the outer definition.
func bodyParamBlock(n *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case kindParamBlock:
			return c
		case kindFunctionStatement, kindScriptBlockExpr:
			continue
		}
		if found := bodyParamBlock(c); found != nil {
			return found
		}
	}
	return nil
}

// variableName strips the $ sigil and ${name} braces from a variable token.
func variableName(text string) string {
	text = strings.TrimPrefix(text, "$")
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") && len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	return text
}

// errorNear renders a short ` near ...` hint for an ERROR node so diagnostics
// point at the offending text, clipped to the first line.
func errorNear(n *tree_sitter.Node, source []byte) string {
	text := nodeText(n, source)
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return " near '" + clip(text, 40) + "'"
}

// clip truncates s to max bytes, cutting on a rune boundary.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "..."
}

// childByKind returns the first direct child of n with the given kind.
func childByKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// nodeText returns the source text a node spans, bounds-checked against the
// source buffer.
func nodeText(n *tree_sitter.Node, source []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if start >= end || int(end) > len(source) {
		return ""
	}
	return string(source[start:end])
}
