//go:build !lean

package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// PowerShell front-end: parse source, extract function definitions.
// Expectation: every function/filter definition at every nesting depth, in
// source order, with name, parameters, keyword line, and exact source text.
// Invalid source degrades to partial results plus diagnostics, never errors.
// =============================================================================

func newTestFrontEnd(t *testing.T) *FrontEnd {
	t.Helper()
	fe, err := NewFrontEnd(nil)
	require.NoError(t, err, "compiled-in grammar must be available in default builds")
	return fe
}

func TestFrontEnd_ExtractDefinitions(t *testing.T) {
	fe := newTestFrontEnd(t)

	source := []byte(`function Get-Alpha($x, $y) {
    "alpha: $x $y"
}

filter Select-Gamma {
    $_
}
`)

	outcome, err := fe.ParseSource("alpha.ps1", source)
	require.NoError(t, err)
	require.Equal(t, 2, len(outcome.Definitions), "expected function + filter")
	assert.Empty(t, outcome.SyntaxErrors)

	alpha := outcome.Definitions[0]
	assert.Equal(t, "Get-Alpha", alpha.Name)
	assert.False(t, alpha.IsFilter)
	assert.Equal(t, []string{"x", "y"}, alpha.Parameters)
	assert.Equal(t, 1, alpha.StartLine)
	assert.Equal(t, 0, alpha.Depth)
	assert.Equal(t, "function Get-Alpha($x, $y) {\n    \"alpha: $x $y\"\n}", alpha.Body)

	gamma := outcome.Definitions[1]
	assert.Equal(t, "Select-Gamma", gamma.Name)
	assert.True(t, gamma.IsFilter)
	assert.Equal(t, []string{}, gamma.Parameters)
	assert.Equal(t, 5, gamma.StartLine)
	assert.Equal(t, 0, gamma.Depth)
}

func TestFrontEnd_KeywordForms(t *testing.T) {
	// workflow declares a standard-form definition, and keyword casing is
	// irrelevant (PowerShell is case-insensitive).
	fe := newTestFrontEnd(t)

	source := []byte(`workflow Invoke-Deploy {
    "deploying"
}

FILTER Select-Loud {
    $_
}
`)

	outcome, err := fe.ParseSource("forms.ps1", source)
	require.NoError(t, err)
	require.Equal(t, 2, len(outcome.Definitions))

	assert.Equal(t, "Invoke-Deploy", outcome.Definitions[0].Name)
	assert.False(t, outcome.Definitions[0].IsFilter, "workflow is a standard form")
	assert.Equal(t, "Select-Loud", outcome.Definitions[1].Name)
	assert.True(t, outcome.Definitions[1].IsFilter, "FILTER matches case-insensitively")
}

func TestFrontEnd_NestedDefinitions(t *testing.T) {
	// A definition inside a definition is still discovered, after its parent,
	// with its depth recording how many definitions enclose it.
	fe := newTestFrontEnd(t)

	source := []byte(`function Invoke-Outer {
    function Invoke-Inner {
        function Invoke-Innermost {
        }
    }
    filter Select-Sibling {
        $_
    }
}
`)

	outcome, err := fe.ParseSource("nested.ps1", source)
	require.NoError(t, err)
	require.Equal(t, 4, len(outcome.Definitions))

	assert.Equal(t, "Invoke-Outer", outcome.Definitions[0].Name)
	assert.Equal(t, 0, outcome.Definitions[0].Depth)
	assert.Equal(t, "Invoke-Inner", outcome.Definitions[1].Name)
	assert.Equal(t, 1, outcome.Definitions[1].Depth)
	assert.Equal(t, "Invoke-Innermost", outcome.Definitions[2].Name)
	assert.Equal(t, 2, outcome.Definitions[2].Depth)
	assert.Equal(t, "Select-Sibling", outcome.Definitions[3].Name)
	assert.Equal(t, 1, outcome.Definitions[3].Depth)

	// Keyword lines, 1-based.
	assert.Equal(t, 1, outcome.Definitions[0].StartLine)
	assert.Equal(t, 2, outcome.Definitions[1].StartLine)
	assert.Equal(t, 3, outcome.Definitions[2].StartLine)
	assert.Equal(t, 6, outcome.Definitions[3].StartLine)
}

func TestFrontEnd_ParameterForms(t *testing.T) {
	fe := newTestFrontEnd(t)

	t.Run("parenthesized list", func(t *testing.T) {
		source := []byte(`function Set-Triple($a, $b, $c) {
}
`)
		outcome, err := fe.ParseSource("t.ps1", source)
		require.NoError(t, err)
		require.Equal(t, 1, len(outcome.Definitions))
		assert.Equal(t, []string{"a", "b", "c"}, outcome.Definitions[0].Parameters)
	})

	t.Run("param block in body", func(t *testing.T) {
		source := []byte(`function Get-Config {
    param($Path, $Format)
    Get-Content $Path
}
`)
		outcome, err := fe.ParseSource("t.ps1", source)
		require.NoError(t, err)
		require.Equal(t, 1, len(outcome.Definitions))
		assert.Equal(t, []string{"Path", "Format"}, outcome.Definitions[0].Parameters)
	})

	t.Run("param block with defaults", func(t *testing.T) {
		source := []byte(`function New-Widget {
    param($Name, $Count = 3)
}
`)
		outcome, err := fe.ParseSource("t.ps1", source)
		require.NoError(t, err)
		require.Equal(t, 1, len(outcome.Definitions))
		assert.Equal(t, []string{"Name", "Count"}, outcome.Definitions[0].Parameters)
	})

	t.Run("no parameters", func(t *testing.T) {
		source := []byte(`function Clear-State {
    Remove-Item state.json
}
`)
		outcome, err := fe.ParseSource("t.ps1", source)
		require.NoError(t, err)
		require.Equal(t, 1, len(outcome.Definitions))
		require.NotNil(t, outcome.Definitions[0].Parameters, "parameters must be empty, not nil")
		assert.Equal(t, []string{}, outcome.Definitions[0].Parameters)
	})

	t.Run("nested param block stays with inner definition", func(t *testing.T) {
		source := []byte(`function Invoke-Wrapper {
    function Invoke-Worker {
        param($Job)
    }
}
`)
		outcome, err := fe.ParseSource("t.ps1", source)
		require.NoError(t, err)
		require.Equal(t, 2, len(outcome.Definitions))
		assert.Equal(t, []string{}, outcome.Definitions[0].Parameters,
			"outer definition must not adopt the inner param block")
		assert.Equal(t, []string{"Job"}, outcome.Definitions[1].Parameters)
	})
}

func TestFrontEnd_SyntaxErrors_PartialExtraction(t *testing.T) {
	// Broken source is data, not failure: intact definitions are still
	// reported and the damage shows up as diagnostics.
	fe := newTestFrontEnd(t)

	source := []byte(`function Get-Good {
    "ok"
}

)))(((
`)

	outcome, err := fe.ParseSource("broken.ps1", source)
	require.NoError(t, err, "invalid source must not error")
	require.Equal(t, 1, len(outcome.Definitions))
	assert.Equal(t, "Get-Good", outcome.Definitions[0].Name)
	assert.NotEmpty(t, outcome.SyntaxErrors, "garbage after the function must be flagged")
}

func TestFrontEnd_UnclosedBrace(t *testing.T) {
	fe := newTestFrontEnd(t)

	source := []byte(`function Get-Partial {
    if ($true) {
        "never closed"
`)

	outcome, err := fe.ParseSource("unclosed.ps1", source)
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.SyntaxErrors, "unclosed braces must surface as diagnostics")
	// The recovery parse may or may not salvage the definition; either way
	// the call itself degrades gracefully.
	for _, def := range outcome.Definitions {
		assert.Equal(t, "Get-Partial", def.Name)
	}
}

func TestFrontEnd_EmptySource(t *testing.T) {
	fe := newTestFrontEnd(t)

	outcome, err := fe.ParseSource("empty.ps1", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, outcome.Definitions)
	assert.Empty(t, outcome.SyntaxErrors)

	outcome, err = fe.ParseSource("nil.ps1", nil)
	require.NoError(t, err)
	assert.Empty(t, outcome.Definitions)
	assert.Empty(t, outcome.SyntaxErrors)
}

func TestFrontEnd_NoDefinitions(t *testing.T) {
	fe := newTestFrontEnd(t)

	source := []byte(`$items = Get-ChildItem
foreach ($item in $items) {
    Write-Output $item
}
`)

	outcome, err := fe.ParseSource("script.ps1", source)
	require.NoError(t, err)
	assert.Empty(t, outcome.Definitions, "plain script code declares nothing")
	assert.Empty(t, outcome.SyntaxErrors)
}

func TestFrontEnd_RepeatParse_Deterministic(t *testing.T) {
	// Same bytes in, same metadata out, regardless of how often it runs.
	fe := newTestFrontEnd(t)

	source := []byte(`function Get-Alpha($x) {
    $x
}

function Get-Beta {
    param($y)
    $y
}
`)

	first, err := fe.ParseSource("repeat.ps1", source)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := fe.ParseSource("repeat.ps1", source)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFrontEnd_SpansMatchSource(t *testing.T) {
	fe := newTestFrontEnd(t)

	source := []byte(`Write-Output "prelude"

function Measure-Widget($w) {
    $w.Length
}
`)

	outcome, err := fe.ParseSource("spans.ps1", source)
	require.NoError(t, err)
	require.Equal(t, 1, len(outcome.Definitions))

	def := outcome.Definitions[0]
	assert.Equal(t, 3, def.StartLine)
	assert.Equal(t, 0, def.StartCol)
	assert.Equal(t, 5, def.EndLine)
	assert.Equal(t, string(source[def.StartByte:def.EndByte]), def.Body,
		"byte span and source text must agree")
}

func TestFrontEnd_Grammar_Builtin(t *testing.T) {
	fe := newTestFrontEnd(t)
	assert.Equal(t, GrammarBuiltin, fe.Grammar())
}

func BenchmarkParseSource(b *testing.B) {
	fe, err := NewFrontEnd(nil)
	if err != nil {
		b.Fatal(err)
	}

	source := []byte(`function Get-Inventory {
    param($Path, $Filter)
    Get-ChildItem -Path $Path -Filter $Filter
}

function Update-Inventory($item, $state) {
    function Write-Entry {
        param($line)
        Add-Content -Path inventory.log -Value $line
    }
    Write-Entry "$item -> $state"
}

filter Select-Active {
    if ($_.Active) { $_ }
}
`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fe.ParseSource("bench.ps1", source)
	}
}
