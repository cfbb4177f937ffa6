package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariableName(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"$x", "x"},
		{"$Path", "Path"},
		{"${strange name}", "strange name"},
		{"${x}", "x"},
		{"x", "x"},   // already bare
		{"$", ""},    // sigil only
		{"${}", ""},  // empty braces
		{"$_", "_"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, variableName(c.token), "token %q", c.token)
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 40))
	assert.Equal(t, "abcd...", clip("abcdefgh", 4))

	// Multibyte runes are never split.
	clipped := clip("héllo wörld, héllo wörld, héllo wörld", 20)
	assert.True(t, len(clipped) <= 23)
	for _, r := range clipped {
		assert.NotEqual(t, '�', r, "clip must cut on rune boundaries")
	}
}
