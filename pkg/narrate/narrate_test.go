package narrate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codescribe/pkg/narrate"
)

func TestSpellSymbols(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"a;", "a semicolon "},
		{"x=1", "x equals 1"},
		{"a<b", "a less than b"},
		{"a->b", "a minus  greater than b"},
		{"[]", " opening bracket  closing bracket "},
		{"no symbols", "no symbols"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, narrate.SpellSymbols(tc.in), tc.in)
	}
}

func TestLines(t *testing.T) {
	t.Parallel()

	got := narrate.Lines("a;\n\n   \nb")

	assert.Equal(t, []string{
		"Line 1: a semicolon ",
		"Line 2: Empty line",
		"Line 3: Empty line",
		"Line 4: b",
	}, got)
}

func TestTranscript(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Line 1: x equals 1. Line 2: Empty line", narrate.Transcript("x=1\n"))
	assert.Equal(t, "Line 1: Empty line", narrate.Transcript(""))
}

func TestCursor_Navigation(t *testing.T) {
	t.Parallel()

	c := narrate.NewCursor("first\n\nthird")
	require.Equal(t, 3, c.Len())

	assert.Equal(t, "Line 1: first", c.Current())
	assert.Equal(t, narrate.BeginningOfCode, c.Previous())
	assert.Equal(t, 1, c.Line())

	assert.Equal(t, "Line 2: Empty line", c.Next())
	assert.Equal(t, "Line 3: third", c.Next())
	assert.Equal(t, narrate.EndOfCode, c.Next())
	assert.Equal(t, 3, c.Line())

	assert.Equal(t, "Line 2: Empty line", c.Previous())
}

func TestCursor_ReadsRawLine(t *testing.T) {
	t.Parallel()

	c := narrate.NewCursor("  if (x) {")
	assert.Equal(t, "Line 1:   if (x) {", c.Current())
}

func TestCursor_Seek(t *testing.T) {
	t.Parallel()

	c := narrate.NewCursor("a\nb\nc")

	require.NoError(t, c.Seek(3))
	assert.Equal(t, "Line 3: c", c.Current())

	require.ErrorIs(t, c.Seek(0), narrate.ErrLineOutOfRange)
	require.ErrorIs(t, c.Seek(4), narrate.ErrLineOutOfRange)
	assert.Equal(t, 3, c.Line())
}
