// Package narrate turns source text into the sentences a screen reader or
// speech engine reads aloud: whole-file transcripts with punctuation spelled
// out, line-by-line navigation, and spoken summaries of edits.
package narrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/codescribe/pkg/textutil"
)

// Spoken messages at the navigation boundaries.
const (
	EndOfCode       = "End of code reached."
	BeginningOfCode = "Already at the beginning of the code."
)

// ErrLineOutOfRange is returned when seeking to a line that does not exist.
var ErrLineOutOfRange = errors.New("line out of range")

const transcriptSeparator = ". "

// symbolWords spells out punctuation. Each word is padded so adjacent
// symbols stay separate when spoken.
var symbolWords = strings.NewReplacer(
	"{", " opening brace ",
	"}", " closing brace ",
	"[", " opening bracket ",
	"]", " closing bracket ",
	"(", " opening parenthesis ",
	")", " closing parenthesis ",
	";", " semicolon ",
	":", " colon ",
	",", " comma ",
	".", " dot ",
	"=", " equals ",
	"+", " plus ",
	"-", " minus ",
	"*", " asterisk ",
	"/", " slash ",
	"<", " less than ",
	">", " greater than ",
)

// SpellSymbols replaces punctuation in s with spoken words.
func SpellSymbols(s string) string {
	return symbolWords.Replace(s)
}

func emptyLine(number int) string {
	return fmt.Sprintf("Line %d: Empty line", number)
}

// Lines returns one spoken sentence per line of code, with symbols spelled out.
func Lines(code string) []string {
	lines := textutil.SplitLines(code)
	out := make([]string, len(lines))

	for i, line := range lines {
		if textutil.IsBlank(line) {
			out[i] = emptyLine(i + 1)

			continue
		}

		out[i] = fmt.Sprintf("Line %d: %s", i+1, SpellSymbols(line))
	}

	return out
}

// Transcript reads the whole of code as a single utterance.
func Transcript(code string) string {
	return strings.Join(Lines(code), transcriptSeparator)
}

// Cursor steps through code one line at a time. Lines are read verbatim,
// without spelling out symbols. The zero value is not usable; use NewCursor.
type Cursor struct {
	lines []string
	pos   int
}

// NewCursor positions a cursor on the first line of code.
func NewCursor(code string) *Cursor {
	return &Cursor{lines: textutil.SplitLines(code)}
}

// Len is the number of lines under the cursor.
func (c *Cursor) Len() int {
	return len(c.lines)
}

// Line is the 1-based number of the current line.
func (c *Cursor) Line() int {
	return c.pos + 1
}

// Current reads the line under the cursor.
func (c *Cursor) Current() string {
	line := c.lines[c.pos]
	if textutil.IsBlank(line) {
		return emptyLine(c.Line())
	}

	return fmt.Sprintf("Line %d: %s", c.Line(), line)
}

// Next advances and reads the new line, or reports the end of the code
// without moving.
func (c *Cursor) Next() string {
	if c.pos >= len(c.lines)-1 {
		return EndOfCode
	}

	c.pos++

	return c.Current()
}

// Previous steps back and reads the new line, or reports the beginning of
// the code without moving.
func (c *Cursor) Previous() string {
	if c.pos == 0 {
		return BeginningOfCode
	}

	c.pos--

	return c.Current()
}

// Seek moves the cursor to a 1-based line number.
func (c *Cursor) Seek(line int) error {
	if line < 1 || line > len(c.lines) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrLineOutOfRange, line, len(c.lines))
	}

	c.pos = line - 1

	return nil
}
