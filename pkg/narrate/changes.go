package narrate

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeKind says whether a line was added or removed.
type ChangeKind string

// Change kinds.
const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
)

// NoChanges is spoken when two versions have identical lines.
const NoChanges = "No changes detected."

// Change is one added or removed line. Line numbers of added lines refer to
// the new version, removed lines to the old one.
type Change struct {
	Kind ChangeKind `json:"kind" yaml:"kind"`
	Line int        `json:"line" yaml:"line"`
	Text string     `json:"text" yaml:"text"`
}

// Changes computes a line diff between two versions of code.
func Changes(before, after string) []Change {
	if before == after {
		return []Change{}
	}

	// A trailing newline makes the last line compare equal to the same text
	// followed by more lines.
	dmp := diffmatchpatch.New()
	src, dst, lineArray := dmp.DiffLinesToRunes(before+"\n", after+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lineArray)

	changes := []Change{}
	oldLine, newLine := 1, 1

	for _, d := range diffs {
		for _, text := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldLine++
				newLine++
			case diffmatchpatch.DiffInsert:
				changes = append(changes, Change{Kind: ChangeAdded, Line: newLine, Text: text})
				newLine++
			case diffmatchpatch.DiffDelete:
				changes = append(changes, Change{Kind: ChangeRemoved, Line: oldLine, Text: text})
				oldLine++
			}
		}
	}

	return changes
}

// DescribeChanges summarizes the edit from before to after as spoken text:
// a count sentence followed by one sentence per changed line.
func DescribeChanges(before, after string) string {
	changes := Changes(before, after)
	if len(changes) == 0 {
		return NoChanges
	}

	var added, removed int

	for _, c := range changes {
		if c.Kind == ChangeAdded {
			added++
		} else {
			removed++
		}
	}

	parts := make([]string, 0, len(changes)+1)
	parts = append(parts, fmt.Sprintf("%s added and %s removed", lineCount(added), lineCount(removed)))

	for _, c := range changes {
		if strings.TrimSpace(c.Text) == "" {
			parts = append(parts, fmt.Sprintf("Line %d %s: Empty line", c.Line, c.Kind))

			continue
		}

		parts = append(parts, fmt.Sprintf("Line %d %s: %s", c.Line, c.Kind, SpellSymbols(c.Text)))
	}

	return strings.Join(parts, transcriptSeparator) + "."
}

func lineCount(n int) string {
	if n == 1 {
		return "1 line"
	}

	return fmt.Sprintf("%d lines", n)
}
