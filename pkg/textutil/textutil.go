// Package textutil provides text utilities shared by the analyzers and the
// narration layer: newline segmentation, whitespace measurement and binary
// detection for file inputs.
package textutil

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// SplitLines splits text into "\n"-delimited segments. The result always has
// at least one element: the empty string yields a single empty segment and a
// trailing newline yields a trailing empty segment.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// SegmentCount returns len(SplitLines(text)) without allocating.
func SegmentCount(text string) int {
	return strings.Count(text, "\n") + 1
}

// byteOrderMark is U+FEFF, left at the start of files saved by some editors.
const byteOrderMark = '\uFEFF'

// IsSpace reports whether r is whitespace for line classification. It is
// unicode.IsSpace with U+FEFF added and U+0085 removed.
func IsSpace(r rune) bool {
	switch r {
	case byteOrderMark:
		return true
	case '\u0085':
		return false
	default:
		return unicode.IsSpace(r)
	}
}

// Trim removes leading and trailing IsSpace runes from s.
func Trim(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// IsBlank reports whether s contains only whitespace.
func IsBlank(s string) bool {
	return Trim(s) == ""
}

// LeadingWhitespaceWidth returns the number of whitespace characters before
// the first non-whitespace character. Tabs count as one.
func LeadingWhitespaceWidth(s string) int {
	width := 0

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if !IsSpace(r) {
			break
		}

		width++
		s = s[size:]
	}

	return width
}
