package analysis

import "github.com/Sumatoshi-tech/codescribe/pkg/textutil"

// Complexity tier upper bounds (inclusive) on the combined count of
// functions, loops and conditionals.
const (
	ComplexityLowMax    = 5
	ComplexityMediumMax = 15
)

// lineRules is the language-specific part of the line scan.
type lineRules struct {
	// comment reports whether the trimmed line is a comment and returns its
	// text with marker syntax stripped.
	comment func(trimmed string) (string, bool)

	// structure classifies a trimmed code line.
	structure func(acc *accumulator, trimmed string, line int)

	// diagnose runs line-level heuristics on a code line. raw is the line
	// as submitted, before trimming.
	diagnose func(acc *accumulator, raw, trimmed string, line int)
}

// accumulator collects everything produced by one scan. Each call to scan
// builds a fresh one.
type accumulator struct {
	structure Structure
	errors    []Diagnostic
	summary   Summary
}

func (acc *accumulator) addDiagnostic(line int, message string, kind DiagnosticKind) {
	acc.errors = append(acc.errors, Diagnostic{Line: line, Message: message, Kind: kind})
}

// scan walks the "\n"-delimited lines of code once. Blank lines and comment
// lines are counted and skipped; every other line is a code line and is
// handed to the structure and diagnose rules.
func scan(code string, rules lineRules) *accumulator {
	acc := &accumulator{
		structure: newStructure(),
		errors:    []Diagnostic{},
	}

	lines := textutil.SplitLines(code)
	acc.summary.TotalLines = len(lines)

	for idx, raw := range lines {
		lineNumber := idx + 1
		trimmed := textutil.Trim(raw)

		if trimmed == "" {
			acc.summary.BlankLines++

			continue
		}

		if text, ok := rules.comment(trimmed); ok {
			acc.summary.CommentLines++
			acc.structure.Comments = append(acc.structure.Comments, Comment{Line: lineNumber, Text: text})

			continue
		}

		acc.summary.CodeLines++

		rules.structure(acc, trimmed, lineNumber)

		if rules.diagnose != nil {
			rules.diagnose(acc, raw, trimmed, lineNumber)
		}
	}

	acc.summary.Complexity = ComplexityFor(acc.structure)

	return acc
}

// ComplexityScore is the number of functions, loops and conditionals.
func ComplexityScore(st Structure) int {
	return len(st.Functions) + len(st.Loops) + len(st.Conditionals)
}

// ComplexityFor maps the structure's complexity score onto a tier.
func ComplexityFor(st Structure) Complexity {
	return TierForScore(ComplexityScore(st))
}

// TierForScore maps a complexity score onto a tier.
func TierForScore(score int) Complexity {
	switch {
	case score <= ComplexityLowMax:
		return ComplexityLow
	case score <= ComplexityMediumMax:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}

// firstNonEmpty returns the first non-empty capture group of a submatch.
func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}

	return ""
}
