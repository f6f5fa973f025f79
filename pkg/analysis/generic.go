package analysis

import (
	"fmt"
	"strings"
)

// genericRules counts lines only. Only "//" marks a comment and no structure
// or diagnostics are recorded.
var genericRules = lineRules{
	comment: func(trimmed string) (string, bool) {
		return "", strings.HasPrefix(trimmed, "//")
	},
	structure: func(*accumulator, string, int) {},
}

// analyzeGeneric handles any language without a pattern table. The declared
// language name is quoted verbatim in the readable explanation.
func analyzeGeneric(code, language string) *Result {
	acc := scan(code, genericRules)

	// Comment text is not extracted for unknown languages.
	acc.structure.Comments = []Comment{}
	acc.summary.Complexity = ComplexityLow

	return &Result{
		Explanation: fmt.Sprintf("This code file contains %d total lines.", acc.summary.TotalLines),
		Structure:   acc.structure,
		Summary:     acc.summary,
		ReadableExplanation: fmt.Sprintf("This appears to be %s code with %d lines of code and %d comment lines.",
			language, acc.summary.CodeLines, acc.summary.CommentLines),
		Errors: []Diagnostic{},
	}
}
