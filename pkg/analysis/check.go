package analysis

import (
	"fmt"
	"strings"
)

const noErrorsSummary = "No obvious syntax errors detected in the code."

// CheckResult is the error-focused view of an analysis.
type CheckResult struct {
	Errors    []Diagnostic `json:"errors"    yaml:"errors"`
	HasErrors bool         `json:"hasErrors" yaml:"hasErrors"`
	Summary   string       `json:"summary"   yaml:"summary"`
}

// Check reduces a result to its diagnostics and a one-sentence summary.
func Check(result *Result) CheckResult {
	diags := []Diagnostic{}
	if result != nil {
		diags = append(diags, result.Errors...)
	}

	if len(diags) == 0 {
		return CheckResult{Errors: diags, Summary: noErrorsSummary}
	}

	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = fmt.Sprintf("Line %d: %s", d.Line, d.Message)
	}

	return CheckResult{
		Errors:    diags,
		HasErrors: true,
		Summary: fmt.Sprintf("Found %s: %s",
			countOf(len(diags), "potential error"), strings.Join(parts, ", ")),
	}
}
