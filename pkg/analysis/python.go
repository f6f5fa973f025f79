package analysis

import (
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/codescribe/pkg/textutil"
)

var (
	pyFunctionPattern    = regexp.MustCompile(`def\s+(\w+)\s*\(`)
	pyVariablePattern    = regexp.MustCompile(`^(\w+)\s*=`)
	pyLoopPattern        = regexp.MustCompile(`^(?:for|while)\s+`)
	pyConditionalPattern = regexp.MustCompile(`^(?:if|elif|else)(?:\s|:)`)
	pyImportPattern      = regexp.MustCompile(`^(?:from\s+(\S+)\s+import|import\s+(\S+))`)
)

// pyIndentUnit is the indentation width every indented line must be a multiple of.
const pyIndentUnit = 4

const msgInconsistentIndent = "Inconsistent indentation (should be multiples of 4 spaces)"

var pyRules = lineRules{
	comment:   pyComment,
	structure: pyStructure,
	diagnose:  pyDiagnose,
}

func analyzePython(code, _ string) *Result {
	acc := scan(code, pyRules)
	explanation := explainPython(acc)

	return &Result{
		Explanation:         explanation,
		Structure:           acc.structure,
		Summary:             acc.summary,
		ReadableExplanation: explanation,
		Errors:              acc.errors,
	}
}

func pyComment(trimmed string) (string, bool) {
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}

	return textutil.Trim(strings.TrimPrefix(trimmed, "#")), true
}

func pyStructure(acc *accumulator, trimmed string, line int) {
	st := &acc.structure

	fnMatch := pyFunctionPattern.FindStringSubmatch(trimmed)
	if fnMatch != nil {
		st.Functions = append(st.Functions, Declaration{Name: fnMatch[1], Line: line, Kind: KindFunction})
	}

	// "x == y" at the start of a line also reads as an assignment here; the
	// pattern is deliberately that loose.
	if fnMatch == nil {
		if varMatch := pyVariablePattern.FindStringSubmatch(trimmed); varMatch != nil {
			st.Variables = append(st.Variables, Declaration{Name: varMatch[1], Line: line, Kind: KindVariable})
		}
	}

	if pyLoopPattern.MatchString(trimmed) {
		kind := LoopWhile
		if strings.HasPrefix(trimmed, "for") {
			kind = LoopFor
		}

		st.Loops = append(st.Loops, ControlFlow{Kind: kind, Line: line})
	}

	if pyConditionalPattern.MatchString(trimmed) {
		st.Conditionals = append(st.Conditionals, ControlFlow{Kind: pyConditionalKind(trimmed), Line: line})
	}

	if importMatch := pyImportPattern.FindStringSubmatch(trimmed); importMatch != nil {
		st.Imports = append(st.Imports, Import{Module: firstNonEmpty(importMatch[1:]), Line: line})
	}
}

func pyConditionalKind(trimmed string) string {
	switch {
	case strings.HasPrefix(trimmed, "elif"):
		return CondElif
	case strings.HasPrefix(trimmed, "else"):
		return CondElse
	default:
		return CondIf
	}
}

func pyDiagnose(acc *accumulator, raw, _ string, line int) {
	width := textutil.LeadingWhitespaceWidth(raw)
	if width == 0 {
		return
	}

	rest := strings.TrimLeftFunc(raw, textutil.IsSpace)
	if rest == "" || strings.HasPrefix(rest, "#") {
		return
	}

	if width%pyIndentUnit != 0 {
		acc.addDiagnostic(line, msgInconsistentIndent, DiagnosticStyle)
	}
}
