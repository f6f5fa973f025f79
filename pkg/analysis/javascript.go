package analysis

import (
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/codescribe/pkg/textutil"
)

// JavaScript-family pattern table. All patterns are tested against the
// trimmed line except the bracket counts, which use the raw line.
var (
	jsFunctionPattern = regexp.MustCompile(
		`(?:function\s+(\w+)` +
			`|const\s+(\w+)\s*=\s*(?:\([^)]*\)\s*=>|function)` +
			`|let\s+(\w+)\s*=\s*(?:\([^)]*\)\s*=>|function)` +
			`|var\s+(\w+)\s*=\s*(?:\([^)]*\)\s*=>|function))`)

	// RE2 has no lookahead; "=" followed by a non-"=" or end of line stands
	// in for "= not followed by =".
	jsVariablePattern = regexp.MustCompile(`(?:const\s+(\w+)|let\s+(\w+)|var\s+(\w+))\s*=(?:[^=]|$)`)

	jsLoopPattern        = regexp.MustCompile(`\b(?:for|while|do\s*\{)\b`)
	jsConditionalPattern = regexp.MustCompile(`\b(?:if|else\s+if|else|switch)\b`)
	jsImportPattern      = regexp.MustCompile(`import\s+.*\s+from\s+['"]([^'"]+)['"]|require\(['"]([^'"]+)['"]\)`)
	jsCommentMarkers     = regexp.MustCompile(`^//|^/\*|\*/|^\*`)
	jsMissingSemicolon   = regexp.MustCompile(`^(?:const|let|var|return)\s+.*[^;{}\s]$`)
)

// Diagnostic messages for the JavaScript family.
const (
	msgMismatchedBraces   = "Mismatched curly braces"
	msgMismatchedParens   = "Mismatched parentheses"
	msgMismatchedBrackets = "Mismatched square brackets"
	msgMissingSemicolon   = "Missing semicolon"
)

var jsRules = lineRules{
	comment:   jsComment,
	structure: jsStructure,
	diagnose:  jsDiagnose,
}

func analyzeJavaScript(code, _ string) *Result {
	acc := scan(code, jsRules)
	explanation := explainJavaScript(acc)

	return &Result{
		Explanation:         explanation,
		Structure:           acc.structure,
		Summary:             acc.summary,
		ReadableExplanation: explanation,
		Errors:              acc.errors,
	}
}

func jsComment(trimmed string) (string, bool) {
	if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") && !strings.HasPrefix(trimmed, "*") {
		return "", false
	}

	return textutil.Trim(jsCommentMarkers.ReplaceAllString(trimmed, "")), true
}

func jsStructure(acc *accumulator, trimmed string, line int) {
	st := &acc.structure

	fnMatch := jsFunctionPattern.FindStringSubmatch(trimmed)
	if fnMatch != nil {
		kind := KindRegular
		if strings.Contains(trimmed, "=>") {
			kind = KindArrow
		}

		st.Functions = append(st.Functions, Declaration{Name: firstNonEmpty(fnMatch[1:]), Line: line, Kind: kind})
	}

	// A line recognized as a function declaration is never also a variable.
	if fnMatch == nil {
		if varMatch := jsVariablePattern.FindStringSubmatch(trimmed); varMatch != nil {
			st.Variables = append(st.Variables, Declaration{
				Name: firstNonEmpty(varMatch[1:4]),
				Line: line,
				Kind: jsVariableKind(varMatch),
			})
		}
	}

	if jsLoopPattern.MatchString(trimmed) {
		st.Loops = append(st.Loops, ControlFlow{Kind: jsLoopKind(trimmed), Line: line})
	}

	if jsConditionalPattern.MatchString(trimmed) {
		st.Conditionals = append(st.Conditionals, ControlFlow{Kind: jsConditionalKind(trimmed), Line: line})
	}

	if importMatch := jsImportPattern.FindStringSubmatch(trimmed); importMatch != nil {
		st.Imports = append(st.Imports, Import{Module: firstNonEmpty(importMatch[1:]), Line: line})
	}
}

func jsVariableKind(match []string) string {
	switch {
	case match[1] != "":
		return KindConst
	case match[2] != "":
		return KindLet
	default:
		return KindVar
	}
}

// jsLoopKind picks the subtype by plain substring precedence, so a while
// loop whose body mentions "for" is reported as a for loop.
func jsLoopKind(trimmed string) string {
	switch {
	case strings.Contains(trimmed, "for"):
		return LoopFor
	case strings.Contains(trimmed, "while"):
		return LoopWhile
	default:
		return LoopDoWhile
	}
}

func jsConditionalKind(trimmed string) string {
	switch {
	case strings.Contains(trimmed, "switch"):
		return CondSwitch
	case strings.Contains(trimmed, "else if"):
		return CondElseIf
	case strings.Contains(trimmed, "else"):
		return CondElse
	default:
		return CondIf
	}
}

// bracketPairs lists the bracket types checked per line, in report order.
var bracketPairs = []struct {
	open, close string
	message     string
}{
	{open: "{", close: "}", message: msgMismatchedBraces},
	{open: "(", close: ")", message: msgMismatchedParens},
	{open: "[", close: "]", message: msgMismatchedBrackets},
}

// jsDiagnose flags a bracket type only when the line has both opens and
// closes of it and their counts differ. A line that only opens or only
// closes is part of a multi-line construct and is left alone.
func jsDiagnose(acc *accumulator, raw, trimmed string, line int) {
	for _, pair := range bracketPairs {
		opens := strings.Count(raw, pair.open)
		closes := strings.Count(raw, pair.close)

		if opens != closes && opens > 0 && closes > 0 {
			acc.addDiagnostic(line, pair.message, DiagnosticSyntax)
		}
	}

	if jsMissingSemicolon.MatchString(trimmed) && !strings.Contains(trimmed, "//") {
		acc.addDiagnostic(line, msgMissingSemicolon, DiagnosticStyle)
	}
}
