// Package analysis implements the structural code analyzer: a line-scanning,
// pattern-based extractor of declarations, control flow, comments and imports,
// with line accounting, a coarse complexity tier, heuristic diagnostics and a
// generated plain-language explanation.
//
// The extraction is heuristic. Every pattern is a single-line regular
// expression; nothing here builds a syntax tree or resolves scopes, and the
// diagnostics are advisory findings rather than compiler errors.
package analysis

// Complexity is the coarse complexity tier of an analyzed submission.
type Complexity string

// Complexity tiers.
const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Declaration kinds.
const (
	KindRegular  = "regular"
	KindArrow    = "arrow"
	KindConst    = "const"
	KindLet      = "let"
	KindVar      = "var"
	KindFunction = "function"
	KindVariable = "variable"
)

// Control flow subtypes.
const (
	LoopFor     = "for"
	LoopWhile   = "while"
	LoopDoWhile = "do-while"

	CondIf     = "if"
	CondElseIf = "else-if"
	CondElif   = "elif"
	CondElse   = "else"
	CondSwitch = "switch"
)

// DiagnosticKind classifies a heuristic finding.
type DiagnosticKind string

// Diagnostic kinds.
const (
	DiagnosticSyntax DiagnosticKind = "syntax"
	DiagnosticStyle  DiagnosticKind = "style"
)

// Declaration is a function or variable declaration found on a single line.
type Declaration struct {
	Name string `json:"name" yaml:"name"`
	Line int    `json:"line" yaml:"line"`
	Kind string `json:"type" yaml:"type"`
}

// ControlFlow marks a loop or conditional keyword on a line.
type ControlFlow struct {
	Kind string `json:"type" yaml:"type"`
	Line int    `json:"line" yaml:"line"`
}

// Comment is a comment line with its marker syntax stripped.
type Comment struct {
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

// Import is a module path captured from an import or require statement.
type Import struct {
	Module string `json:"module" yaml:"module"`
	Line   int    `json:"line"   yaml:"line"`
}

// Diagnostic is an advisory finding about a single line.
type Diagnostic struct {
	Line    int            `json:"line"    yaml:"line"`
	Message string         `json:"message" yaml:"message"`
	Kind    DiagnosticKind `json:"type"    yaml:"type"`
}

// Structure groups the structural elements extracted from a submission.
type Structure struct {
	Functions    []Declaration `json:"functions"    yaml:"functions"`
	Variables    []Declaration `json:"variables"    yaml:"variables"`
	Loops        []ControlFlow `json:"loops"        yaml:"loops"`
	Conditionals []ControlFlow `json:"conditionals" yaml:"conditionals"`
	Comments     []Comment     `json:"comments"     yaml:"comments"`
	Imports      []Import      `json:"imports"      yaml:"imports"`
}

// Summary holds line accounting and the complexity tier.
// TotalLines always equals CodeLines + CommentLines + BlankLines.
type Summary struct {
	TotalLines   int        `json:"totalLines"   yaml:"totalLines"`
	CodeLines    int        `json:"codeLines"    yaml:"codeLines"`
	CommentLines int        `json:"commentLines" yaml:"commentLines"`
	BlankLines   int        `json:"blankLines"   yaml:"blankLines"`
	Complexity   Complexity `json:"complexity"   yaml:"complexity"`
}

// Result is the complete analysis of one submission. It owns every nested
// record; nothing in it is shared with other results.
type Result struct {
	Explanation         string       `json:"explanation"         yaml:"explanation"`
	Structure           Structure    `json:"structure"           yaml:"structure"`
	Summary             Summary      `json:"summary"             yaml:"summary"`
	ReadableExplanation string       `json:"readableExplanation" yaml:"readableExplanation"`
	Errors              []Diagnostic `json:"errors"              yaml:"errors"`
}

func newStructure() Structure {
	return Structure{
		Functions:    []Declaration{},
		Variables:    []Declaration{},
		Loops:        []ControlFlow{},
		Conditionals: []ControlFlow{},
		Comments:     []Comment{},
		Imports:      []Import{},
	}
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}

	out := *r
	out.Structure = Structure{
		Functions:    append([]Declaration{}, r.Structure.Functions...),
		Variables:    append([]Declaration{}, r.Structure.Variables...),
		Loops:        append([]ControlFlow{}, r.Structure.Loops...),
		Conditionals: append([]ControlFlow{}, r.Structure.Conditionals...),
		Comments:     append([]Comment{}, r.Structure.Comments...),
		Imports:      append([]Import{}, r.Structure.Imports...),
	}
	out.Errors = append([]Diagnostic{}, r.Errors...)

	return &out
}
