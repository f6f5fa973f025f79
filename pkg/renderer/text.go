package renderer

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/narrate"
)

// Text layout constants.
const (
	IndentWidth       = 2
	defaultTitle      = "CODE ANALYSIS"
	checkTitle        = "ERROR CHECK"
	narrationTitle    = "NARRATION"
	structureLabel    = "Structure"
	linesLabel        = "Lines"
	diagnosticsLabel  = "Findings"
	explanationLabel  = "In plain words"
	noFindingsMessage = "No findings"
)

var indent = strings.Repeat(" ", IndentWidth)

func complexityColor(c analysis.Complexity) color.Attribute {
	switch c {
	case analysis.ComplexityLow:
		return color.FgGreen
	case analysis.ComplexityMedium:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func kindColor(kind analysis.DiagnosticKind) color.Attribute {
	if kind == analysis.DiagnosticSyntax {
		return color.FgRed
	}

	return color.FgYellow
}

func (r *Renderer) header(title, right string) string {
	if title == "" {
		title = defaultTitle
	}

	return DrawHeader(r.config.Colorize(title, color.FgBlue, color.Bold), right, r.config.Width)
}

func (r *Renderer) label(s string) string {
	return indent + r.config.Colorize(s, color.FgHiBlack) + "\n" +
		indent + DrawSeparator(r.config.Width-IndentWidth*2)
}

// newTable returns a borderless go-pretty table indented like the rest of
// the text output.
func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateHeader = true
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Box.PaddingLeft = ""
	tbl.Style().Box.PaddingRight = "  "

	return tbl
}

func indentBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) analysisText(res *analysis.Result) string {
	sum := res.Summary
	right := "complexity: " + r.config.Colorize(string(sum.Complexity), complexityColor(sum.Complexity))

	parts := []string{
		r.header(r.title, right),
		"",
		indentBlock(res.Explanation),
		"",
		r.label(linesLabel),
		indentBlock(r.linesTable(sum)),
		"",
		r.label(structureLabel),
		indentBlock(r.structureTable(res.Structure)),
		"",
		r.label(diagnosticsLabel),
		r.diagnosticsText(res.Errors),
	}

	if r.verbose && res.ReadableExplanation != res.Explanation {
		parts = append(parts, "", r.label(explanationLabel), indentBlock(res.ReadableExplanation))
	}

	return strings.Join(parts, "\n") + "\n"
}

func (r *Renderer) linesTable(sum analysis.Summary) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Total", "Code", "Comments", "Blank"})
	tbl.AppendRow(table.Row{sum.TotalLines, sum.CodeLines, sum.CommentLines, sum.BlankLines})

	return tbl.Render()
}

func (r *Renderer) structureTable(st analysis.Structure) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Line", "Element", "Name", "Kind"})

	rows := make([]structureRow, 0)

	for _, fn := range st.Functions {
		rows = append(rows, structureRow{fn.Line, "function", fn.Name, fn.Kind})
	}

	for _, v := range st.Variables {
		rows = append(rows, structureRow{v.Line, "variable", v.Name, v.Kind})
	}

	for _, loop := range st.Loops {
		rows = append(rows, structureRow{loop.Line, "loop", "", loop.Kind})
	}

	for _, cond := range st.Conditionals {
		rows = append(rows, structureRow{cond.Line, "conditional", "", cond.Kind})
	}

	for _, imp := range st.Imports {
		rows = append(rows, structureRow{imp.Line, "import", imp.Module, ""})
	}

	if r.verbose {
		for _, c := range st.Comments {
			rows = append(rows, structureRow{c.Line, "comment", c.Text, ""})
		}
	}

	slices.SortStableFunc(rows, func(a, b structureRow) int { return cmp.Compare(a.line, b.line) })

	for _, row := range rows {
		tbl.AppendRow(table.Row{row.line, row.element, row.name, row.kind})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d elements", len(rows))})

	return tbl.Render()
}

type structureRow struct {
	line    int
	element string
	name    string
	kind    string
}


func (r *Renderer) diagnosticsText(diags []analysis.Diagnostic) string {
	if len(diags) == 0 {
		return indent + r.config.Colorize(noFindingsMessage, color.FgGreen)
	}

	lines := make([]string, len(diags))
	for i, d := range diags {
		kind := r.config.Colorize(fmt.Sprintf("%-6s", d.Kind), kindColor(d.Kind))
		lines[i] = fmt.Sprintf("%sL%-4d %s %s", indent, d.Line, kind, d.Message)
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) checkText(res analysis.CheckResult) string {
	status := r.config.Colorize("clean", color.FgGreen)
	if res.HasErrors {
		status = r.config.Colorize(strconv.Itoa(len(res.Errors))+" found", color.FgRed)
	}

	title := checkTitle
	if r.title != "" {
		title = r.title
	}

	parts := []string{
		r.header(title, status),
		"",
		r.diagnosticsText(res.Errors),
		"",
		indentBlock(res.Summary),
	}

	return strings.Join(parts, "\n") + "\n"
}

func (r *Renderer) narrationText(n engine.Narration) string {
	if len(n.Changes) == 0 {
		return n.Text + "\n"
	}

	lines := []string{r.header(narrationTitle, fmt.Sprintf("%d changes", len(n.Changes))), ""}

	for _, change := range n.Changes {
		mark, attr := "+", color.FgGreen
		if change.Kind == narrate.ChangeRemoved {
			mark, attr = "-", color.FgRed
		}

		lines = append(lines, indent+r.config.Colorize(fmt.Sprintf("%s %4d  %s", mark, change.Line, change.Text), attr))
	}

	lines = append(lines, "", indentBlock(n.Text))

	return strings.Join(lines, "\n") + "\n"
}
