// Package plot renders an analysis result as a self-contained HTML report
// built from go-echarts charts.
package plot

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
)

const (
	chartWidth  = "720px"
	chartHeight = "420px"
	pieRadius   = "60%"
)

// Series names.
const (
	SeriesStructure   = "Elements"
	SeriesLines       = "Lines"
	SeriesDiagnostics = "Findings"
)

// ErrNilResult is returned when no result is passed to the report builders.
var ErrNilResult = errors.New("analysis result is nil")

// Options configures the report.
type Options struct {
	// Title is the page title. Empty uses "codescribe report".
	Title string
	Theme Theme
}

// StructureChart counts each kind of structural element.
func StructureChart(res *analysis.Result, theme Theme) *charts.Bar {
	cfg := GetThemeConfig(theme)
	palette := cfg.Palette

	st := res.Structure
	labels := []string{"Functions", "Variables", "Loops", "Conditionals", "Comments", "Imports"}
	counts := []int{
		len(st.Functions), len(st.Variables), len(st.Loops),
		len(st.Conditionals), len(st.Comments), len(st.Imports),
	}

	data := make([]opts.BarData, len(counts))
	for i, n := range counts {
		data[i] = opts.BarData{
			Name:      labels[i],
			Value:     n,
			ItemStyle: &opts.ItemStyle{Color: palette[i%len(palette)]},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(frame{
		title:    "Structure",
		subtitle: fmt.Sprintf("complexity: %s", res.Summary.Complexity),
		trigger:  "axis",
		axes:     true,
		yName:    "Count",
	}.globals(cfg)...)
	bar.SetXAxis(labels)
	bar.AddSeries(SeriesStructure, data)

	return bar
}

// LinesChart splits the total line count into code, comment and blank lines.
func LinesChart(res *analysis.Result, theme Theme) *charts.Pie {
	cfg := GetThemeConfig(theme)

	sum := res.Summary
	data := []opts.PieData{
		{Name: "Code", Value: sum.CodeLines, ItemStyle: &opts.ItemStyle{Color: cfg.Palette[0]}},
		{Name: "Comments", Value: sum.CommentLines, ItemStyle: &opts.ItemStyle{Color: cfg.Palette[1]}},
		{Name: "Blank", Value: sum.BlankLines, ItemStyle: &opts.ItemStyle{Color: cfg.ChartAxis}},
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(frame{
		title:    "Lines",
		subtitle: fmt.Sprintf("%d total", sum.TotalLines),
		trigger:  "item",
		legend:   true,
	}.globals(cfg)...)
	pie.AddSeries(SeriesLines, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c} ({d}%)",
				Color:     cfg.ChartTextMuted,
			}),
			charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
		)

	return pie
}

// DiagnosticsChart plots the findings per line, stacked by kind. It returns
// nil when the result has no findings.
func DiagnosticsChart(res *analysis.Result, theme Theme) *charts.Bar {
	if len(res.Errors) == 0 {
		return nil
	}

	cfg := GetThemeConfig(theme)

	var lines []int

	perLine := map[int]map[analysis.DiagnosticKind]int{}

	for _, d := range res.Errors {
		if _, seen := perLine[d.Line]; !seen {
			perLine[d.Line] = map[analysis.DiagnosticKind]int{}
			lines = append(lines, d.Line)
		}

		perLine[d.Line][d.Kind]++
	}

	labels := make([]string, len(lines))
	syntax := make([]opts.BarData, len(lines))
	style := make([]opts.BarData, len(lines))

	for i, line := range lines {
		labels[i] = fmt.Sprintf("L%d", line)
		syntax[i] = opts.BarData{Value: perLine[line][analysis.DiagnosticSyntax]}
		style[i] = opts.BarData{Value: perLine[line][analysis.DiagnosticStyle]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(frame{
		title:    SeriesDiagnostics,
		subtitle: fmt.Sprintf("%d on %d lines", len(res.Errors), len(lines)),
		trigger:  "axis",
		legend:   true,
		axes:     true,
		yName:    "Count",
	}.globals(cfg)...)
	bar.SetXAxis(labels)
	bar.AddSeries(string(analysis.DiagnosticSyntax), syntax,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.Syntax}),
		charts.WithBarChartOpts(opts.BarChart{Stack: SeriesDiagnostics}),
	)
	bar.AddSeries(string(analysis.DiagnosticStyle), style,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.Style}),
		charts.WithBarChartOpts(opts.BarChart{Stack: SeriesDiagnostics}),
	)

	return bar
}

// NewReport assembles the report page for res.
func NewReport(res *analysis.Result, options Options) (*components.Page, error) {
	if res == nil {
		return nil, ErrNilResult
	}

	page := components.NewPage()
	page.PageTitle = options.Title

	if page.PageTitle == "" {
		page.PageTitle = "codescribe report"
	}

	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		StructureChart(res, options.Theme),
		LinesChart(res, options.Theme),
	)

	if diag := DiagnosticsChart(res, options.Theme); diag != nil {
		page.AddCharts(diag)
	}

	return page, nil
}

// Render writes the HTML report for res to w.
func Render(w io.Writer, res *analysis.Result, options Options) error {
	page, err := NewReport(res, options)
	if err != nil {
		return err
	}

	err = page.Render(w)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}
