package plot

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// frame describes the chrome around one chart of the report.
type frame struct {
	title    string
	subtitle string

	// trigger is the echarts tooltip trigger: "axis" for bars, "item" for pies.
	trigger string
	legend  bool

	// yName labels the value axis. Charts without axes leave axes false.
	axes  bool
	yName string
}

// globals turns f into go-echarts global options colored by cfg.
func (f frame) globals(cfg ThemeConfig) []charts.GlobalOpts {
	muted := &opts.TextStyle{Color: cfg.ChartTextMuted}

	out := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:           chartWidth,
			Height:          chartHeight,
			BackgroundColor: cfg.ChartBackground,
			Theme:           cfg.EChartsTheme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         f.title,
			Subtitle:      f.subtitle,
			Left:          "center",
			TitleStyle:    &opts.TextStyle{Color: cfg.ChartText},
			SubtitleStyle: muted,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: f.trigger}),
	}

	if f.legend {
		out = append(out, charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Top:       "bottom",
			Left:      "center",
			TextStyle: muted,
		}))
	}

	if f.axes {
		axisLine := &opts.AxisLine{LineStyle: &opts.LineStyle{Color: cfg.ChartAxis}}

		out = append(out,
			charts.WithXAxisOpts(opts.XAxis{
				AxisLabel: &opts.AxisLabel{Color: cfg.ChartText, Interval: "0"},
				AxisLine:  axisLine,
			}),
			charts.WithYAxisOpts(opts.YAxis{
				Name:      f.yName,
				AxisLabel: &opts.AxisLabel{Color: cfg.ChartText},
				SplitLine: &opts.SplitLine{
					Show:      opts.Bool(true),
					LineStyle: &opts.LineStyle{Color: cfg.ChartGrid},
				},
			}),
		)
	}

	return out
}
