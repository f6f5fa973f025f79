package plot

// Theme represents a color theme for the report.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ThemeConfig holds the chart styling values of a theme.
type ThemeConfig struct {
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// Series colors, one per structural element.
	Palette []string

	// Diagnostic colors.
	Syntax string
	Style  string

	// ECharts theme name.
	EChartsTheme string
}

var darkTheme = ThemeConfig{
	ChartBackground: "#191918",
	ChartGrid:       "#2a2a28",
	ChartAxis:       "#3b3a37",
	ChartText:       "#eeeeec",
	ChartTextMuted:  "#a1a09a",
	Palette:         []string{"#ad7f58", "#3e9b4f", "#0090ff", "#ffc53d", "#8e4ec6", "#12a594"},
	Syntax:          "#e5484d",
	Style:           "#ffc53d",
	EChartsTheme:    "dark",
}

var lightTheme = ThemeConfig{
	ChartBackground: "#ffffff",
	ChartGrid:       "#e9e8e6",
	ChartAxis:       "#cfceca",
	ChartText:       "#21201c",
	ChartTextMuted:  "#63635e",
	Palette:         []string{"#a07553", "#2b9a66", "#0588f0", "#e2a336", "#8145b5", "#0d9b8a"},
	Syntax:          "#dc3e42",
	Style:           "#e2a336",
	EChartsTheme:    "",
}

// GetThemeConfig returns the configuration for a given theme. Unknown themes
// fall back to light.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

// ParseTheme maps a theme name onto a Theme, defaulting to light.
func ParseTheme(name string) Theme {
	if Theme(name) == ThemeDark {
		return ThemeDark
	}

	return ThemeLight
}
