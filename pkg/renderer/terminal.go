// Package renderer formats analysis, check and narration results for the
// command line: colored text with box headers and tables, JSON, YAML, and an
// HTML chart report for analyses.
package renderer

import (
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Default width constants.
const (
	DefaultWidth = 80
	MinWidth     = 40
	MaxWidth     = 120
)

// Box drawing characters.
const (
	BoxHorizontal       = "─"
	BoxHeavyHorizontal  = "━"
	BoxHeavyVertical    = "┃"
	BoxHeavyTopLeft     = "┏"
	BoxHeavyTopRight    = "┓"
	BoxHeavyBottomLeft  = "┗"
	BoxHeavyBottomRight = "┛"
)

// HeaderPadding is the space around header content.
const HeaderPadding = 1

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig creates a Config from the environment. NO_COLOR disables color
// regardless of noColor.
func NewConfig(noColor bool) Config {
	return Config{
		Width:   DetectWidth(),
		NoColor: noColor || os.Getenv("NO_COLOR") != "",
	}
}

// DetectWidth returns the terminal width from the COLUMNS environment
// variable clamped to [MinWidth, MaxWidth], or DefaultWidth when unset or
// invalid.
func DetectWidth() int {
	width, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil || width <= 0 {
		return DefaultWidth
	}

	return min(max(width, MinWidth), MaxWidth)
}

// Colorize paints s with the given attributes unless color is disabled.
func (c Config) Colorize(s string, attrs ...color.Attribute) string {
	if c.NoColor || len(attrs) == 0 {
		return s
	}

	painter := color.New(attrs...)
	painter.EnableColor()

	return painter.Sprint(s)
}

// DrawSeparator draws a thin horizontal separator line.
func DrawSeparator(width int) string {
	if width <= 0 {
		return ""
	}

	return strings.Repeat(BoxHorizontal, width)
}

// DrawHeader draws a heavy-bordered header with title on the left and
// rightText on the right. Widths ignore ANSI escape sequences.
func DrawHeader(title, rightText string, width int) string {
	titleWidth := text.RuneWidthWithoutEscSequences(title)
	rightWidth := text.RuneWidthWithoutEscSequences(rightText)

	minRequired := titleWidth + rightWidth + 3 + HeaderPadding*2
	if width < minRequired {
		width = minRequired
	}

	innerWidth := width - 2
	contentWidth := innerWidth - HeaderPadding*2
	gap := max(contentWidth-titleWidth-rightWidth, 1)
	pad := strings.Repeat(" ", HeaderPadding)

	return BoxHeavyTopLeft + strings.Repeat(BoxHeavyHorizontal, innerWidth) + BoxHeavyTopRight + "\n" +
		BoxHeavyVertical + pad + title + strings.Repeat(" ", gap) + rightText + pad + BoxHeavyVertical + "\n" +
		BoxHeavyBottomLeft + strings.Repeat(BoxHeavyHorizontal, innerWidth) + BoxHeavyBottomRight
}
