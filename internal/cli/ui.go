package cli

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/assignpack/pkg/theme"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleKey = lipgloss.NewStyle().Foreground(colorGray).Width(22)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printHeader prints a section heading.
func printHeader(format string, args ...any) {
	fmt.Println(StyleTitle.Render(fmt.Sprintf(format, args...)))
}

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Submission Summary
// =============================================================================

// printSubmission lists what a pack run produced. doc is empty when the
// document was copied rather than generated.
func printSubmission(folder, zip, doc string) {
	rows := [][2]string{{"folder", folder}, {"zip", zip}}
	if doc != "" {
		rows = append(rows, [2]string{"doc", doc})
	}
	for _, r := range rows {
		fmt.Printf("  %s %s %s\n", StyleDim.Render(iconArrow), StyleDim.Render(fmt.Sprintf("%-6s", r[0])), StyleValue.Render(r[1]))
	}
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints stage timings on a single line, ending with whether the
// screenshot came from the cache.
func printStats(capture, render, assemble time.Duration, cached bool) {
	parts := []string{
		"run " + capture.Round(time.Millisecond).String(),
		"render " + render.Round(time.Millisecond).String(),
		"doc " + assemble.Round(time.Millisecond).String(),
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	var line strings.Builder
	line.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			line.WriteString(StyleDim.Render(" · "))
		}
		line.WriteString(StyleDim.Render(part))
	}
	line.WriteString(StyleDim.Render(" · "))
	line.WriteString(statusStyle.Render(status))
	fmt.Println(line.String())
}

// =============================================================================
// Theme Swatches
// =============================================================================

// swatch renders sample text in a theme's own colours.
func swatch(t theme.Theme, text string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(theme.Hex(t.Background))).
		Foreground(lipgloss.Color(theme.Hex(t.Foreground))).
		Padding(0, 1).
		Render(text)
}

// printThemeRow prints a theme name, a swatch and its colours and font.
func printThemeRow(name string, t theme.Theme) {
	font := "bitmap"
	if len(t.Font) > 0 {
		font = fmt.Sprintf("%.0fpt font", t.FontSize)
	}
	fmt.Printf("  %-14s %s  %s\n", name, swatch(t, swatchSample),
		StyleDim.Render(colorPair(t.Background, t.Foreground)+" · "+font))
}

// colorPair formats a theme's colours as "#bg on #fg" text.
func colorPair(bg, fg color.RGBA) string {
	return theme.Hex(fg) + " on " + theme.Hex(bg)
}
