package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/depdiscover/depviz/pkg/scan"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// statusStyles colors the per-status counts in report output.
var statusStyles = map[scan.Status]lipgloss.Style{
	scan.StatusUnknown: lipgloss.NewStyle().Foreground(colorGray),
	scan.StatusSafe:    lipgloss.NewStyle().Foreground(colorGreen),
	scan.StatusWarning: lipgloss.NewStyle().Foreground(colorYellow),
	scan.StatusDanger:  lipgloss.NewStyle().Foreground(colorRed),
}

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

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
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + styleWarning.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

// printDetail prints an indented detail line.
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + styleDim.Render(msg))
}

// printStats prints build statistics on a single line.
func printStats(retained, skipped int, cached bool) {
	parts := []string{fmt.Sprintf("%d nodes", retained)}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d system libs skipped", skipped))
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += styleDim.Render(" · ")
		}
		line += styleDim.Render(part)
	}
	fmt.Println(line)
}

// printStatusCount prints one status line of the report summary.
func printStatusCount(status scan.Status, count int) {
	label := statusStyles[status].Render(fmt.Sprintf("%-8s", status.String()))
	fmt.Printf("  %s %s\n", label, styleValue.Render(fmt.Sprintf("%d", count)))
}
