package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/wrldbldr/pkg/tiles"
)

// stdout receives all status output. Machine-readable results go to the
// command's own writer instead.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
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

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

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

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
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

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, "  "+StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// =============================================================================
// Match & Server Output
// =============================================================================

var styleField = lipgloss.NewStyle().Foreground(colorGray).Width(10)

func printField(label, value string) {
	fmt.Fprintln(stdout, styleField.Render(label)+" "+StyleValue.Render(value))
}

// printMatch prints the tile a mask resolves to and the slots it needs.
func printMatch(mask int, m tiles.Match) {
	printField("mask", fmt.Sprintf("%0*b", tiles.BitWidth, mask))
	printField("tile", StyleHighlight.Render(m.Tile.Name)+StyleDim.Render(fmt.Sprintf(" #%d", m.Index)))
	printField("visual", m.Tile.VisualHandle())
	printField("rotation", fmt.Sprintf("%d (%g°)", m.Rotation, m.Degrees))
	printField("requires", slotList(m.Slots()))
}

// printListening prints the address the API server accepts requests on.
func printListening(addr string) {
	printField("listening", StyleLink.Render("http://"+displayAddr(addr)))
	printField("stream", StyleDim.Render("ws://"+displayAddr(addr)+"/v1/stream"))
}

// =============================================================================
// Stats Display
// =============================================================================

// printWorldStats prints world statistics on a single line.
func printWorldStats(sections, regions int, cached bool) {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d sections", sections))
	if regions > 0 {
		parts = append(parts, fmt.Sprintf("%d regions", regions))
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Fprintln(stdout, line)
}

// swatch renders a small block in a region's display color. Alpha channels
// are dropped since terminals cannot blend.
func swatch(hex string) string {
	switch len(hex) {
	case 9: // #RRGGBBAA
		hex = hex[:7]
	case 5: // #RGBA
		hex = hex[:4]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
}

// =============================================================================
// Next Steps
// =============================================================================

// printRenderHint suggests the command that renders the same world as SVG.
func printRenderHint(seed uint64) {
	cmd := fmt.Sprintf("%s generate --seed %d -f svg", appName, seed)
	fmt.Fprintln(stdout, StyleDim.Render("Render a diagram:")+" "+styleCommand.Render(cmd))
}
