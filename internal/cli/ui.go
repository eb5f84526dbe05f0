package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI 256 colors used across command output and the preview.
var (
	colorTeal   = lipgloss.Color("37")
	colorMint   = lipgloss.Color("114")
	colorAmber  = lipgloss.Color("214")
	colorRose   = lipgloss.Color("168")
	colorSky    = lipgloss.Color("117")
	colorBright = lipgloss.Color("231")
	colorMuted  = lipgloss.Color("244")
	colorFaint  = lipgloss.Color("239")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	StyleLink    = lipgloss.NewStyle().Foreground(colorSky).Underline(true)
	StyleDim     = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue   = lipgloss.NewStyle().Foreground(colorBright)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorTeal)
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleKey     = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorSky)
	styleHit     = lipgloss.NewStyle().Foreground(colorMint)
	styleMiss    = lipgloss.NewStyle().Foreground(colorMuted)

	listDimStyle = lipgloss.NewStyle().Foreground(colorFaint)
)

// status is a one-glyph line prefix.
type status struct {
	glyph string
	style lipgloss.Style
}

func (s status) String() string { return s.style.Render(s.glyph) }

var (
	statusOK   = status{"✓", lipgloss.NewStyle().Foreground(colorMint)}
	statusFail = status{"✗", lipgloss.NewStyle().Foreground(colorRose)}
	statusWarn = status{"!", lipgloss.NewStyle().Foreground(colorAmber)}
)

// uiOut receives human-readable status lines. Commands that stream an
// artifact to stdout skip these helpers entirely.
var uiOut io.Writer = os.Stdout

func say(st status, msg string) {
	fmt.Fprintln(uiOut, st.String()+" "+msg)
}

func printSuccess(format string, args ...any) {
	say(statusOK, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	say(statusFail, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	say(statusWarn, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints one written file.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints the cell and lead counts and whether they came from cache.
func printStats(cells, leads int, cached bool) {
	origin := styleMiss.Render("fresh")
	if cached {
		origin = styleHit.Render("cached")
	}
	parts := []string{
		StyleDim.Render(plural(cells, "cell")),
		StyleDim.Render(plural(leads, "lead")),
		origin,
	}
	fmt.Fprintln(uiOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func printNextStep(label, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(label+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(uiOut)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
