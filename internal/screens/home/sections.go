package home

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/screens/welcome"
	"github.com/abhisek/critree/internal/ui/theme"
)

const (
	maxSectionWidth = 64
	buttonWidth     = 22
)

// sectionWidth is the shared width of every home section inside the frame.
func sectionWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), maxSectionWidth)
}

func center(w int) lipgloss.Style {
	return lipgloss.NewStyle().Width(w).Align(lipgloss.Center)
}

func titleSection(w int, compact bool) string {
	if compact {
		return center(w).Foreground(theme.Primary).Bold(true).Render("C · R · I · T · R · E · E")
	}
	return center(w).Render(welcome.RenderBanner(w))
}

// statusSection summarises how the next diagnosis would run.
func statusSection(st homeStatus, w int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	bold := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	pair := func(k, v string) string { return dim.Render(k+" ") + bold.Render(v) }

	key := lipgloss.NewStyle().Foreground(theme.Success).Render("key ✓")
	if st.needsKey {
		key = lipgloss.NewStyle().Foreground(theme.Warning).Render("key needed")
	}
	rows := []string{strings.Join([]string{pair("provider", st.provider), pair("format", st.format), key}, "   ")}
	if st.lastRun != "" {
		rows = append(rows, dim.Render("last run ")+st.lastRun)
	}
	return theme.Card.
		BorderForeground(theme.Secondary).
		Width(w - 2).
		Align(lipgloss.Center).
		Render(strings.Join(rows, "\n"))
}

func keyNotice(envVar string, w int) string {
	return center(w).Foreground(theme.Accent).
		Render("⚠ No API key in the secret store. Set " + envVar + " or type one when you run a diagnosis.")
}

// framed draws the double border around the whole home screen.
func framed(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
