// Package layout draws the frame shared by every screen: a header bar, the
// screen body and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/ui/theme"
)

const (
	MinWidth  = 72
	MinHeight = 20

	compactWidth  = 100
	compactHeight = 30

	// bar chrome: rounded border plus one column of padding per side
	barChrome = 4
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool   { return width < compactWidth }
func IsCompactHeight(height int) bool { return height < compactHeight }

// IsTooSmall reports whether the terminal cannot fit the frame at all.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to resize, centred in the window.
func RenderMinSizeMessage(width, height int) string {
	body := fmt.Sprintf("critree needs at least %dx%d\n(current %dx%d)",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Warning).Render(body))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader shows the app name and screen title on the left and status
// (provider/model) flush right.
func RenderHeader(title, status string, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("critree") +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(" / ") +
		lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(status)

	gap := width - barChrome - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return bar(width).Render(left + strings.Repeat(" ", gap) + right)
}

// RenderFooter lays the key hints out on one line.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var sb strings.Builder
	for i, h := range hints {
		if i > 0 {
			sb.WriteString("  ·  ")
		}
		sb.WriteString(keyStyle.Render(h.Key))
		sb.WriteByte(' ')
		sb.WriteString(descStyle.Render(h.Description))
	}
	return bar(width).Render(sb.String())
}

// RenderFrame stacks header, body and footer, giving the body whatever
// height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(bodyHeight).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
