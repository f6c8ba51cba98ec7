// Package placeholder fills in for a feature that is unavailable in this
// session, such as history when no database could be opened.
package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/ui/theme"
)

type PlaceholderScreen struct {
	title, message string
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

func New(title, message string) *PlaceholderScreen {
	return &PlaceholderScreen{title: title, message: message}
}

func (p *PlaceholderScreen) Title() string                          { return p.title }
func (p *PlaceholderScreen) Init() tea.Cmd                          { return nil }
func (p *PlaceholderScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return p, nil }

func (p *PlaceholderScreen) View(width, height int) string {
	card := theme.Card.Render(
		lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render(p.title) + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Text).Render(p.message) + "\n\n" +
			theme.Hint.Render("esc to go back"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
