package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Disabled items are shown dimmed and
// skipped by the cursor.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list navigated with up/down (or j/k) and activated with
// enter.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move steps the cursor in direction dir (+1 or -1) to the next enabled
// item. The cursor stays put when there is none.
func (m *Menu) move(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			break
		}
		if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	}
	return m, nil
}

func (m Menu) Labels() []string {
	out := make([]string, 0, len(m.Items))
	for _, it := range m.Items {
		out = append(out, it.Label)
	}
	return out
}

// View renders the menu as a plain list with a cursor marker.
func (m Menu) View() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var sb strings.Builder
	for i, it := range m.Items {
		switch {
		case i == m.Selected:
			sb.WriteString(theme.Selected.Render("  ▸ " + it.Label))
		case it.Disabled:
			sb.WriteString(dim.Render("    " + it.Label))
		default:
			sb.WriteString(theme.Unselected.Render("    " + it.Label))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ButtonView renders each item as a fixed-width button, stacked.
func (m Menu) ButtonView(width int) string {
	selected := theme.ButtonActive.
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary)

	rows := make([]string, len(m.Items))
	for i, it := range m.Items {
		style, label := theme.ButtonInactive, it.Label
		switch {
		case i == m.Selected:
			style, label = selected, "▸ "+label
		case it.Disabled:
			style = style.Foreground(theme.TextDim)
		}
		rows[i] = style.Width(width).Align(lipgloss.Center).Render(label)
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}
