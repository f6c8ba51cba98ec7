// Package app is the root Bubble Tea model: it owns the screen router,
// global keys and the header/footer frame.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/screens/home"
	"github.com/abhisek/critree/internal/screens/importtree"
	"github.com/abhisek/critree/internal/screens/welcome"
	"github.com/abhisek/critree/internal/session"
	"github.com/abhisek/critree/internal/ui/layout"
)

type Options struct {
	Session *session.Session

	// InitialPath opens the import screen on that file instead of the
	// welcome animation.
	InitialPath string
}

type AppModel struct {
	router        *router.Router
	sess          *session.Session
	width, height int
}

func newAppModel(opts Options) AppModel {
	sess := opts.Session
	if sess == nil {
		sess = session.New(session.Options{})
	}
	first := screen.Screen(welcome.New(func() screen.Screen { return home.New(sess) }))
	if opts.InitialPath != "" {
		first = importtree.New(sess, opts.InitialPath)
	}
	return AppModel{router: router.New(first), sess: sess}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			// a running pass finishes before the user can leave it
			if m.router.Busy() || m.router.Depth() == 1 {
				return m, nil
			}
			return m, router.Back()
		}
	}
	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	switch {
	case m.width == 0 || m.height == 0:
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	default:
		v.SetContent(m.frame())
	}
	return v
}

func (m AppModel) frame() string {
	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.sess.Status(), m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)
	body := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return layout.RenderFrame(header, m.router.View(m.width, body), footer, m.width, m.height)
}

// hints prefers the screen's own hints, then falls back by stack position.
func (m AppModel) hints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if h := p.KeyHints(); len(h) > 0 {
			return h
		}
	}
	quit := layout.KeyHint{Key: "Ctrl+C", Description: "Quit"}
	switch {
	case m.router.Busy():
		return []layout.KeyHint{quit}
	case m.router.Depth() > 1:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}, quit}
	default:
		return []layout.KeyHint{{Key: "↑↓", Description: "Navigate"}, {Key: "Enter", Description: "Select"}, quit}
	}
}

// Run blocks until the user quits.
func Run(opts Options) error {
	if _, err := tea.NewProgram(newAppModel(opts)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
