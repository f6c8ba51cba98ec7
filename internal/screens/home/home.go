package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/screens/builder"
	"github.com/abhisek/critree/internal/screens/history"
	"github.com/abhisek/critree/internal/screens/importtree"
	"github.com/abhisek/critree/internal/screens/placeholder"
	"github.com/abhisek/critree/internal/session"
	"github.com/abhisek/critree/internal/ui/components"
	"github.com/abhisek/critree/internal/ui/layout"
)

type homeStatus struct {
	provider string
	format   string
	needsKey bool
	lastRun  string
}

type lastRunMsg struct {
	summary string
}

// HomeScreen is the main menu.
type HomeScreen struct {
	sess   *session.Session
	menu   components.Menu
	status homeStatus
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen.
func New(sess *session.Session) *HomeScreen {
	items := []components.MenuItem{
		{Label: "NEW DIAGNOSIS", Action: func() tea.Cmd {
			return push(builder.New(sess))
		}},
		{Label: "IMPORT TREE", Action: func() tea.Cmd {
			return push(importtree.New(sess, ""))
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			if sess.Events() == nil {
				return push(placeholder.New("History", "No database is open, so past runs are not available."))
			}
			return push(history.New(sess.Events()))
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		sess: sess,
		menu: components.NewMenu(items),
		status: homeStatus{
			provider: sess.Status(),
			format:   string(sess.Format()),
		},
	}
}

func push(s screen.Screen) tea.Cmd {
	return router.Go(s)
}

func (h *HomeScreen) Init() tea.Cmd {
	events := h.sess.Events()
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		runs, err := events.QueryDiagnosisRuns(context.Background(), 1)
		if err != nil || len(runs) == 0 {
			return lastRunMsg{}
		}
		r := runs[0]
		return lastRunMsg{summary: fmt.Sprintf("%s · %s (%d/%d)",
			r.Timestamp.Local().Format("Jan 02 15:04"), r.Goal, r.Completed, r.Targets)}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(lastRunMsg); ok {
		h.status.lastRun = m.summary
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height excludes the app header and footer; add them back to judge
	// the terminal size
	compact := layout.IsCompactHeight(height+8) || layout.IsCompactWidth(width)
	w := sectionWidth(width)

	// re-read so a key typed on the credential screen shows up
	h.status.needsKey = h.sess.NeedsCredential()

	sections := []string{titleSection(w, compact), statusSection(h.status, w)}
	if h.status.needsKey {
		sections = append(sections, keyNotice(llm.KeyEnvVar(h.sess.Provider()), w))
	}
	menu := h.menu.ButtonView(buttonWidth)
	if compact {
		menu = h.menu.View()
	}
	sections = append(sections, center(w).Render(menu))
	return framed(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
