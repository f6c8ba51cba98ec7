// Package welcome is the splash screen: a criteria tree grows level by
// level, then the banner appears and any key moves on.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/ui/theme"
)

const (
	frameInterval  = 100 * time.Millisecond
	framesPerLevel = 5
)

const Tagline = "Is your criteria tree fit for decision?"

// treeLevels are drawn cumulatively: goal, criteria, sub-criteria.
var treeLevels = []string{
	`        ◆`,
	`   ┌────┼────┐
   ●    ●    ●`,
	`  ╱╲   │   ╱│╲
 ○  ○  ○  ○ ○ ○`,
}

type frameMsg struct{}

// WelcomeScreen animates until a key is pressed, then swaps itself for the
// screen built by next. It never moves on by itself.
type WelcomeScreen struct {
	next  func() screen.Screen
	frame int
	done  bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

// levels is how much of the tree is visible.
func (w *WelcomeScreen) levels() int {
	return min(w.frame/framesPerLevel+1, len(treeLevels))
}

// grown reports whether the whole tree is drawn and the banner is due.
func (w *WelcomeScreen) grown() bool {
	return w.frame >= framesPerLevel*(len(treeLevels)-1)
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.done {
			return w, nil
		}
		w.frame++
		return w, nextFrame()
	case tea.KeyPressMsg:
		if w.done {
			return w, nil
		}
		w.done = true
		return w, router.Swap(w.next())
	}
	return w, nil
}

func (w *WelcomeScreen) View(width, height int) string {
	goal := "◆"
	if w.frame%2 == 1 {
		goal = "◇"
	}
	art := strings.Join(treeLevels[:w.levels()], "\n")
	art = strings.Replace(art, "◆", lipgloss.NewStyle().Foreground(theme.Accent).Render(goal), 1)

	parts := []string{lipgloss.NewStyle().Foreground(theme.Primary).Render(art)}
	if w.grown() {
		parts = append(parts,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(Tagline),
			"",
			theme.Hint.Render("press any key to continue"),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(parts, "\n"))
}
