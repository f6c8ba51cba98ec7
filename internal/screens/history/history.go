// Package history shows diagnosis runs recorded in the event store and lets
// the user reopen one.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/store"
	"github.com/abhisek/critree/internal/ui/components"
	"github.com/abhisek/critree/internal/ui/layout"
	"github.com/abhisek/critree/internal/ui/theme"
)

const (
	listLimit = 50
	goalWidth = 40
)

type runsLoadedMsg struct {
	runs []store.DiagnosisRun
	err  error
}

// HistoryScreen lists the most recent runs, newest first.
type HistoryScreen struct {
	repo   store.EventRepo
	runs   []store.DiagnosisRun
	menu   components.Menu
	loaded bool
	err    error
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

func New(repo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{repo: repo}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		runs, err := repo.QueryDiagnosisRuns(context.Background(), listLimit)
		return runsLoadedMsg{runs: runs, err: err}
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(runsLoadedMsg); ok {
		s.loaded, s.err, s.runs = true, msg.err, msg.runs
		s.menu = components.NewMenu(s.items())
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *HistoryScreen) items() []components.MenuItem {
	items := make([]components.MenuItem, len(s.runs))
	for i, run := range s.runs {
		items[i] = components.MenuItem{
			Label:  runLine(run),
			Action: func() tea.Cmd { return router.Go(NewRun(s.repo, run)) },
		}
	}
	return items
}

func runLine(run store.DiagnosisRun) string {
	goal := []rune(run.Goal)
	if len(goal) > goalWidth {
		goal = append(goal[:goalWidth-1], '…')
	}
	return fmt.Sprintf("%s  %-*s  %d/%d  %-9s %s",
		run.Timestamp.Local().Format("Jan 02 15:04"), goalWidth, string(goal),
		run.Completed, run.Targets, run.Format, gradeCounts(run.Grades))
}

func (s *HistoryScreen) View(width, height int) string {
	centered := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).PaddingTop(2)
	switch {
	case s.err != nil:
		return centered.Foreground(theme.Error).Render("Error: " + s.err.Error())
	case !s.loaded:
		return centered.Foreground(theme.TextDim).Render("Loading history…")
	case len(s.runs) == 0:
		return centered.Inherit(theme.Hint).Render("No diagnoses yet. Build a tree to get started!")
	}
	return lipgloss.NewStyle().PaddingTop(1).Render(
		lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))
}

// gradeCounts renders a run's tally as colored icons, worst grade first.
func gradeCounts(grades map[string]int) string {
	var parts []string
	for _, g := range []diagnosis.Grade{
		diagnosis.GradeDanger, diagnosis.GradeWarn, diagnosis.GradeGood,
		diagnosis.GradeUnknown, diagnosis.GradeError,
	} {
		if n := grades[string(g)]; n > 0 {
			parts = append(parts, lipgloss.NewStyle().Foreground(components.GradeColor(g)).
				Render(fmt.Sprintf("%s%d", components.GradeIcon(g), n)))
		}
	}
	return strings.Join(parts, " ")
}
