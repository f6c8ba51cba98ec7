package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/store"
	"github.com/abhisek/critree/internal/ui/components"
	"github.com/abhisek/critree/internal/ui/layout"
	"github.com/abhisek/critree/internal/ui/theme"
)

type runLoadedMsg struct {
	Results []diagnosis.Result
	Err     error
}

// RunScreen shows the stored results of one run.
type RunScreen struct {
	eventRepo store.EventRepo
	run       store.DiagnosisRun
	results   []diagnosis.Result
	loaded    bool
	errMsg    string
	offset    int
}

var _ screen.Screen = (*RunScreen)(nil)
var _ screen.KeyHintProvider = (*RunScreen)(nil)

// NewRun creates a screen for run.
func NewRun(eventRepo store.EventRepo, run store.DiagnosisRun) *RunScreen {
	return &RunScreen{eventRepo: eventRepo, run: run}
}

func (s *RunScreen) Init() tea.Cmd {
	repo, runID := s.eventRepo, s.run.RunID
	return func() tea.Msg {
		events, err := repo.QueryDiagnoses(context.Background(), runID)
		if err != nil {
			return runLoadedMsg{Err: err}
		}
		results := make([]diagnosis.Result, len(events))
		for i, e := range events {
			results[i] = diagnosis.ResultFromEvent(e)
		}
		return runLoadedMsg{Results: results}
	}
}

func (s *RunScreen) Title() string {
	return "Run " + s.run.Timestamp.Local().Format("Jan 02 15:04")
}

func (s *RunScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RunScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case runLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.results = msg.Results
		s.loaded = true
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		}
	}
	return s, nil
}

func (s *RunScreen) View(width, height int) string {
	if s.errMsg != "" {
		return theme.Failure.Render("\n  Error: " + s.errMsg)
	}
	if !s.loaded {
		return theme.Hint.Render("\n  Loading run...")
	}

	cw := width - 6
	if cw > 100 {
		cw = 100
	}
	lines := []string{
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Goal: " + s.run.Goal),
		theme.Hint.Render(fmt.Sprintf("%s · %s · %d/%d nodes", s.run.Model, s.run.Format, len(s.results), s.run.Targets)),
		"",
	}
	if len(s.results) < s.run.Targets {
		lines = append(lines, theme.Notice.Render("This run did not finish."), "")
	}
	for _, r := range s.results {
		lines = append(lines, strings.Split(components.RenderResult(r, cw), "\n")...)
		lines = append(lines, "")
	}

	if maxOffset := len(lines) - height; s.offset > maxOffset {
		s.offset = max(maxOffset, 0)
	}
	end := min(s.offset+height, len(lines))
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines[s.offset:end], "\n"))
}
