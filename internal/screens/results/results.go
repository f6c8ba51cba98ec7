package results

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/session"
	"github.com/abhisek/critree/internal/tree"
	"github.com/abhisek/critree/internal/ui/components"
	"github.com/abhisek/critree/internal/ui/layout"
	"github.com/abhisek/critree/internal/ui/theme"
)

type passStartedMsg struct {
	pass *diagnosis.Pass
}

type passFailedMsg struct {
	err error
}

type nodeDiagnosedMsg struct {
	result diagnosis.Result
}

// ResultsScreen runs a diagnosis pass one node at a time and shows each
// result as it arrives. Navigation away is blocked until the pass ends.
type ResultsScreen struct {
	sess      *session.Session
	structure *tree.Structure
	targets   []tree.Target

	pass    *diagnosis.Pass
	results []diagnosis.Result
	running bool
	err     error

	offset  int
	spinner spinner.Model
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.Busy = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a results screen for structure. The pass starts in Init.
func New(sess *session.Session, structure *tree.Structure) *ResultsScreen {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	return &ResultsScreen{
		sess:      sess,
		structure: structure,
		targets:   structure.Targets(),
		running:   true,
		spinner:   sp,
	}
}

func (s *ResultsScreen) Title() string {
	return "Diagnosis"
}

func (s *ResultsScreen) Busy() bool {
	return s.running
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	if s.running {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "r", Description: "Run again"},
		{Key: "h", Description: "Home"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return tea.Batch(s.begin(), s.spinner.Tick)
}

func (s *ResultsScreen) begin() tea.Cmd {
	sess, st := s.sess, s.structure
	return func() tea.Msg {
		ctx := context.Background()
		svc, err := sess.Service(ctx)
		if err != nil {
			return passFailedMsg{err: err}
		}
		pass, err := svc.Begin(ctx, st)
		if err != nil {
			return passFailedMsg{err: err}
		}
		return passStartedMsg{pass: pass}
	}
}

// next diagnoses exactly one node.
func (s *ResultsScreen) next() tea.Cmd {
	pass := s.pass
	return func() tea.Msg {
		res, ok := pass.Next(context.Background())
		if !ok {
			return nil
		}
		return nodeDiagnosedMsg{result: res}
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case passStartedMsg:
		s.pass = msg.pass
		if s.pass.Done() {
			s.running = false
			return s, nil
		}
		return s, s.next()

	case passFailedMsg:
		s.err = msg.err
		s.running = false
		return s, nil

	case nodeDiagnosedMsg:
		s.results = append(s.results, msg.result)
		if s.pass.Done() {
			s.running = false
			return s, nil
		}
		return s, s.next()

	case spinner.TickMsg:
		if !s.running {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		case "pgup":
			s.offset -= 10
			if s.offset < 0 {
				s.offset = 0
			}
		case "pgdown":
			s.offset += 10
		case "r":
			if !s.running {
				return s, router.Swap(New(s.sess, s.structure))
			}
		case "h":
			if !s.running {
				return s, router.Home()
			}
		}
	}
	return s, nil
}

// Results returns the results received so far.
func (s *ResultsScreen) Results() []diagnosis.Result {
	return s.results
}

// Err returns the error that stopped the pass before it began, if any.
func (s *ResultsScreen) Err() error {
	return s.err
}

func (s *ResultsScreen) View(width, height int) string {
	cw := width - 4
	if cw > 100 {
		cw = 100
	}

	var lines []string
	lines = append(lines, s.statusLine(cw)...)
	lines = append(lines, "")

	if s.err != nil {
		lines = append(lines, theme.Failure.Render("Diagnosis could not start"))
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Text).Width(cw).Render(s.err.Error()))
	}

	for _, r := range s.results {
		lines = append(lines, strings.Split(components.RenderResult(r, cw-2), "\n")...)
		lines = append(lines, "")
	}

	// Clamp scrolling so the last line stays reachable.
	maxOffset := len(lines) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.offset > maxOffset {
		s.offset = maxOffset
	}
	end := s.offset + height
	if end > len(lines) {
		end = len(lines)
	}

	body := strings.Join(lines[s.offset:end], "\n")
	return lipgloss.NewStyle().Padding(0, 2).Render(body)
}

func (s *ResultsScreen) statusLine(cw int) []string {
	done := len(s.results)
	total := len(s.targets)

	goal := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
		Render("Goal: " + s.structure.Goal.Label)
	grades := make([]diagnosis.Grade, len(s.results))
	for i, r := range s.results {
		grades[i] = r.Grade
	}
	bar := components.PassTrack{Grades: grades, Total: total, Width: cw}.View()

	var state string
	switch {
	case s.err != nil:
		state = theme.Failure.Render("stopped")
	case s.running && done < total:
		state = s.spinner.View() + " " + lipgloss.NewStyle().Foreground(theme.TextDim).
			Render("diagnosing "+s.targets[done].Parent()+" …")
	default:
		state = lipgloss.NewStyle().Foreground(theme.TextDim).Render(tally(s.results))
	}
	return []string{goal, bar, state}
}

// tally summarizes grades in a fixed order.
func tally(results []diagnosis.Result) string {
	counts := make(map[diagnosis.Grade]int)
	for _, r := range results {
		counts[r.Grade]++
	}
	var parts []string
	for _, g := range []diagnosis.Grade{
		diagnosis.GradeDanger, diagnosis.GradeWarn, diagnosis.GradeGood,
		diagnosis.GradeUnknown, diagnosis.GradeError,
	} {
		if counts[g] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[g], g))
		}
	}
	if len(parts) == 0 {
		return "no results"
	}
	return "done: " + strings.Join(parts, " · ")
}
